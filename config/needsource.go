package config

import "github.com/koryxa/dispatch/auth"

// NeedSourceConfig wires an external statistics provider for the need index.
// When Connector is empty the static need_index country list is used alone.
type NeedSourceConfig struct {
	// Connector selects the stats client, e.g. "worldstats".
	Connector string `json:"connector"`
	// URL is the base endpoint of the provider.
	URL string `json:"url"`
	// Auth holds optional OAuth2 client credentials.
	Auth auth.Conf `json:"auth"`
	// Countries restricts the fetch to the given ISO codes.
	Countries []string `json:"countries"`
}

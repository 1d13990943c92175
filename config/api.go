package config

// APIConfig defines the HTTP API server settings.
type APIConfig struct {
	// Addr is the listen address of the API server.
	Addr string `json:"addr"`
	// Capabilities lists the enabled API surfaces. Empty means all.
	Capabilities []string `json:"capabilities"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

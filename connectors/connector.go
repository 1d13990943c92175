// Package connectors defines clients for external data providers feeding the
// need index.
package connectors

import (
	"github.com/koryxa/dispatch/core/needindex"
)

// StatsClient fetches per-country statistics from an external provider.
type StatsClient interface {
	Fetch(opts ...Option) ([]needindex.CountryStats, error)
}

// Option configures a StatsClient before a fetch.
type Option func(StatsClient) error

// ErrIncompatibleOption is the format used when an option is applied to a
// client that does not support it.
const ErrIncompatibleOption = "option %s is not compatible with client %s"

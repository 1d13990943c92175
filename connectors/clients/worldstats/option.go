package worldstats

import (
	"fmt"

	"github.com/koryxa/dispatch/connectors"
)

// WithCountries restricts the fetch to the given ISO codes.
func WithCountries(codes []string) connectors.Option {
	return func(c connectors.StatsClient) error {
		if w, ok := c.(*Client); ok {
			w.countries = codes
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithCountries", "worldstats")
	}
}

package quota

import "fmt"

// Config defines quota ledger settings.
type Config struct {
	// WindowDays is the length of the rolling allocation window.
	WindowDays int `json:"window_days"`
	// ReservationTTLSeconds bounds how long a provisional hold may stay
	// uncommitted. It should be shorter than any wave timeout.
	ReservationTTLSeconds int `json:"reservation_ttl_seconds"`
	// Countries maps ISO codes to their allocation bounds. Absent countries
	// are unconstrained.
	Countries map[string]Limits `json:"countries"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.WindowDays <= 0 {
		c.WindowDays = 30
	}
	if c.ReservationTTLSeconds <= 0 {
		c.ReservationTTLSeconds = 30
	}
}

// Validate checks the configured bounds.
func (c Config) Validate() error {
	for country, lim := range c.Countries {
		if lim.Max < 0 {
			return fmt.Errorf("quota: max for %s must not be negative", country)
		}
		if lim.Min < 0 || lim.Min > lim.Max {
			return fmt.Errorf("quota: min for %s must be within [0, max]", country)
		}
	}
	return nil
}

package simulator

import "time"

// Config holds parameters for the provider fleet.
type Config struct {
	// Count is the number of simulated providers.
	Count int `json:"count"`
	// Countries are assigned round-robin across the fleet.
	Countries []string `json:"countries"`
	// Skills given to every simulated provider.
	Skills []string `json:"skills"`
	// AcceptRate and RefuseRate are probabilities in [0,1]. The remainder
	// of the mass lets the offer expire.
	AcceptRate float64 `json:"accept_rate"`
	RefuseRate float64 `json:"refuse_rate"`
	// Latency is the delay before a provider answers an offer.
	Latency time.Duration `json:"latency"`
	// Seed makes runs reproducible when non-zero.
	Seed int64 `json:"seed"`
}

func (c *Config) SetDefaults() {
	if c.Count == 0 {
		c.Count = 5
	}
	if len(c.Countries) == 0 {
		c.Countries = []string{"SN"}
	}
	if len(c.Skills) == 0 {
		c.Skills = []string{"logistics"}
	}
	if c.AcceptRate == 0 && c.RefuseRate == 0 {
		c.AcceptRate = 0.6
		c.RefuseRate = 0.3
	}
	if c.Latency == 0 {
		c.Latency = 100 * time.Millisecond
	}
}

package needindex

// Config defines the need index inputs loaded from configuration.
type Config struct {
	Weights   Weights        `json:"weights"`
	Countries []CountryStats `json:"countries"`
}

// SetDefaults applies the documented default weights when none are set.
func (c *Config) SetDefaults() {
	zero := Weights{}
	if c.Weights == zero {
		c.Weights = DefaultWeights()
	}
}

// Validate checks the weights and country statistics.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	_, err := NewScorer(c.Weights, c.Countries)
	return err
}

package dispatch

import (
	"fmt"
	"time"

	"github.com/koryxa/dispatch/core/model"
)

// Config defines dispatch-related settings.
type Config struct {
	// WaveSizes carves the ranked candidate list into waves. Waves beyond
	// the configured sizes take the whole remainder.
	WaveSizes []int `json:"wave_sizes"`
	// MaxWaves bounds how many waves a mission may consume before the
	// escalation policy hands off to a human operator.
	MaxWaves int `json:"max_waves"`
	// WaveTimeoutSeconds maps a priority tier name to the per-offer expiry.
	WaveTimeoutSeconds map[string]int `json:"wave_timeout_seconds"`
}

// SetDefaults applies the documented default schedule.
func (c *Config) SetDefaults() {
	if len(c.WaveSizes) == 0 {
		c.WaveSizes = []int{3, 5}
	}
	if c.MaxWaves <= 0 {
		c.MaxWaves = 3
	}
	if c.WaveTimeoutSeconds == nil {
		c.WaveTimeoutSeconds = map[string]int{
			model.TierStandard.String(): 300,
			model.TierUrgent.String():   120,
			model.TierCritical.String(): 60,
		}
	}
}

// Validate rejects invalid wave configuration at load time, never
// mid-dispatch.
func (c Config) Validate() error {
	for i, s := range c.WaveSizes {
		if s <= 0 {
			return fmt.Errorf("dispatch: wave size %d must be positive", i+1)
		}
	}
	if c.MaxWaves < 1 {
		return fmt.Errorf("dispatch: max_waves must be at least 1")
	}
	for tier, secs := range c.WaveTimeoutSeconds {
		if _, err := model.ParseTier(tier); err != nil {
			return fmt.Errorf("dispatch: %w", err)
		}
		if secs <= 0 {
			return fmt.Errorf("dispatch: wave timeout for %s must be positive", tier)
		}
	}
	return nil
}

// WaveSize returns how many candidates wave k (1-based) may take from the
// remaining pool.
func (c Config) WaveSize(wave, remaining int) int {
	if wave <= len(c.WaveSizes) && c.WaveSizes[wave-1] < remaining {
		return c.WaveSizes[wave-1]
	}
	return remaining
}

// TimeoutFor returns the per-offer expiry for the tier.
func (c Config) TimeoutFor(tier model.PriorityTier) time.Duration {
	if secs, ok := c.WaveTimeoutSeconds[tier.String()]; ok && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 5 * time.Minute
}

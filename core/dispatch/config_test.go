package dispatch

import (
	"testing"
	"time"

	"github.com/koryxa/dispatch/core/model"
)

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if len(c.WaveSizes) != 2 || c.WaveSizes[0] != 3 || c.WaveSizes[1] != 5 {
		t.Fatalf("unexpected default wave sizes: %v", c.WaveSizes)
	}
	if c.MaxWaves != 3 {
		t.Fatalf("unexpected default max waves: %d", c.MaxWaves)
	}
	if got := c.TimeoutFor(model.TierCritical); got != 60*time.Second {
		t.Fatalf("critical timeout: %v", got)
	}
}

func TestConfigValidateRejectsBadTier(t *testing.T) {
	c := Config{MaxWaves: 1, WaveTimeoutSeconds: map[string]int{"express": 30}}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for unknown tier key")
	}
}

func TestConfigValidateRejectsNonPositiveWave(t *testing.T) {
	c := Config{WaveSizes: []int{3, 0}, MaxWaves: 2}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for zero wave size")
	}
}

func TestWaveSizeTakesRemainderBeyondSchedule(t *testing.T) {
	c := Config{WaveSizes: []int{2, 3}, MaxWaves: 5}
	if got := c.WaveSize(1, 10); got != 2 {
		t.Fatalf("wave 1: %d", got)
	}
	if got := c.WaveSize(2, 2); got != 2 {
		t.Fatalf("wave 2 with small remainder: %d", got)
	}
	if got := c.WaveSize(3, 7); got != 7 {
		t.Fatalf("wave 3 takes remainder: %d", got)
	}
}

func TestTimeoutForFallsBack(t *testing.T) {
	c := Config{WaveTimeoutSeconds: map[string]int{}}
	if got := c.TimeoutFor(model.TierUrgent); got != 5*time.Minute {
		t.Fatalf("expected fallback timeout, got %v", got)
	}
}

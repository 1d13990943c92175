package config

import "github.com/koryxa/dispatch/infra/mqtt"

// NotifyConfig wires the outbound notification channel.
type NotifyConfig struct {
	// Enabled turns MQTT notification publishing on.
	Enabled bool `json:"enabled"`
	// Attempts bounds delivery retries per notification.
	Attempts int `json:"attempts"`
	// BackoffMS is the linear backoff step between retries.
	BackoffMS int `json:"backoff_ms"`
	// MQTT holds the broker connection settings.
	MQTT mqtt.Config `json:"mqtt"`
}

// SetDefaults applies sane defaults.
func (c *NotifyConfig) SetDefaults() {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 200
	}
}

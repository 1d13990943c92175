package config

import "fmt"

// AuditConfig selects the audit log backend.
type AuditConfig struct {
	// Backend selects the store type: "memory", "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location for file-backed stores.
	Path string `json:"path"`
	// Token guards the audit log API when non-empty.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *AuditConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" && c.Backend != "memory" {
		c.Path = "audit.log"
	}
}

// Validate checks mandatory fields.
func (c AuditConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "jsonl", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("audit path is required for %s backend", c.Backend)
		}
		return nil
	default:
		return fmt.Errorf("unknown audit backend %s", c.Backend)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `api:
  addr: ":9000"
  capabilities: ["dispatch", "dashboard"]
dispatch:
  wave_sizes: [2, 4]
  max_waves: 2
  wave_timeout_seconds:
    standard: 120
    urgent: 60
quota:
  window_days: 14
  reservation_ttl_seconds: 20
  countries:
    SN: {min: 1, max: 5}
need_index:
  countries:
    - country: "SN"
      population: 17000000
      unemployment_rate: 0.22
      income_per_capita: 1600
      youth_ratio: 0.42
    - country: "FR"
      population: 68000000
      unemployment_rate: 0.07
      income_per_capita: 42000
      youth_ratio: 0.17
audit:
  backend: "memory"
metrics:
  prometheus_enabled: true
notify:
  enabled: false
  mqtt:
    broker: "tcp://localhost:1883"
    client_id: "dispatcher"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"api.addr", cfg.API.Addr, ":9000"},
		{"api.capabilities", len(cfg.API.Capabilities), 2},
		{"dispatch.max_waves", cfg.Dispatch.MaxWaves, 2},
		{"dispatch.wave_sizes", len(cfg.Dispatch.WaveSizes) == 2 && cfg.Dispatch.WaveSizes[1] == 4, true},
		{"dispatch.timeout", cfg.Dispatch.WaveTimeoutSeconds["urgent"], 60},
		{"quota.window_days", cfg.Quota.WindowDays, 14},
		{"quota.ttl", cfg.Quota.ReservationTTLSeconds, 20},
		{"quota.sn_max", cfg.Quota.Countries["SN"].Max, 5},
		{"need_index.countries", len(cfg.NeedIndex.Countries), 2},
		{"audit.backend", cfg.Audit.Backend, "memory"},
		{"metrics.prom", cfg.Metrics.PrometheusEnabled, true},
		{"metrics.prom_port", cfg.Metrics.PrometheusPort, ":2112"},
		{"notify.attempts_default", cfg.Notify.Attempts, 3},
		{"notify.broker", cfg.Notify.MQTT.Broker, "tcp://localhost:1883"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadRejectsInvalidWaveConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `dispatch:
  wave_sizes: [0]
need_index:
  countries:
    - country: "SN"
      population: 1
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for zero wave size")
	}
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{"api": {"addr": ":8080"}, "audit": {"backend": "memory"}, "need_index": {"countries": [{"country": "SN", "population": 1}]}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_API__ADDR", ":7070")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.API.Addr != ":7070" {
		t.Fatalf("env override not applied: %s", cfg.API.Addr)
	}
}

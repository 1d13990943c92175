package factory

import "testing"

func TestNewStatsClient(t *testing.T) {
	if _, err := NewStatsClient(IDWorldStats, "http://example.com", nil); err != nil {
		t.Fatalf("worldstats client: %v", err)
	}
	if _, err := NewStatsClient("unknown", "", nil); err == nil {
		t.Fatal("expected error for unknown connector id")
	}
}

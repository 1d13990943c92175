package metrics

import (
	"time"

	"github.com/koryxa/dispatch/core/model"
)

// OfferOutcome represents one terminal offer transition to be recorded.
type OfferOutcome struct {
	MissionID  string
	OfferID    string
	ProviderID string
	Country    string
	Wave       int
	Status     model.OfferStatus
	Latency    time.Duration
	Time       time.Time
}

// MetricsSink records offer outcomes for observability purposes.
type MetricsSink interface {
	RecordOfferOutcome(outcomes []OfferOutcome) error
}

// MissionOutcome is a terminal mission transition.
type MissionOutcome struct {
	MissionID string
	Status    model.MissionStatus
	Tier      model.PriorityTier
	Country   string
	Wave      int
	Time      time.Time
}

// MissionRecorder is implemented by sinks able to record mission outcomes.
type MissionRecorder interface {
	RecordMissionOutcome(out MissionOutcome) error
}

// EscalationEvent captures one escalation policy decision.
type EscalationEvent struct {
	MissionID string
	Target    string
	Reasons   []string
	Wave      int
	Time      time.Time
}

// EscalationRecorder is implemented by sinks able to record escalations.
type EscalationRecorder interface {
	RecordEscalation(ev EscalationEvent) error
}

// NopSink implements all recorder interfaces with no-op methods.
type NopSink struct{}

func (NopSink) RecordOfferOutcome([]OfferOutcome) error   { return nil }
func (NopSink) RecordMissionOutcome(MissionOutcome) error { return nil }
func (NopSink) RecordEscalation(EscalationEvent) error    { return nil }

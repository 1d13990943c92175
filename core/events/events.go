package events

import (
	"time"

	"github.com/koryxa/dispatch/core/model"
)

// OfferEvent is published for each offer state transition.
type OfferEvent struct {
	MissionID  string
	OfferID    string
	ProviderID string
	Wave       int
	Status     model.OfferStatus
	Latency    time.Duration
}

// WaveEvent is published when a wave starts or resolves without acceptance.
// Action can be "started" or "resolved".
type WaveEvent struct {
	MissionID string
	Wave      int
	Offers    int
	Action    string
}

// EscalationEvent is published whenever the escalation policy decides.
type EscalationEvent struct {
	MissionID string
	Target    string
	Reasons   []string
}

// MissionEvent is published when a mission reaches a new status.
type MissionEvent struct {
	MissionID string
	Status    model.MissionStatus
}

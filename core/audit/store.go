package audit

import (
	"context"
	"time"

	"github.com/koryxa/dispatch/core/quota"
)

// EventType identifies the kind of transition an entry records.
type EventType string

const (
	EventMissionCreated   EventType = "mission_created"
	EventMissionConfirmed EventType = "mission_confirmed"
	EventMissionEscalated EventType = "mission_escalated"
	EventMissionCancelled EventType = "mission_cancelled"
	EventMissionClosed    EventType = "mission_closed"
	EventWaveStarted      EventType = "wave_started"
	EventOfferSent        EventType = "offer_sent"
	EventOfferAccepted    EventType = "offer_accepted"
	EventOfferRefused     EventType = "offer_refused"
	EventOfferExpired     EventType = "offer_expired"
	EventOfferCancelled   EventType = "offer_cancelled"
	EventEscalation       EventType = "escalation_decided"
)

// Entry is one append-only audit event. Entries are never updated or
// deleted; every dashboard metric is a projection over this log.
type Entry struct {
	ID         string              `json:"id"`
	MissionID  string              `json:"mission_id"`
	Type       EventType           `json:"type"`
	OfferID    string              `json:"offer_id,omitempty"`
	ProviderID string              `json:"provider_id,omitempty"`
	Wave       int                 `json:"wave,omitempty"`
	Target     string              `json:"target,omitempty"`
	Reasons    []string            `json:"reasons,omitempty"`
	Comment    string              `json:"comment,omitempty"`
	Quota      []quota.WindowState `json:"quota,omitempty"`
	Timestamp  time.Time           `json:"timestamp"`
}

// Query defines filters for retrieving entries.
type Query struct {
	Start     time.Time
	End       time.Time
	MissionID string
	Type      EventType
}

// Store persists audit entries and supports querying. Append, never mutate.
// AppendBatch is all-or-nothing: a multi-entry transition must never leave a
// partial trace in the log, or replayed projections diverge from the state
// machine.
type Store interface {
	Append(ctx context.Context, e Entry) error
	AppendBatch(ctx context.Context, entries []Entry) error
	Query(ctx context.Context, q Query) ([]Entry, error)
	Close() error
}

func match(e Entry, q Query) bool {
	if !q.Start.IsZero() && e.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && e.Timestamp.After(q.End) {
		return false
	}
	if q.MissionID != "" && e.MissionID != q.MissionID {
		return false
	}
	if q.Type != "" && e.Type != q.Type {
		return false
	}
	return true
}

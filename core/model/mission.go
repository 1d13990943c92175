package model

import (
	"fmt"
	"time"
)

// MissionStatus tracks the lifecycle of a mission.
type MissionStatus int

const (
	MissionDraft MissionStatus = iota
	MissionDispatching
	MissionConfirmed
	MissionEscalated
	MissionClosed
	MissionCancelled
)

// String returns a human-readable representation of the status.
func (s MissionStatus) String() string {
	switch s {
	case MissionDraft:
		return "draft"
	case MissionDispatching:
		return "dispatching"
	case MissionConfirmed:
		return "confirmed"
	case MissionEscalated:
		return "escalated"
	case MissionClosed:
		return "closed"
	case MissionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further dispatch activity is allowed.
func (s MissionStatus) Terminal() bool {
	return s == MissionClosed || s == MissionCancelled
}

// PriorityTier selects the wave timeout schedule for a mission.
type PriorityTier int

const (
	TierStandard PriorityTier = iota
	TierUrgent
	TierCritical
)

// String returns the configuration key for the tier.
func (t PriorityTier) String() string {
	switch t {
	case TierStandard:
		return "standard"
	case TierUrgent:
		return "urgent"
	case TierCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseTier converts a configuration key back into a PriorityTier.
func ParseTier(s string) (PriorityTier, error) {
	switch s {
	case "", "standard":
		return TierStandard, nil
	case "urgent":
		return TierUrgent, nil
	case "critical":
		return TierCritical, nil
	default:
		return TierStandard, fmt.Errorf("unknown priority tier %q", s)
	}
}

// WorkMode describes where a mission is performed.
type WorkMode string

const (
	ModeRemote WorkMode = "remote"
	ModeOnsite WorkMode = "onsite"
	ModeHybrid WorkMode = "hybrid"
)

// Mission represents a posted opportunity awaiting a provider.
type Mission struct {
	ID          string
	RequesterID string
	Title       string
	Skills      []string
	Country     string // ISO code of the opportunity's country of origin
	Deadline    time.Time
	BudgetEUR   float64
	Mode        WorkMode
	Tier        PriorityTier
	Status      MissionStatus
	CreatedAt   time.Time
}

// Validate checks that the mission definition is sound. Invalid missions are
// rejected at creation time, never mid-dispatch.
func (m Mission) Validate() error {
	if m.Title == "" {
		return fmt.Errorf("mission title is required")
	}
	if len(m.Skills) == 0 {
		return fmt.Errorf("mission requires at least one skill")
	}
	if m.Country == "" {
		return fmt.Errorf("mission country is required")
	}
	if m.BudgetEUR < 0 {
		return fmt.Errorf("mission budget must not be negative")
	}
	switch m.Mode {
	case ModeRemote, ModeOnsite, ModeHybrid, "":
	default:
		return fmt.Errorf("unknown work mode %q", m.Mode)
	}
	return nil
}

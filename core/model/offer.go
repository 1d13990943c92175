package model

import "time"

// OfferStatus tracks the lifecycle of a single offer.
type OfferStatus int

const (
	OfferPending OfferStatus = iota
	OfferAccepted
	OfferRefused
	OfferExpired
	OfferCancelled
)

// String returns a human-readable representation of the status.
func (s OfferStatus) String() string {
	switch s {
	case OfferPending:
		return "pending"
	case OfferAccepted:
		return "accepted"
	case OfferRefused:
		return "refused"
	case OfferExpired:
		return "expired"
	case OfferCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the offer can no longer change state.
func (s OfferStatus) Terminal() bool { return s != OfferPending }

// Offer is one proposal sent to a provider during a dispatch wave.
// Exactly one offer per mission may reach OfferAccepted.
type Offer struct {
	ID         string
	MissionID  string
	ProviderID string
	Wave       int // 1-based wave number
	Status     OfferStatus
	SentAt     time.Time
	ExpiresAt  time.Time

	// Scores captured at ranking time, kept for auditing and dashboards.
	FitScore      float64
	FairnessScore float64
	RecencyScore  float64
}

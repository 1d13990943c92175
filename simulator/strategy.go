package simulator

import (
	"context"
	"math/rand"
	"time"
)

// Responder receives the simulated answers. The dispatcher satisfies it.
type Responder interface {
	Accept(ctx context.Context, offerID, providerID string) error
	Refuse(ctx context.Context, offerID, providerID, comment string) error
}

// Strategy decides how a simulated provider answers one offer.
type Strategy interface {
	Respond(ctx context.Context, r Responder, offerID, providerID string)
}

// AutoAccept accepts every offer after an optional fixed delay.
type AutoAccept struct {
	Delay time.Duration
}

func (a AutoAccept) Respond(ctx context.Context, r Responder, offerID, providerID string) {
	if !wait(ctx, a.Delay) {
		return
	}
	_ = r.Accept(ctx, offerID, providerID)
}

// Random accepts or refuses with the configured probabilities and lets the
// offer expire otherwise.
type Random struct {
	Delay      time.Duration
	AcceptRate float64
	RefuseRate float64
	Rng        *rand.Rand
}

func (s Random) Respond(ctx context.Context, r Responder, offerID, providerID string) {
	roll := s.Rng.Float64()
	if !wait(ctx, s.Delay) {
		return
	}
	switch {
	case roll < s.AcceptRate:
		_ = r.Accept(ctx, offerID, providerID)
	case roll < s.AcceptRate+s.RefuseRate:
		_ = r.Refuse(ctx, offerID, providerID, "unavailable")
	}
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

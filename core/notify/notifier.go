package notify

import (
	"time"

	"github.com/koryxa/dispatch/core/logger"
	"github.com/koryxa/dispatch/core/model"
)

// Notifier receives mission and offer transitions the outside world should
// hear about. Calls are fire-and-forget from the dispatcher's perspective:
// delivery failures never roll back a state transition.
type Notifier interface {
	// OfferPending is invoked whenever an offer is sent to a provider.
	OfferPending(offer model.Offer) error
	// MissionConfirmed is invoked when an offer was accepted.
	MissionConfirmed(m model.Mission, offer model.Offer) error
	// MissionEscalated is invoked when a mission is handed to a human operator.
	MissionEscalated(m model.Mission, reasons []string) error
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) OfferPending(model.Offer) error                    { return nil }
func (NopNotifier) MissionConfirmed(model.Mission, model.Offer) error { return nil }
func (NopNotifier) MissionEscalated(model.Mission, []string) error    { return nil }

// Retrying wraps a Notifier with bounded retry and linear backoff. Delivery
// stays best-effort; the last error is logged and dropped.
type Retrying struct {
	next     Notifier
	attempts int
	backoff  time.Duration
	log      logger.Logger
}

// NewRetrying creates a Retrying notifier. attempts <= 0 defaults to 3.
func NewRetrying(next Notifier, attempts int, backoff time.Duration, log logger.Logger) *Retrying {
	if attempts <= 0 {
		attempts = 3
	}
	return &Retrying{next: next, attempts: attempts, backoff: backoff, log: log}
}

func (r *Retrying) deliver(what string, fn func() error) error {
	var err error
	for i := 0; i < r.attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(i+1) * r.backoff)
	}
	if r.log != nil {
		r.log.Warnf("notification %s dropped after %d attempts: %v", what, r.attempts, err)
	}
	return err
}

func (r *Retrying) OfferPending(o model.Offer) error {
	return r.deliver("offer_pending", func() error { return r.next.OfferPending(o) })
}

func (r *Retrying) MissionConfirmed(m model.Mission, o model.Offer) error {
	return r.deliver("mission_confirmed", func() error { return r.next.MissionConfirmed(m, o) })
}

func (r *Retrying) MissionEscalated(m model.Mission, reasons []string) error {
	return r.deliver("mission_escalated", func() error { return r.next.MissionEscalated(m, reasons) })
}

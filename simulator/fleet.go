// Package simulator drives a fleet of synthetic providers against the
// dispatcher. It listens for offer events on the bus and answers them with a
// configurable strategy, which makes the whole offer lifecycle observable
// without real providers.
package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/koryxa/dispatch/core/events"
	"github.com/koryxa/dispatch/core/logger"
	"github.com/koryxa/dispatch/core/model"
)

// Fleet is a set of simulated providers sharing one strategy.
type Fleet struct {
	cfg       Config
	responder Responder
	strategy  Strategy
	log       logger.Logger

	mu  sync.Mutex
	ids map[string]struct{}
}

// NewFleet builds a fleet from the configuration. When strategy is nil a
// Random strategy derived from the config rates is used.
func NewFleet(cfg Config, responder Responder, strategy Strategy, log logger.Logger) *Fleet {
	cfg.SetDefaults()
	if strategy == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		strategy = Random{
			Delay:      cfg.Latency,
			AcceptRate: cfg.AcceptRate,
			RefuseRate: cfg.RefuseRate,
			Rng:        rand.New(rand.NewSource(seed)),
		}
	}
	f := &Fleet{
		cfg:       cfg,
		responder: responder,
		strategy:  strategy,
		log:       log,
		ids:       make(map[string]struct{}, cfg.Count),
	}
	return f
}

// Providers returns the synthetic provider records to register in the
// directory before dispatching.
func (f *Fleet) Providers() []model.Provider {
	out := make([]model.Provider, 0, f.cfg.Count)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < f.cfg.Count; i++ {
		id := fmt.Sprintf("sim-provider-%d", i+1)
		f.ids[id] = struct{}{}
		out = append(out, model.Provider{
			ID:             id,
			Skills:         f.cfg.Skills,
			Country:        f.cfg.Countries[i%len(f.cfg.Countries)],
			AcceptanceRate: 0.5,
		})
	}
	return out
}

// Run consumes events until the channel closes or the context is cancelled.
// Each pending offer addressed to a fleet member gets one strategy response
// in its own goroutine.
func (f *Fleet) Run(ctx context.Context, eventCh <-chan any) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-eventCh:
			if !ok {
				return
			}
			offer, isOffer := e.(events.OfferEvent)
			if !isOffer || offer.Status != model.OfferPending {
				continue
			}
			if !f.owns(offer.ProviderID) {
				continue
			}
			f.log.Debugf("simulated provider %s answering offer %s", offer.ProviderID, offer.OfferID)
			go f.strategy.Respond(ctx, f.responder, offer.OfferID, offer.ProviderID)
		}
	}
}

func (f *Fleet) owns(providerID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ids[providerID]
	return ok
}

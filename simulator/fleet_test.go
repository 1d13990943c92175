package simulator

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/koryxa/dispatch/core/events"
	"github.com/koryxa/dispatch/core/model"
	"github.com/koryxa/dispatch/infra/logger"
)

type recordingResponder struct {
	mu       sync.Mutex
	accepted []string
	refused  []string
	done     chan struct{}
}

func newRecordingResponder(expected int) *recordingResponder {
	r := &recordingResponder{done: make(chan struct{}, expected)}
	return r
}

func (r *recordingResponder) Accept(_ context.Context, offerID, _ string) error {
	r.mu.Lock()
	r.accepted = append(r.accepted, offerID)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingResponder) Refuse(_ context.Context, offerID, _, _ string) error {
	r.mu.Lock()
	r.refused = append(r.refused, offerID)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func waitResponses(t *testing.T, r *recordingResponder, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for response %d/%d", i+1, n)
		}
	}
}

func TestFleetProvidersRoundRobinCountries(t *testing.T) {
	f := NewFleet(Config{Count: 4, Countries: []string{"SN", "CI"}}, nil, AutoAccept{}, logger.NopLogger{})
	providers := f.Providers()
	if len(providers) != 4 {
		t.Fatalf("expected 4 providers, got %d", len(providers))
	}
	if providers[0].Country != "SN" || providers[1].Country != "CI" || providers[2].Country != "SN" {
		t.Fatalf("unexpected countries: %+v", providers)
	}
	for _, p := range providers {
		if err := p.Validate(); err != nil {
			t.Fatalf("provider %s invalid: %v", p.ID, err)
		}
	}
}

func TestFleetAnswersOwnOffersOnly(t *testing.T) {
	resp := newRecordingResponder(1)
	f := NewFleet(Config{Count: 2}, resp, AutoAccept{}, logger.NopLogger{})
	f.Providers()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := make(chan any, 4)
	go f.Run(ctx, ch)

	ch <- events.OfferEvent{OfferID: "o-other", ProviderID: "someone-else", Status: model.OfferPending}
	ch <- events.OfferEvent{OfferID: "o-terminal", ProviderID: "sim-provider-1", Status: model.OfferAccepted}
	ch <- events.OfferEvent{OfferID: "o-1", ProviderID: "sim-provider-1", Status: model.OfferPending}
	waitResponses(t, resp, 1)

	resp.mu.Lock()
	defer resp.mu.Unlock()
	if len(resp.accepted) != 1 || resp.accepted[0] != "o-1" {
		t.Fatalf("unexpected accepts: %v", resp.accepted)
	}
}

func TestRandomStrategySplit(t *testing.T) {
	resp := newRecordingResponder(100)
	s := Random{AcceptRate: 0.5, RefuseRate: 0.5, Rng: rand.New(rand.NewSource(42))}
	for i := 0; i < 100; i++ {
		s.Respond(context.Background(), resp, "o", "p")
	}
	resp.mu.Lock()
	defer resp.mu.Unlock()
	if len(resp.accepted)+len(resp.refused) != 100 {
		t.Fatalf("expected every roll to answer, got %d accepts and %d refusals",
			len(resp.accepted), len(resp.refused))
	}
	if len(resp.accepted) == 0 || len(resp.refused) == 0 {
		t.Fatalf("expected a mix of outcomes, got %d accepts and %d refusals",
			len(resp.accepted), len(resp.refused))
	}
}

func TestRandomStrategyCanIgnore(t *testing.T) {
	resp := newRecordingResponder(0)
	s := Random{AcceptRate: 0, RefuseRate: 0, Rng: rand.New(rand.NewSource(1))}
	s.Respond(context.Background(), resp, "o", "p")
	resp.mu.Lock()
	defer resp.mu.Unlock()
	if len(resp.accepted)+len(resp.refused) != 0 {
		t.Fatalf("expected the offer to be ignored")
	}
}

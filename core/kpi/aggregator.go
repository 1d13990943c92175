package kpi

import (
	"context"
	"time"

	"github.com/koryxa/dispatch/core/audit"
)

// EscalationSummary is one escalation decision surfaced on the dashboard.
type EscalationSummary struct {
	MissionID string    `json:"mission_id"`
	Target    string    `json:"target"`
	Reasons   []string  `json:"reasons"`
	Timestamp time.Time `json:"timestamp"`
}

// Dashboard carries the KPIs consumed by the requester dashboard.
type Dashboard struct {
	WindowDays              int                 `json:"window_days"`
	MissionsDispatched      int                 `json:"missions_dispatched"`
	MissionsConfirmed       int                 `json:"missions_confirmed"`
	FillRate                float64             `json:"fill_rate"`
	WaveMix                 map[int]int         `json:"wave_mix"`
	TimeToFirstOfferSeconds float64             `json:"time_to_first_offer_seconds"`
	TimeToAcceptSeconds     float64             `json:"time_to_accept_seconds"`
	EscalationCount         int                 `json:"escalation_count"`
	Escalations             []EscalationSummary `json:"escalations"`
}

// Aggregator derives dashboard KPIs from the audit log. All projections are
// recomputable from the log alone; no hidden mutable counters.
type Aggregator struct {
	store audit.Store
	now   func() time.Time
}

// New creates an Aggregator over the given store.
func New(store audit.Store) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// Compute replays the audit log for the rolling window ending now and
// projects the dashboard KPIs.
func (a *Aggregator) Compute(ctx context.Context, windowDays int) (Dashboard, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	end := a.now()
	start := end.Add(-time.Duration(windowDays) * 24 * time.Hour)
	entries, err := a.store.Query(ctx, audit.Query{Start: start, End: end})
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{WindowDays: windowDays, WaveMix: map[int]int{}}
	created := map[string]time.Time{}
	firstOffer := map[string]time.Time{}
	accepted := map[string]time.Time{}
	dispatched := map[string]struct{}{}

	for _, e := range entries {
		switch e.Type {
		case audit.EventMissionCreated:
			created[e.MissionID] = e.Timestamp
		case audit.EventOfferSent:
			dispatched[e.MissionID] = struct{}{}
			if _, ok := firstOffer[e.MissionID]; !ok {
				firstOffer[e.MissionID] = e.Timestamp
			}
		case audit.EventOfferAccepted:
			if _, ok := accepted[e.MissionID]; !ok {
				accepted[e.MissionID] = e.Timestamp
			}
		case audit.EventMissionConfirmed:
			d.MissionsConfirmed++
			d.WaveMix[e.Wave]++
		case audit.EventEscalation:
			d.EscalationCount++
			d.Escalations = append(d.Escalations, EscalationSummary{
				MissionID: e.MissionID,
				Target:    e.Target,
				Reasons:   e.Reasons,
				Timestamp: e.Timestamp,
			})
		}
	}

	d.MissionsDispatched = len(dispatched)
	if d.MissionsDispatched > 0 {
		d.FillRate = float64(d.MissionsConfirmed) / float64(d.MissionsDispatched)
	}
	d.TimeToFirstOfferSeconds = avgDelta(created, firstOffer)
	d.TimeToAcceptSeconds = avgDelta(created, accepted)
	return d, nil
}

// avgDelta averages to-from deltas over missions present in both maps.
func avgDelta(from, to map[string]time.Time) float64 {
	var sum float64
	n := 0
	for id, t := range to {
		f, ok := from[id]
		if !ok {
			continue
		}
		sum += t.Sub(f).Seconds()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// SetClock overrides the time source, for tests.
func (a *Aggregator) SetClock(now func() time.Time) { a.now = now }

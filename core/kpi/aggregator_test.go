package kpi

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/koryxa/dispatch/core/audit"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seedLog(t *testing.T, entries []audit.Entry) *audit.MemoryStore {
	t.Helper()
	store := audit.NewMemoryStore()
	for _, e := range entries {
		if err := store.Append(context.Background(), e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return store
}

func compute(t *testing.T, store audit.Store, windowDays int) Dashboard {
	t.Helper()
	a := New(store)
	a.SetClock(func() time.Time { return base.Add(time.Hour) })
	d, err := a.Compute(context.Background(), windowDays)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return d
}

func TestComputeFillRateAndWaveMix(t *testing.T) {
	store := seedLog(t, []audit.Entry{
		{ID: "1", MissionID: "m1", Type: audit.EventMissionCreated, Timestamp: base},
		{ID: "2", MissionID: "m1", Type: audit.EventOfferSent, Timestamp: base.Add(2 * time.Second)},
		{ID: "3", MissionID: "m1", Type: audit.EventOfferAccepted, Wave: 1, Timestamp: base.Add(30 * time.Second)},
		{ID: "4", MissionID: "m1", Type: audit.EventMissionConfirmed, Wave: 1, Timestamp: base.Add(30 * time.Second)},

		{ID: "5", MissionID: "m2", Type: audit.EventMissionCreated, Timestamp: base},
		{ID: "6", MissionID: "m2", Type: audit.EventOfferSent, Timestamp: base.Add(4 * time.Second)},
		{ID: "7", MissionID: "m2", Type: audit.EventOfferAccepted, Wave: 2, Timestamp: base.Add(90 * time.Second)},
		{ID: "8", MissionID: "m2", Type: audit.EventMissionConfirmed, Wave: 2, Timestamp: base.Add(90 * time.Second)},

		{ID: "9", MissionID: "m3", Type: audit.EventMissionCreated, Timestamp: base},
		{ID: "10", MissionID: "m3", Type: audit.EventOfferSent, Timestamp: base.Add(6 * time.Second)},
		{ID: "11", MissionID: "m3", Type: audit.EventEscalation, Target: "human_fallback",
			Reasons: []string{"no_response"}, Timestamp: base.Add(5 * time.Minute)},
	})

	d := compute(t, store, 30)
	if d.MissionsDispatched != 3 {
		t.Fatalf("dispatched = %d, want 3", d.MissionsDispatched)
	}
	if d.MissionsConfirmed != 2 {
		t.Fatalf("confirmed = %d, want 2", d.MissionsConfirmed)
	}
	if math.Abs(d.FillRate-2.0/3.0) > 1e-9 {
		t.Fatalf("fill rate = %f", d.FillRate)
	}
	if d.WaveMix[1] != 1 || d.WaveMix[2] != 1 {
		t.Fatalf("wave mix = %v", d.WaveMix)
	}
	if math.Abs(d.TimeToFirstOfferSeconds-4) > 1e-9 {
		t.Fatalf("time to first offer = %f, want 4", d.TimeToFirstOfferSeconds)
	}
	if math.Abs(d.TimeToAcceptSeconds-60) > 1e-9 {
		t.Fatalf("time to accept = %f, want 60", d.TimeToAcceptSeconds)
	}
	if d.EscalationCount != 1 || len(d.Escalations) != 1 {
		t.Fatalf("escalations = %d / %v", d.EscalationCount, d.Escalations)
	}
	if d.Escalations[0].Target != "human_fallback" {
		t.Fatalf("escalation target = %s", d.Escalations[0].Target)
	}
}

func TestComputeWindowExcludesOldEntries(t *testing.T) {
	old := base.AddDate(0, 0, -40)
	store := seedLog(t, []audit.Entry{
		{ID: "1", MissionID: "m-old", Type: audit.EventMissionCreated, Timestamp: old},
		{ID: "2", MissionID: "m-old", Type: audit.EventOfferSent, Timestamp: old},
		{ID: "3", MissionID: "m-new", Type: audit.EventMissionCreated, Timestamp: base},
		{ID: "4", MissionID: "m-new", Type: audit.EventOfferSent, Timestamp: base},
	})
	d := compute(t, store, 30)
	if d.MissionsDispatched != 1 {
		t.Fatalf("dispatched = %d, want 1", d.MissionsDispatched)
	}
}

func TestComputeEmptyLog(t *testing.T) {
	d := compute(t, audit.NewMemoryStore(), 0)
	if d.WindowDays != 30 {
		t.Fatalf("window defaulted to %d, want 30", d.WindowDays)
	}
	if d.FillRate != 0 || d.MissionsDispatched != 0 || d.TimeToAcceptSeconds != 0 {
		t.Fatalf("empty log must project zeroes: %+v", d)
	}
}

package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seedEntries() []Entry {
	return []Entry{
		{ID: "1", MissionID: "m1", Type: EventMissionCreated, Timestamp: base},
		{ID: "2", MissionID: "m1", Type: EventOfferSent, OfferID: "o1", ProviderID: "p1", Wave: 1, Timestamp: base.Add(time.Second)},
		{ID: "3", MissionID: "m2", Type: EventMissionCreated, Timestamp: base.Add(time.Hour)},
		{ID: "4", MissionID: "m1", Type: EventEscalation, Target: "next_wave",
			Reasons: []string{"all_refused"}, Timestamp: base.Add(2 * time.Hour)},
	}
}

// exerciseStore runs the same append/query checks against any backend. The
// first entries go in one by one, the rest as a batch, so both write paths
// are covered everywhere.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	seed := seedEntries()
	for _, e := range seed[:2] {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := store.AppendBatch(ctx, seed[2:]); err != nil {
		t.Fatalf("append batch: %v", err)
	}

	all, err := store.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(all))
	}

	byMission, err := store.Query(ctx, Query{MissionID: "m1"})
	if err != nil {
		t.Fatalf("query mission: %v", err)
	}
	if len(byMission) != 3 {
		t.Fatalf("expected 3 m1 entries, got %d", len(byMission))
	}

	byType, err := store.Query(ctx, Query{Type: EventEscalation})
	if err != nil {
		t.Fatalf("query type: %v", err)
	}
	if len(byType) != 1 || byType[0].Target != "next_wave" || len(byType[0].Reasons) != 1 {
		t.Fatalf("unexpected escalation entries: %+v", byType)
	}

	ranged, err := store.Query(ctx, Query{Start: base.Add(time.Minute), End: base.Add(90 * time.Minute)})
	if err != nil {
		t.Fatalf("query range: %v", err)
	}
	if len(ranged) != 1 || ranged[0].MissionID != "m2" {
		t.Fatalf("unexpected ranged entries: %+v", ranged)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestJSONLStore(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "audit.jsonl"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	exerciseStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	exerciseStore(t, store)
}

func TestJSONLStoreReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	ctx := context.Background()

	first, err := NewJSONLStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := first.Append(ctx, seedEntries()[0]); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := NewJSONLStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	entries, err := second.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 1 || entries[0].MissionID != "m1" {
		t.Fatalf("entries lost across reopen: %+v", entries)
	}
}

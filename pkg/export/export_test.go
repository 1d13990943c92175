package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/koryxa/dispatch/core/audit"
)

func sampleEntries() []audit.Entry {
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []audit.Entry{
		{ID: "1", MissionID: "m1", Type: audit.EventMissionCreated, Timestamp: ts},
		{ID: "2", MissionID: "m1", Type: audit.EventEscalation, Wave: 2,
			Target: "next_wave", Reasons: []string{"all_refused", "pool_remaining"}, Timestamp: ts},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleEntries()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out []audit.Entry
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 2 || out[1].Target != "next_wave" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleEntries()); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	if records[0][0] != "timestamp" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	row := records[2]
	if row[1] != "m1" || row[5] != "2" || row[6] != "next_wave" {
		t.Fatalf("unexpected row: %v", row)
	}
	if !strings.Contains(row[7], "all_refused|pool_remaining") {
		t.Fatalf("reasons not joined: %q", row[7])
	}
}

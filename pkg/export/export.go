package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/koryxa/dispatch/core/audit"
)

// WriteJSON writes the audit entries to w in JSON format.
func WriteJSON(w io.Writer, entries []audit.Entry) error {
	enc := json.NewEncoder(w)
	return enc.Encode(entries)
}

// WriteCSV writes the audit entries to w in CSV format.
func WriteCSV(w io.Writer, entries []audit.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "mission_id", "type", "offer_id", "provider_id", "wave", "target", "reasons"}); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			e.Timestamp.Format(time.RFC3339),
			e.MissionID,
			string(e.Type),
			e.OfferID,
			e.ProviderID,
			strconv.Itoa(e.Wave),
			e.Target,
			strings.Join(e.Reasons, "|"),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package auditlog

import (
	"net/http"
	"time"

	"github.com/koryxa/dispatch/core/audit"
	"github.com/koryxa/dispatch/pkg/export"
)

// NewHandler returns an HTTP handler exposing audit entries via
// GET /api/audit/logs. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewHandler(store audit.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := audit.Query{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		q.MissionID = r.URL.Query().Get("mission_id")
		q.Type = audit.EventType(r.URL.Query().Get("type"))
		entries, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv")
			if err := export.WriteCSV(w, entries); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := export.WriteJSON(w, entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

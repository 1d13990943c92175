package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/koryxa/dispatch/core/kpi"
)

// NewHandler returns an HTTP handler exposing allocation KPIs via
// GET /api/dashboard?window_days=N. KPIs are projections over the audit log,
// recomputed on each request.
func NewHandler(agg *kpi.Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		windowDays := 0
		if s := r.URL.Query().Get("window_days"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil || v <= 0 {
				http.Error(w, "window_days must be a positive integer", http.StatusBadRequest)
				return
			}
			windowDays = v
		}
		d, err := agg.Compute(r.Context(), windowDays)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(d); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

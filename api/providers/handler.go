package providers

import (
	"encoding/json"
	"net/http"

	"github.com/koryxa/dispatch/core/dispatch"
	"github.com/koryxa/dispatch/core/model"
)

// NewHandler returns an HTTP handler maintaining the provider directory via
// PUT /api/providers. The directory feeds the candidate pool; reputation
// signals (acceptance rate, active offers) arrive with the upsert.
func NewHandler(dir *dispatch.MemoryDirectory) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut && r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var p model.Provider
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := dir.Upsert(p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

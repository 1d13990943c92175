package offers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/koryxa/dispatch/core/dispatch"
	"github.com/koryxa/dispatch/core/quota"
)

type respondRequest struct {
	ProviderID string `json:"provider_id"`
	Action     string `json:"action"` // "accept" or "refuse"
	Comment    string `json:"comment,omitempty"`
}

// NewRespondHandler returns an HTTP handler for provider responses via
// POST /api/offers/{id}/respond. Losing an accept race yields 409, which the
// provider app renders as "offer no longer available".
func NewRespondHandler(d *dispatch.Dispatcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/offers"), "/")
		offerID, ok := strings.CutSuffix(rest, "/respond")
		if !ok || offerID == "" || strings.Contains(offerID, "/") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var req respondRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.ProviderID == "" {
			http.Error(w, "provider_id is required", http.StatusBadRequest)
			return
		}

		var err error
		switch req.Action {
		case "accept":
			err = d.Accept(r.Context(), offerID, req.ProviderID)
		case "refuse":
			err = d.Refuse(r.Context(), offerID, req.ProviderID, req.Comment)
		default:
			http.Error(w, "action must be accept or refuse", http.StatusBadRequest)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dispatch.ErrOfferNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, dispatch.ErrOfferNoLongerActive):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, dispatch.ErrOfferNotOwned):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, quota.ErrQuotaExhausted):
		// The mission's slot went to another mission while the provider
		// was answering.
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

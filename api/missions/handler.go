package missions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/koryxa/dispatch/core/dispatch"
	"github.com/koryxa/dispatch/core/needindex"
	"github.com/koryxa/dispatch/core/quota"
)

// NewHandler returns an HTTP handler for the mission resource:
//
//	POST   /api/missions             create and start dispatching
//	GET    /api/missions/{id}        mission with its offers
//	DELETE /api/missions/{id}        cancel a mission
//	POST   /api/missions/{id}/close  archive a confirmed or escalated mission
func NewHandler(d *dispatch.Dispatcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/missions")
		rest = strings.Trim(rest, "/")
		switch {
		case rest == "" && r.Method == http.MethodPost:
			create(d, w, r)
		case rest != "" && strings.HasSuffix(rest, "/close") && r.Method == http.MethodPost:
			closeMission(d, w, r, strings.TrimSuffix(rest, "/close"))
		case rest != "" && !strings.Contains(rest, "/") && r.Method == http.MethodGet:
			get(d, w, rest)
		case rest != "" && !strings.Contains(rest, "/") && r.Method == http.MethodDelete:
			cancel(d, w, r, rest)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

func create(d *dispatch.Dispatcher, w http.ResponseWriter, r *http.Request) {
	var spec dispatch.MissionSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	id, err := d.CreateMission(r.Context(), spec)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"mission_id": id})
}

func get(d *dispatch.Dispatcher, w http.ResponseWriter, id string) {
	view, err := d.GetMission(id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func cancel(d *dispatch.Dispatcher, w http.ResponseWriter, r *http.Request, id string) {
	if err := d.Cancel(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func closeMission(d *dispatch.Dispatcher, w http.ResponseWriter, r *http.Request, id string) {
	if err := d.CloseMission(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dispatch.ErrMissionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, dispatch.ErrMissionNotActive):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, quota.ErrQuotaExhausted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, needindex.ErrUnknownCountry):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

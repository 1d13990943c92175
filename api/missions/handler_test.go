package missions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koryxa/dispatch/core/audit"
	"github.com/koryxa/dispatch/core/dispatch"
	"github.com/koryxa/dispatch/core/logger"
	"github.com/koryxa/dispatch/core/model"
	"github.com/koryxa/dispatch/core/needindex"
	"github.com/koryxa/dispatch/core/quota"
	"github.com/koryxa/dispatch/core/rank"
)

func newDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	scorer, err := needindex.NewScorer(needindex.DefaultWeights(), []needindex.CountryStats{
		{Country: "SN", Population: 17_000_000, UnemploymentRate: 0.22, IncomePerCapita: 1_600, YouthRatio: 0.42},
		{Country: "FR", Population: 68_000_000, UnemploymentRate: 0.07, IncomePerCapita: 42_000, YouthRatio: 0.17},
	})
	if err != nil {
		t.Fatalf("scorer: %v", err)
	}
	var cfg dispatch.Config
	cfg.SetDefaults()
	var qcfg quota.Config
	qcfg.SetDefaults()
	dir := dispatch.NewMemoryDirectory(
		model.Provider{ID: "p1", Country: "SN", Skills: []string{"go"}, AcceptanceRate: 0.5},
	)
	d, err := dispatch.NewDispatcher(cfg, rank.New(logger.NopLogger{}), quota.NewLedger(qcfg), scorer, dir,
		nil, audit.NewMemoryStore(), nil, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	return d
}

func createMission(t *testing.T, h http.Handler) string {
	t.Helper()
	body := `{"requester_id":"r1","title":"Backend work","skills":["go"],"country":"SN","budget_eur":1000,"mode":"remote","tier":"standard"}`
	req := httptest.NewRequest(http.MethodPost, "/api/missions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		MissionID string `json:"mission_id"`
	}
	if err := jsonDecode(rec, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.MissionID
}

func jsonDecode(rec *httptest.ResponseRecorder, v any) error {
	return json.NewDecoder(rec.Body).Decode(v)
}

func TestCreateAndGetMission(t *testing.T) {
	h := NewHandler(newDispatcher(t))
	id := createMission(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/missions/"+id, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status %d: %s", rec.Code, rec.Body.String())
	}
	var view dispatch.MissionView
	if err := jsonDecode(rec, &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Mission.ID != id || view.Mission.Status != model.MissionDispatching {
		t.Fatalf("unexpected view: %+v", view.Mission)
	}
	if len(view.Offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(view.Offers))
	}
}

func TestCreateRejectsUnknownCountry(t *testing.T) {
	h := NewHandler(newDispatcher(t))
	body := `{"requester_id":"r1","title":"x","skills":["go"],"country":"ZZ"}`
	req := httptest.NewRequest(http.MethodPost, "/api/missions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCancelMission(t *testing.T) {
	h := NewHandler(newDispatcher(t))
	id := createMission(t, h)

	req := httptest.NewRequest(http.MethodDelete, "/api/missions/"+id, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("cancel status %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/missions/"+id, nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second cancel, got %d", rec.Code)
	}
}

func TestGetUnknownMission(t *testing.T) {
	h := NewHandler(newDispatcher(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missions/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCloseRequiresTerminalOffer(t *testing.T) {
	d := newDispatcher(t)
	h := NewHandler(d)
	id := createMission(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/missions/"+id+"/close", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while dispatching, got %d", rec.Code)
	}

	view, err := d.GetMission(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := d.Accept(context.Background(), view.Offers[0].ID, view.Offers[0].ProviderID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/missions/"+id+"/close", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("close status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewHandler(newDispatcher(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/missions", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

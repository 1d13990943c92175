package capability

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireBlocksMissingCapability(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	h := Require(FromList([]string{"dispatch"}), Dashboard, ok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	h = Require(FromList([]string{"dispatch"}), Dispatch, ok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestNilSetGrantsEverything(t *testing.T) {
	var s Set
	for _, c := range []Capability{Dispatch, Dashboard, AuditLog} {
		if !s.Has(c) {
			t.Fatalf("nil set should grant %s", c)
		}
	}
}

func TestAllowAll(t *testing.T) {
	s := AllowAll()
	for _, c := range []Capability{Dispatch, Dashboard, AuditLog} {
		if !s.Has(c) {
			t.Fatalf("AllowAll should grant %s", c)
		}
	}
}

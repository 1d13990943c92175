// Package capability gates API surfaces by plan tier. The check lives in the
// HTTP layer only; the dispatch core never inspects capabilities.
package capability

import "net/http"

// Capability names one gated API surface.
type Capability string

const (
	Dispatch  Capability = "dispatch"
	Dashboard Capability = "dashboard"
	AuditLog  Capability = "audit_log"
)

// Set is the collection of capabilities granted to a deployment's plan.
type Set map[Capability]bool

// AllowAll grants every capability.
func AllowAll() Set {
	return Set{Dispatch: true, Dashboard: true, AuditLog: true}
}

// FromList builds a Set from configuration strings.
func FromList(names []string) Set {
	s := Set{}
	for _, n := range names {
		s[Capability(n)] = true
	}
	return s
}

// Has reports whether the capability is granted. A nil Set grants everything,
// so deployments without capability config keep working.
func (s Set) Has(c Capability) bool {
	if s == nil {
		return true
	}
	return s[c]
}

// Require wraps next and rejects requests with 403 when the capability is
// missing from the set.
func Require(s Set, c Capability, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Has(c) {
			http.Error(w, "capability not enabled", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

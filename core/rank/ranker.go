package rank

import (
	"sort"

	"github.com/koryxa/dispatch/core/logger"
	"github.com/koryxa/dispatch/core/model"
)

// QuotaView is the read-side of the quota ledger the ranker consults.
type QuotaView interface {
	Exhausted(country, windowID string) bool
	Headroom(country, windowID string) int
}

// NeedLookup resolves the per-country need index.
type NeedLookup interface {
	Score(country string) (float64, error)
}

// Candidate is one ranked provider with the scores that ordered it.
type Candidate struct {
	Provider model.Provider
	Fit      float64
	Fairness float64
	Need     float64
	Recency  float64
}

// Ranker orders eligible providers for a mission. Providers whose country
// quota is exhausted are excluded, not merely deprioritised.
type Ranker struct {
	log logger.Logger
}

// New creates a Ranker.
func New(log logger.Logger) *Ranker {
	return &Ranker{log: log}
}

// Rank returns the ordered candidate list for the mission. Ordering key,
// descending: fit, then fairness (inverse of active-offer load), then need
// boost where the provider's country quota has headroom, then provider ID
// ascending for a stable, deterministic order. An empty result is a valid
// terminal state, never an error.
func (r *Ranker) Rank(m model.Mission, pool []model.Provider, need NeedLookup, quota QuotaView, windowID string) []Candidate {
	list := make([]Candidate, 0, len(pool))
	excluded := 0
	for _, p := range pool {
		if quota != nil && quota.Exhausted(p.Country, windowID) {
			excluded++
			continue
		}
		fit := p.SkillMatch(m.Skills)
		if fit <= 0 || !p.AcceptsMode(m.Mode) {
			continue
		}
		c := Candidate{
			Provider: p,
			Fit:      fit,
			Fairness: 1.0 / float64(1+p.ActiveOffers),
			Recency:  p.AcceptanceRate,
		}
		if need != nil {
			if headroom := quotaHeadroom(quota, p.Country, windowID); headroom != 0 {
				if n, err := need.Score(p.Country); err == nil {
					c.Need = n
				}
			}
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return less(list[i], list[j]) })
	if r.log != nil {
		r.log.Debugw("ranked candidates", map[string]any{
			"mission":        m.ID,
			"pool":           len(pool),
			"eligible":       len(list),
			"quota_excluded": excluded,
		})
	}
	return list
}

// QuotaExcluded reports how many providers of the pool were dropped solely
// because their country quota is exhausted. The escalation policy uses it to
// distinguish quota truncation from a genuine skill mismatch.
func (r *Ranker) QuotaExcluded(m model.Mission, pool []model.Provider, quota QuotaView, windowID string) int {
	n := 0
	for _, p := range pool {
		if quota == nil || !quota.Exhausted(p.Country, windowID) {
			continue
		}
		if p.SkillMatch(m.Skills) > 0 && p.AcceptsMode(m.Mode) {
			n++
		}
	}
	return n
}

const eps = 1e-9

func less(a, b Candidate) bool {
	if diff := a.Fit - b.Fit; diff > eps || diff < -eps {
		return diff > 0
	}
	if diff := a.Fairness - b.Fairness; diff > eps || diff < -eps {
		return diff > 0
	}
	if diff := a.Need - b.Need; diff > eps || diff < -eps {
		return diff > 0
	}
	return a.Provider.ID < b.Provider.ID
}

func quotaHeadroom(quota QuotaView, country, windowID string) int {
	if quota == nil {
		return -1
	}
	return quota.Headroom(country, windowID)
}

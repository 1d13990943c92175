package model

import "fmt"

// Provider is a candidate able to receive mission offers. The dispatch core
// reads providers but never mutates them; reputation updates belong to an
// external collaborator.
type Provider struct {
	ID             string
	Skills         []string
	Country        string
	Modes          []WorkMode // work modes the provider accepts, empty means any
	AcceptanceRate float64    // historical acceptance rate in [0,1]
	ActiveOffers   int        // pending offers currently held by the provider
}

// Validate checks that the provider record is usable by the ranker.
func (p Provider) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("provider id is required")
	}
	if p.Country == "" {
		return fmt.Errorf("provider country is required")
	}
	if p.AcceptanceRate < 0 || p.AcceptanceRate > 1 {
		return fmt.Errorf("acceptance rate must be within [0,1]")
	}
	return nil
}

// SkillMatch returns the fraction of required skills the provider covers.
func (p Provider) SkillMatch(required []string) float64 {
	if len(required) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(p.Skills))
	for _, s := range p.Skills {
		have[s] = struct{}{}
	}
	matched := 0
	for _, s := range required {
		if _, ok := have[s]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}

// AcceptsMode reports whether the provider works in the given mode.
func (p Provider) AcceptsMode(mode WorkMode) bool {
	if mode == "" || len(p.Modes) == 0 {
		return true
	}
	for _, m := range p.Modes {
		if m == mode || m == ModeHybrid {
			return true
		}
	}
	return false
}

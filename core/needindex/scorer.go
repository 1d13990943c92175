package needindex

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ErrUnknownCountry is returned when a country code was never loaded into the
// scorer.
var ErrUnknownCountry = errors.New("needindex: unknown country")

// CountryStats carries the per-country indicators the index is derived from.
// Optional indicators may be set to NaN when the source data is missing; the
// scorer substitutes the median of the known countries instead of failing.
type CountryStats struct {
	Country          string  `json:"country"`
	Population       float64 `json:"population"`
	UnemploymentRate float64 `json:"unemployment_rate"` // fraction in [0,1]
	IncomePerCapita  float64 `json:"income_per_capita"` // yearly, USD
	YouthRatio       float64 `json:"youth_ratio"`       // fraction in [0,1]
}

// Weights controls the contribution of each indicator to the composite index.
// They are configuration inputs, not hidden constants.
type Weights struct {
	Population   float64 `json:"population"`
	Unemployment float64 `json:"unemployment"`
	Income       float64 `json:"income"`
	YouthRatio   float64 `json:"youth_ratio"`
}

// DefaultWeights weighs all indicators equally.
func DefaultWeights() Weights {
	return Weights{Population: 0.25, Unemployment: 0.25, Income: 0.25, YouthRatio: 0.25}
}

// Validate checks that the weights form a usable combination.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"population":   w.Population,
		"unemployment": w.Unemployment,
		"income":       w.Income,
		"youth_ratio":  w.YouthRatio,
	} {
		if v < 0 {
			return fmt.Errorf("needindex: weight %s must not be negative", name)
		}
	}
	if w.Population+w.Unemployment+w.Income+w.YouthRatio <= 0 {
		return fmt.Errorf("needindex: at least one weight must be positive")
	}
	return nil
}

// Scorer computes a per-country priority weight in [0,1]. It is immutable
// after construction; recomputation means building a new Scorer.
type Scorer struct {
	weights Weights
	index   map[string]float64
}

type bounds struct{ lo, hi float64 }

// NewScorer builds the index from the provided country statistics. Missing
// optional indicators (NaN) are imputed with the median over the countries
// where the indicator is known.
func NewScorer(weights Weights, countries []CountryStats) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("needindex: no country statistics provided")
	}
	for _, c := range countries {
		if c.Country == "" {
			return nil, fmt.Errorf("needindex: country code is required")
		}
	}

	pop := imputed(countries, func(c CountryStats) float64 { return c.Population })
	unemp := imputed(countries, func(c CountryStats) float64 { return c.UnemploymentRate })
	income := imputed(countries, func(c CountryStats) float64 { return c.IncomePerCapita })
	youth := imputed(countries, func(c CountryStats) float64 { return c.YouthRatio })

	// Population spans orders of magnitude; compress before normalising.
	for i, v := range pop {
		pop[i] = math.Log1p(v)
	}

	popB, unempB, incomeB, youthB := rangeOf(pop), rangeOf(unemp), rangeOf(income), rangeOf(youth)
	total := weights.Population + weights.Unemployment + weights.Income + weights.YouthRatio

	index := make(map[string]float64, len(countries))
	for i, c := range countries {
		score := weights.Population*norm(pop[i], popB) +
			weights.Unemployment*norm(unemp[i], unempB) +
			// Lower income means higher need.
			weights.Income*(1-norm(income[i], incomeB)) +
			weights.YouthRatio*norm(youth[i], youthB)
		index[c.Country] = clamp01(score / total)
	}
	return &Scorer{weights: weights, index: index}, nil
}

// Score returns the need index for the given country code.
func (s *Scorer) Score(country string) (float64, error) {
	v, ok := s.index[country]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCountry, country)
	}
	return v, nil
}

// Known reports whether the country was part of the loaded statistics.
func (s *Scorer) Known(country string) bool {
	_, ok := s.index[country]
	return ok
}

// Index returns a copy of the full country index.
func (s *Scorer) Index() map[string]float64 {
	cp := make(map[string]float64, len(s.index))
	for k, v := range s.index {
		cp[k] = v
	}
	return cp
}

// imputed extracts one indicator per country, replacing NaN entries with the
// median of the known values. When no value is known the indicator collapses
// to zero for every country.
func imputed(countries []CountryStats, get func(CountryStats) float64) []float64 {
	out := make([]float64, len(countries))
	var known []float64
	for i, c := range countries {
		out[i] = get(c)
		if !math.IsNaN(out[i]) {
			known = append(known, out[i])
		}
	}
	med := 0.0
	if len(known) > 0 {
		sort.Float64s(known)
		med = stat.Quantile(0.5, stat.Empirical, known, nil)
	}
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = med
		}
	}
	return out
}

func rangeOf(vs []float64) bounds {
	b := bounds{lo: math.Inf(1), hi: math.Inf(-1)}
	for _, v := range vs {
		b.lo = math.Min(b.lo, v)
		b.hi = math.Max(b.hi, v)
	}
	return b
}

// norm min-max normalises v into [0,1]. A degenerate range maps to 0.5 so a
// single-country index stays meaningful.
func norm(v float64, b bounds) float64 {
	if b.hi <= b.lo {
		return 0.5
	}
	return clamp01((v - b.lo) / (b.hi - b.lo))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

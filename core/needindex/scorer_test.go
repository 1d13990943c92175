package needindex

import (
	"errors"
	"math"
	"testing"
)

func sampleCountries() []CountryStats {
	return []CountryStats{
		{Country: "SN", Population: 17_000_000, UnemploymentRate: 0.22, IncomePerCapita: 1600, YouthRatio: 0.42},
		{Country: "CI", Population: 28_000_000, UnemploymentRate: 0.09, IncomePerCapita: 2500, YouthRatio: 0.40},
		{Country: "FR", Population: 68_000_000, UnemploymentRate: 0.07, IncomePerCapita: 42000, YouthRatio: 0.17},
	}
}

func TestScoreOrdersByNeed(t *testing.T) {
	s, err := NewScorer(DefaultWeights(), sampleCountries())
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	sn, err := s.Score("SN")
	if err != nil {
		t.Fatalf("score SN: %v", err)
	}
	fr, err := s.Score("FR")
	if err != nil {
		t.Fatalf("score FR: %v", err)
	}
	if sn <= fr {
		t.Fatalf("expected SN (%f) to rank above FR (%f)", sn, fr)
	}
	for _, c := range []string{"SN", "CI", "FR"} {
		v, err := s.Score(c)
		if err != nil {
			t.Fatalf("score %s: %v", c, err)
		}
		if v < 0 || v > 1 {
			t.Fatalf("score %s out of [0,1]: %f", c, v)
		}
	}
}

func TestScoreUnknownCountry(t *testing.T) {
	s, err := NewScorer(DefaultWeights(), sampleCountries())
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	if _, err := s.Score("XX"); !errors.Is(err, ErrUnknownCountry) {
		t.Fatalf("expected ErrUnknownCountry, got %v", err)
	}
	if s.Known("XX") {
		t.Fatalf("XX should not be known")
	}
	if !s.Known("CI") {
		t.Fatalf("CI should be known")
	}
}

func TestMissingIndicatorImputedWithMedian(t *testing.T) {
	countries := sampleCountries()
	countries[1].UnemploymentRate = math.NaN()
	s, err := NewScorer(DefaultWeights(), countries)
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	v, err := s.Score("CI")
	if err != nil {
		t.Fatalf("score CI: %v", err)
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		t.Fatalf("imputed score unusable: %f", v)
	}
}

func TestSingleCountryIndex(t *testing.T) {
	s, err := NewScorer(DefaultWeights(), sampleCountries()[:1])
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	v, err := s.Score("SN")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	// Degenerate ranges collapse each indicator to 0.5.
	if math.Abs(v-0.5) > 1e-9 {
		t.Fatalf("expected 0.5 for single-country index, got %f", v)
	}
}

func TestWeightsValidate(t *testing.T) {
	if err := (Weights{Population: -1}).Validate(); err == nil {
		t.Fatalf("negative weight must be rejected")
	}
	if err := (Weights{}).Validate(); err == nil {
		t.Fatalf("all-zero weights must be rejected")
	}
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights: %v", err)
	}
}

func TestNewScorerRejectsBadInput(t *testing.T) {
	if _, err := NewScorer(DefaultWeights(), nil); err == nil {
		t.Fatalf("empty country list must be rejected")
	}
	if _, err := NewScorer(DefaultWeights(), []CountryStats{{}}); err == nil {
		t.Fatalf("missing country code must be rejected")
	}
}

func TestIndexReturnsCopy(t *testing.T) {
	s, err := NewScorer(DefaultWeights(), sampleCountries())
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	idx := s.Index()
	idx["SN"] = 99
	v, _ := s.Score("SN")
	if v == 99 {
		t.Fatalf("Index must not expose internal state")
	}
}

package model

import (
	"math"
	"testing"
)

func TestProviderValidate(t *testing.T) {
	p := Provider{ID: "p1", Country: "SN", AcceptanceRate: 0.5}
	if err := p.Validate(); err != nil {
		t.Fatalf("valid provider rejected: %v", err)
	}
	if err := (Provider{Country: "SN"}).Validate(); err == nil {
		t.Fatalf("missing id must be rejected")
	}
	if err := (Provider{ID: "p1"}).Validate(); err == nil {
		t.Fatalf("missing country must be rejected")
	}
	if err := (Provider{ID: "p1", Country: "SN", AcceptanceRate: 1.2}).Validate(); err == nil {
		t.Fatalf("acceptance rate above 1 must be rejected")
	}
}

func TestSkillMatch(t *testing.T) {
	p := Provider{ID: "p1", Country: "SN", Skills: []string{"go", "sql"}}
	if got := p.SkillMatch([]string{"go", "sql"}); got != 1 {
		t.Fatalf("full match = %f, want 1", got)
	}
	if got := p.SkillMatch([]string{"go", "design"}); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("half match = %f, want 0.5", got)
	}
	if got := p.SkillMatch([]string{"design"}); got != 0 {
		t.Fatalf("no match = %f, want 0", got)
	}
	if got := p.SkillMatch(nil); got != 0 {
		t.Fatalf("empty requirement = %f, want 0", got)
	}
}

func TestAcceptsMode(t *testing.T) {
	anyMode := Provider{ID: "p1", Country: "SN"}
	if !anyMode.AcceptsMode(ModeOnsite) {
		t.Fatalf("provider without modes must accept any")
	}
	remote := Provider{ID: "p2", Country: "SN", Modes: []WorkMode{ModeRemote}}
	if remote.AcceptsMode(ModeOnsite) {
		t.Fatalf("remote-only provider must refuse onsite")
	}
	if !remote.AcceptsMode(ModeRemote) {
		t.Fatalf("remote-only provider must accept remote")
	}
	hybrid := Provider{ID: "p3", Country: "SN", Modes: []WorkMode{ModeHybrid}}
	if !hybrid.AcceptsMode(ModeOnsite) {
		t.Fatalf("hybrid provider works in any mode")
	}
}

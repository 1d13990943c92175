package dispatch

// Target is where an unconfirmed mission goes next.
type Target string

const (
	TargetNextWave      Target = "next_wave"
	TargetHumanFallback Target = "human_fallback"
)

// Reason explains an escalation decision.
type Reason string

const (
	ReasonNoResponse     Reason = "no_response"
	ReasonQuotaExhausted Reason = "quota_exhausted"
	ReasonSkillMismatch  Reason = "skill_mismatch"
)

// Decision is the outcome of evaluating the escalation policy.
type Decision struct {
	Target  Target
	Reasons []Reason
}

// PolicyInput captures everything the escalation policy may look at. The
// bounded quota re-rank retry happens in the dispatcher before Decide is
// called, so PoolRemaining already reflects it.
type PolicyInput struct {
	WaveCount        int
	MaxWaves         int
	PoolRemaining    int
	QuotaTruncated   bool
	PoolEmptyAtStart bool
}

// Decide evaluates the escalation rules in order. It is a pure function of
// its input: identical inputs always produce identical decisions.
func Decide(in PolicyInput) Decision {
	if in.PoolRemaining > 0 && in.WaveCount < in.MaxWaves {
		return Decision{Target: TargetNextWave, Reasons: []Reason{ReasonNoResponse}}
	}
	if in.PoolRemaining == 0 && in.QuotaTruncated {
		return Decision{Target: TargetHumanFallback, Reasons: []Reason{ReasonQuotaExhausted}}
	}
	if in.PoolEmptyAtStart {
		return Decision{Target: TargetHumanFallback, Reasons: []Reason{ReasonSkillMismatch}}
	}
	return Decision{Target: TargetHumanFallback, Reasons: []Reason{ReasonNoResponse}}
}

func reasonStrings(rs []Reason) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}

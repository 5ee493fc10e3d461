package recommend

import "github.com/signalworks/pulse/internal/profile"

// Chaos-indicator thresholds for the complexity-alignment bonus. A user
// reporting above chaosHigh gets a bonus on simple actions; below
// chaosLow, on advanced ones. At most one of the two bonuses can apply.
const (
	chaosHigh = 7
	chaosLow  = 4

	alignmentBonus    = 5
	industryBonus     = 3
	businessSizeBonus = 2
)

// Score assigns a relevance score to a candidate as a sum of independent
// weighted terms, so each term can be tested on its own and the total is
// monotonic in every input.
func Score(c Candidate, p profile.BusinessProfile) int {
	score := c.BasePriority.Weight()

	if p.ChaosIndicator > chaosHigh && c.Complexity == profile.ComplexitySimple {
		score += alignmentBonus
	} else if p.ChaosIndicator < chaosLow && c.Complexity == profile.ComplexityAdvanced {
		score += alignmentBonus
	}

	if p.Industry != "" && containsString(c.Industries, p.Industry) {
		score += industryBonus
	}
	if p.BusinessSize != "" && containsString(c.BusinessSizes, p.BusinessSize) {
		score += businessSizeBonus
	}

	return score
}

// ScoreAll scores candidates preserving input order.
func ScoreAll(candidates []Candidate, p profile.BusinessProfile) []Scored {
	out := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Scored{Candidate: c, Score: Score(c, p)})
	}
	return out
}

func containsString(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

package recommend

import (
	"sort"

	"github.com/signalworks/pulse/internal/profile"
)

// Feed caps per refresh frequency. Hourly shares the daily cap since
// finer-grained reruns already limit volume; monthly is unbounded.
const (
	dailyCap  = 7
	weeklyCap = 15
)

// SelectScored filters scored candidates by the user's complexity
// tolerance, orders them by descending score, and truncates to the
// frequency-derived cap. The sort is stable, so ties keep candidate
// insertion order and the output is byte-identical across reruns with
// identical inputs.
func SelectScored(scored []Scored, prefs profile.UserPreferences) []Scored {
	filtered := make([]Scored, 0, len(scored))
	for _, s := range scored {
		if complexityAllowed(prefs.ComplexityTolerance, s.Candidate.Complexity) {
			filtered = append(filtered, s)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})

	if limit := FrequencyCap(prefs.Frequency); limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

// Select is SelectScored with the scores stripped, for callers that only
// need the candidates.
func Select(scored []Scored, prefs profile.UserPreferences) []Candidate {
	selected := SelectScored(scored, prefs)
	out := make([]Candidate, 0, len(selected))
	for _, s := range selected {
		out = append(out, s.Candidate)
	}
	return out
}

// FrequencyCap returns the maximum feed size for a refresh frequency.
// 0 means unbounded.
func FrequencyCap(f profile.Frequency) int {
	switch f {
	case profile.FrequencyHourly, profile.FrequencyDaily:
		return dailyCap
	case profile.FrequencyWeekly:
		return weeklyCap
	default: // monthly
		return 0
	}
}

// complexityAllowed: simple and moderate tolerance both exclude advanced
// actions; advanced tolerance keeps everything.
func complexityAllowed(tolerance, candidate profile.Complexity) bool {
	if tolerance == profile.ComplexityAdvanced {
		return true
	}
	return candidate != profile.ComplexityAdvanced
}

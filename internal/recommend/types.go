// Package recommend generates, scores, and selects business
// recommendations from a user's profile and preferences.
//
// The pipeline is generate → score → select → persist. Generation and
// scoring are pure functions of their inputs; only the final persist step
// (Engine.RunPass) touches the store. Scores are raw additive weights,
// comparable only within a single pass for a single user.
package recommend

import "github.com/signalworks/pulse/internal/profile"

// Priority is a candidate's base priority tier.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight is the priority's contribution to the additive score.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 10
	case PriorityMedium:
		return 5
	default:
		return 2
	}
}

// Candidate is an unscored, untriaged recommendation proposal. Candidates
// are produced fresh on every pass and never mutated after creation.
// Empty Industries or BusinessSizes means the candidate applies to all.
type Candidate struct {
	Type          string             `json:"type"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	BasePriority  Priority           `json:"base_priority"`
	Complexity    profile.Complexity `json:"complexity"`
	Industries    []string           `json:"industries,omitempty"`
	BusinessSizes []string           `json:"business_sizes,omitempty"`
}

// appliesTo reports whether the candidate fits the profile. A missing
// profile field widens applicability rather than excluding anything.
func (c Candidate) appliesTo(p profile.BusinessProfile) bool {
	return matches(p.Industry, c.Industries) && matches(p.BusinessSize, c.BusinessSizes)
}

func matches(value string, set []string) bool {
	if value == "" || len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

// Scored pairs a candidate with its score; it is the ordering key for
// selection.
type Scored struct {
	Candidate Candidate `json:"candidate"`
	Score     int       `json:"score"`
}

package store

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a lifecycle transition request
// falls outside the state graph. The row is left unchanged.
var ErrInvalidTransition = errors.New("invalid transition")

// opportunityGraph: pending → {contacted, dismissed},
// contacted → {converted, dismissed}. Converted and dismissed are terminal.
var opportunityGraph = map[string][]string{
	OpportunityPending:   {OpportunityContacted, OpportunityDismissed},
	OpportunityContacted: {OpportunityConverted, OpportunityDismissed},
}

// recommendationGraph: active → {implemented, dismissed, expired};
// all three targets are terminal.
var recommendationGraph = map[string][]string{
	RecommendationActive: {RecommendationImplemented, RecommendationDismissed, RecommendationExpired},
}

// ValidateOpportunityTransition reports whether from → to is a legal
// opportunity transition.
func ValidateOpportunityTransition(from, to string) error {
	return validate(opportunityGraph, "opportunity", from, to)
}

// ValidateRecommendationTransition reports whether from → to is a legal
// recommendation transition.
func ValidateRecommendationTransition(from, to string) error {
	return validate(recommendationGraph, "recommendation", from, to)
}

func validate(graph map[string][]string, kind, from, to string) error {
	for _, allowed := range graph[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s → %s", ErrInvalidTransition, kind, from, to)
}

// Package profile holds the read-only business context the engine scores
// against: who the business is (industry, size, pricing) and what the user
// asked for (focus areas, cadence, complexity ceiling).
//
// Both records are supplied by the surrounding application's profile and
// settings stores. The engine never mutates them.
package profile

import "strings"

// Complexity is a user-declared ceiling on how involved a recommended
// action may be.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityAdvanced Complexity = "advanced"
)

// Frequency controls how often the recommendation feed refreshes, and
// therefore how many items one pass may emit.
type Frequency string

const (
	FrequencyHourly  Frequency = "hourly"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// PriceRange is the business's typical job price band. Absent when the
// business hasn't filled in pricing yet.
type PriceRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// BusinessProfile is the slice of the business record the engine reads.
// Optional fields may be zero; missing data widens applicability instead
// of erroring.
type BusinessProfile struct {
	Industry       string      `json:"industry"`
	BusinessSize   string      `json:"business_size"` // "solo", "small", "medium", "large"
	ChaosIndicator int         `json:"chaos_indicator"` // 0-10 self-reported overwhelm
	PriceRange     *PriceRange `json:"price_range,omitempty"`
}

// UserPreferences are the user's declared recommendation settings.
type UserPreferences struct {
	Frequency           Frequency  `json:"frequency"`
	FocusAreas          []string   `json:"focus_areas"`
	ComplexityTolerance Complexity `json:"complexity_tolerance"`
}

// ParseComplexity normalizes a complexity string. Unknown values fall back
// to moderate rather than erroring, matching the engine's total-function
// posture on user input.
func ParseComplexity(s string) Complexity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return ComplexitySimple
	case "advanced":
		return ComplexityAdvanced
	default:
		return ComplexityModerate
	}
}

// ParseFrequency normalizes a frequency string, defaulting to weekly.
func ParseFrequency(s string) Frequency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hourly":
		return FrequencyHourly
	case "daily":
		return FrequencyDaily
	case "monthly":
		return FrequencyMonthly
	default:
		return FrequencyWeekly
	}
}

// HasFocusArea reports whether the user opted into the given focus area.
// Matching is case-insensitive.
func (p UserPreferences) HasFocusArea(area string) bool {
	for _, a := range p.FocusAreas {
		if strings.EqualFold(strings.TrimSpace(a), area) {
			return true
		}
	}
	return false
}

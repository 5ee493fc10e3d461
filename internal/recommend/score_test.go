package recommend

import (
	"testing"

	"github.com/signalworks/pulse/internal/profile"
)

func TestScore_BasePriorityWeights(t *testing.T) {
	p := profile.BusinessProfile{ChaosIndicator: 5}

	tests := []struct {
		priority Priority
		want     int
	}{
		{PriorityHigh, 10},
		{PriorityMedium, 5},
		{PriorityLow, 2},
	}
	for _, tt := range tests {
		c := Candidate{BasePriority: tt.priority, Complexity: profile.ComplexityModerate}
		if got := Score(c, p); got != tt.want {
			t.Errorf("Score(priority=%s) = %d, want %d", tt.priority, got, tt.want)
		}
	}
}

func TestScore_ChaosAlignment(t *testing.T) {
	simple := Candidate{BasePriority: PriorityLow, Complexity: profile.ComplexitySimple}
	advanced := Candidate{BasePriority: PriorityLow, Complexity: profile.ComplexityAdvanced}
	moderate := Candidate{BasePriority: PriorityLow, Complexity: profile.ComplexityModerate}

	// Overwhelmed users (chaos > 7) get a bonus on simple actions only.
	overwhelmed := profile.BusinessProfile{ChaosIndicator: 8}
	if got := Score(simple, overwhelmed); got != 7 {
		t.Errorf("overwhelmed + simple = %d, want 7 (2 base + 5 bonus)", got)
	}
	if got := Score(advanced, overwhelmed); got != 2 {
		t.Errorf("overwhelmed + advanced = %d, want 2 (no bonus)", got)
	}

	// Capable users (chaos < 4) get a bonus on advanced actions only.
	capable := profile.BusinessProfile{ChaosIndicator: 2}
	if got := Score(advanced, capable); got != 7 {
		t.Errorf("capable + advanced = %d, want 7", got)
	}
	if got := Score(simple, capable); got != 2 {
		t.Errorf("capable + simple = %d, want 2 (no bonus)", got)
	}

	// Mid-range chaos grants neither bonus.
	for _, chaos := range []int{4, 5, 6, 7} {
		p := profile.BusinessProfile{ChaosIndicator: chaos}
		for _, c := range []Candidate{simple, advanced, moderate} {
			if got := Score(c, p); got != 2 {
				t.Errorf("chaos=%d complexity=%s: score = %d, want 2", chaos, c.Complexity, got)
			}
		}
	}
}

func TestScore_IndustryAndSizeMatch(t *testing.T) {
	c := Candidate{
		BasePriority:  PriorityLow,
		Complexity:    profile.ComplexityModerate,
		Industries:    []string{"plumbing", "hvac"},
		BusinessSizes: []string{"solo", "small"},
	}

	tests := []struct {
		name string
		p    profile.BusinessProfile
		want int
	}{
		{"no match", profile.BusinessProfile{Industry: "cleaning", BusinessSize: "large", ChaosIndicator: 5}, 2},
		{"industry only", profile.BusinessProfile{Industry: "plumbing", BusinessSize: "large", ChaosIndicator: 5}, 5},
		{"size only", profile.BusinessProfile{Industry: "cleaning", BusinessSize: "solo", ChaosIndicator: 5}, 4},
		{"both", profile.BusinessProfile{Industry: "hvac", BusinessSize: "small", ChaosIndicator: 5}, 7},
		{"empty profile gets no match bonus", profile.BusinessProfile{ChaosIndicator: 5}, 2},
	}
	for _, tt := range tests {
		if got := Score(c, tt.p); got != tt.want {
			t.Errorf("%s: score = %d, want %d", tt.name, got, tt.want)
		}
	}
}

// All terms stacked: 10 base + 5 alignment + 3 industry + 2 size = 20.
func TestScore_MaxStack(t *testing.T) {
	c := Candidate{
		BasePriority:  PriorityHigh,
		Complexity:    profile.ComplexitySimple,
		Industries:    []string{"plumbing"},
		BusinessSizes: []string{"solo"},
	}
	p := profile.BusinessProfile{Industry: "plumbing", BusinessSize: "solo", ChaosIndicator: 9}
	if got := Score(c, p); got != 20 {
		t.Errorf("score = %d, want 20", got)
	}
}

func TestScoreAll_PreservesOrder(t *testing.T) {
	candidates := []Candidate{
		{Title: "a", BasePriority: PriorityLow, Complexity: profile.ComplexityModerate},
		{Title: "b", BasePriority: PriorityHigh, Complexity: profile.ComplexityModerate},
		{Title: "c", BasePriority: PriorityMedium, Complexity: profile.ComplexityModerate},
	}
	scored := ScoreAll(candidates, profile.BusinessProfile{ChaosIndicator: 5})
	if len(scored) != 3 {
		t.Fatalf("len = %d, want 3", len(scored))
	}
	for i, want := range []string{"a", "b", "c"} {
		if scored[i].Candidate.Title != want {
			t.Errorf("scored[%d] = %q, want %q (input order preserved)", i, scored[i].Candidate.Title, want)
		}
	}
}

package recommend

import (
	"reflect"
	"testing"

	"github.com/signalworks/pulse/internal/profile"
)

func TestGenerate_FiltersByIndustryAndSize(t *testing.T) {
	g := Generator{FocusArea: "test", catalog: []Candidate{
		{Title: "everyone"},
		{Title: "trades only", Industries: []string{"plumbing", "hvac"}},
		{Title: "big only", BusinessSizes: []string{"medium", "large"}},
		{Title: "solo plumbers", Industries: []string{"plumbing"}, BusinessSizes: []string{"solo"}},
	}}

	got := g.Generate(profile.BusinessProfile{Industry: "plumbing", BusinessSize: "solo"})
	want := []string{"everyone", "trades only", "solo plumbers"}
	if !sameTitles(got, want) {
		t.Errorf("plumbing/solo: got %v, want %v", titles(got), want)
	}

	got = g.Generate(profile.BusinessProfile{Industry: "cleaning", BusinessSize: "large"})
	want = []string{"everyone", "big only"}
	if !sameTitles(got, want) {
		t.Errorf("cleaning/large: got %v, want %v", titles(got), want)
	}
}

// Missing profile fields widen applicability: an empty profile matches the
// full catalog rather than erroring or excluding.
func TestGenerate_EmptyProfileWidens(t *testing.T) {
	for _, g := range Generators() {
		all := g.Generate(profile.BusinessProfile{})
		if len(all) != len(g.catalog) {
			t.Errorf("%s: empty profile yielded %d of %d candidates", g.FocusArea, len(all), len(g.catalog))
		}
	}
}

func TestGenerateAll_RespectsFocusAreas(t *testing.T) {
	bp := profile.BusinessProfile{}

	none := GenerateAll(bp, profile.UserPreferences{})
	if len(none) != 0 {
		t.Errorf("no focus areas should yield no candidates, got %d", len(none))
	}

	one := GenerateAll(bp, profile.UserPreferences{FocusAreas: []string{FocusMarketingSales}})
	for _, c := range one {
		if c.Type != "marketing" {
			t.Errorf("unexpected candidate type %q for marketing-only prefs", c.Type)
		}
	}

	// Focus area matching is case-insensitive.
	caseless := GenerateAll(bp, profile.UserPreferences{FocusAreas: []string{"marketing & sales"}})
	if !reflect.DeepEqual(titles(one), titles(caseless)) {
		t.Error("focus area matching should be case-insensitive")
	}

	all := GenerateAll(bp, profile.UserPreferences{FocusAreas: []string{
		FocusRevenueGrowth, FocusOperationalEff, FocusCustomerAcquisition,
		FocusTeamManagement, FocusFinancialHealth, FocusMarketingSales,
	}})
	if len(all) <= len(one) {
		t.Errorf("all focus areas yielded %d candidates, expected more than %d", len(all), len(one))
	}
}

// Generator order is fixed regardless of the order focus areas were
// declared in preferences.
func TestGenerateAll_DeterministicOrder(t *testing.T) {
	bp := profile.BusinessProfile{Industry: "hvac", BusinessSize: "small"}

	forward := GenerateAll(bp, profile.UserPreferences{
		FocusAreas: []string{FocusRevenueGrowth, FocusMarketingSales},
	})
	reversed := GenerateAll(bp, profile.UserPreferences{
		FocusAreas: []string{FocusMarketingSales, FocusRevenueGrowth},
	})

	if !reflect.DeepEqual(titles(forward), titles(reversed)) {
		t.Errorf("candidate order depends on focus-area declaration order:\n%v\n%v",
			titles(forward), titles(reversed))
	}
}

func titles(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Title
	}
	return out
}

func sameTitles(cs []Candidate, want []string) bool {
	return reflect.DeepEqual(titles(cs), want)
}

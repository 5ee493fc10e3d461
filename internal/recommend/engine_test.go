package recommend

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/signalworks/pulse/internal/profile"
	"github.com/signalworks/pulse/internal/store"
)

func newEngineFixture(t *testing.T) (*Engine, store.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "pulse.db")
	st, err := store.NewStore(store.StoreConfig{DBPath: dbPath})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewEngine(st, DefaultOptions()), st
}

func passInputs() (profile.BusinessProfile, profile.UserPreferences) {
	bp := profile.BusinessProfile{
		Industry:       "plumbing",
		BusinessSize:   "small",
		ChaosIndicator: 8,
	}
	prefs := profile.UserPreferences{
		Frequency:           profile.FrequencyDaily,
		FocusAreas:          []string{FocusRevenueGrowth, FocusOperationalEff, FocusMarketingSales},
		ComplexityTolerance: profile.ComplexityModerate,
	}
	return bp, prefs
}

func TestRunPass_PersistsSelectedSet(t *testing.T) {
	e, st := newEngineFixture(t)
	ctx := context.Background()
	bp, prefs := passInputs()

	report, err := e.RunPass(ctx, "user-1", bp, prefs)
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if report.Selected == 0 || report.Persisted != report.Selected {
		t.Fatalf("report = %+v, want everything selected to persist on first pass", report)
	}
	if report.Selected > 7 {
		t.Fatalf("selected = %d, exceeds daily cap", report.Selected)
	}

	active, err := st.ListActive(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != report.Persisted {
		t.Fatalf("active set = %d rows, report says %d persisted", len(active), report.Persisted)
	}
	for _, rec := range active {
		if rec.ExpiresAt.Before(rec.CreatedAt) {
			t.Errorf("recommendation %q expires before creation", rec.Title)
		}
	}
}

// Two identical passes select the same candidates and leave at most one
// active row per (user, type, title).
func TestRunPass_IdempotentAndDeduplicated(t *testing.T) {
	e, st := newEngineFixture(t)
	ctx := context.Background()
	bp, prefs := passInputs()

	first, err := e.RunPass(ctx, "user-1", bp, prefs)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := e.RunPass(ctx, "user-1", bp, prefs)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}

	firstTitles := recTitles(first.Recommendations)
	secondTitles := recTitles(second.Recommendations)
	if !reflect.DeepEqual(firstTitles, secondTitles) {
		t.Errorf("passes differ:\nfirst:  %v\nsecond: %v", firstTitles, secondTitles)
	}
	if second.Superseded != second.Persisted {
		t.Errorf("second pass superseded %d of %d persisted rows, want all", second.Superseded, second.Persisted)
	}

	active, err := st.ListActive(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	seen := map[[2]string]bool{}
	for _, rec := range active {
		key := [2]string{rec.RecType, rec.Title}
		if seen[key] {
			t.Fatalf("duplicate active row for %v", key)
		}
		seen[key] = true
	}
	if len(active) != second.Persisted {
		t.Errorf("active set = %d rows after second pass, want %d", len(active), second.Persisted)
	}
}

// A recently dismissed recommendation must not bounce straight back into
// the feed while the cooldown window is open.
func TestRunPass_DismissedCooldown(t *testing.T) {
	e, st := newEngineFixture(t)
	ctx := context.Background()
	bp, prefs := passInputs()

	first, err := e.RunPass(ctx, "user-1", bp, prefs)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if len(first.Recommendations) == 0 {
		t.Fatal("first pass selected nothing")
	}

	dismissed := first.Recommendations[0]
	if err := st.TransitionRecommendation(ctx, dismissed.ID, store.RecommendationDismissed); err != nil {
		t.Fatalf("dismiss: %v", err)
	}

	second, err := e.RunPass(ctx, "user-1", bp, prefs)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if second.CooldownSkipped != 1 {
		t.Errorf("cooldown skipped = %d, want 1", second.CooldownSkipped)
	}
	for _, rec := range second.Recommendations {
		if rec.RecType == dismissed.RecType && rec.Title == dismissed.Title {
			t.Errorf("dismissed recommendation %q regenerated inside cooldown", rec.Title)
		}
	}
}

func TestRunPass_CooldownDisabled(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pulse.db")
	st, err := store.NewStore(store.StoreConfig{DBPath: dbPath})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()

	e := NewEngine(st, Options{TTLDays: 30, CooldownDays: 0})
	ctx := context.Background()
	bp, prefs := passInputs()

	first, err := e.RunPass(ctx, "user-1", bp, prefs)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if err := st.TransitionRecommendation(ctx, first.Recommendations[0].ID, store.RecommendationDismissed); err != nil {
		t.Fatalf("dismiss: %v", err)
	}

	second, err := e.RunPass(ctx, "user-1", bp, prefs)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if second.CooldownSkipped != 0 {
		t.Errorf("cooldown skipped = %d with cooldown disabled, want 0", second.CooldownSkipped)
	}
	if second.Persisted != second.Selected {
		t.Errorf("persisted = %d, want all %d selected", second.Persisted, second.Selected)
	}
}

func TestRunPass_EmptyUserID(t *testing.T) {
	e, _ := newEngineFixture(t)
	bp, prefs := passInputs()
	if _, err := e.RunPass(context.Background(), "", bp, prefs); err == nil {
		t.Fatal("expected error for empty user ID")
	}
}

func recTitles(recs []store.ActiveRecommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

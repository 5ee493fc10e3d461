package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/signalworks/pulse/internal/profile"
	"github.com/signalworks/pulse/internal/store"
)

// Default lifecycle knobs for a scoring pass, overridable via Options.
const (
	DefaultTTLDays      = 30
	DefaultCooldownDays = 14
)

// Options tunes the persistence side of a scoring pass.
type Options struct {
	TTLDays      int // days until an active recommendation expires
	CooldownDays int // skip regenerating a key dismissed within this window; 0 disables
}

// DefaultOptions returns the standard pass options.
func DefaultOptions() Options {
	return Options{TTLDays: DefaultTTLDays, CooldownDays: DefaultCooldownDays}
}

// PassReport summarizes one scoring pass.
type PassReport struct {
	UserID          string                       `json:"user_id"`
	Generated       int                          `json:"generated"`
	Selected        int                          `json:"selected"`
	Persisted       int                          `json:"persisted"`
	Superseded      int                          `json:"superseded"`
	CooldownSkipped int                          `json:"cooldown_skipped"`
	Recommendations []store.ActiveRecommendation `json:"recommendations"`
}

// Engine runs full scoring passes against the store. The generate, score,
// and select stages stay pure; the engine only adds persistence around
// them.
type Engine struct {
	st   store.Store
	opts Options
	now  func() time.Time
}

// NewEngine creates a pass engine.
func NewEngine(st store.Store, opts Options) *Engine {
	if opts.TTLDays <= 0 {
		opts.TTLDays = DefaultTTLDays
	}
	if opts.CooldownDays < 0 {
		opts.CooldownDays = 0
	}
	return &Engine{st: st, opts: opts, now: func() time.Time { return time.Now().UTC() }}
}

// RunPass generates, scores, and selects candidates for one user, then
// persists the selected set. Each persisted row supersedes any active row
// with the same (user, type, title), so re-running with identical inputs
// yields the same selected set and never duplicates active rows.
func (e *Engine) RunPass(ctx context.Context, userID string, bp profile.BusinessProfile, prefs profile.UserPreferences) (*PassReport, error) {
	if userID == "" {
		return nil, fmt.Errorf("run pass: user ID cannot be empty")
	}

	candidates := GenerateAll(bp, prefs)
	selected := SelectScored(ScoreAll(candidates, bp), prefs)

	report := &PassReport{
		UserID:    userID,
		Generated: len(candidates),
		Selected:  len(selected),
	}

	now := e.now()
	expires := now.AddDate(0, 0, e.opts.TTLDays)

	for _, s := range selected {
		if e.opts.CooldownDays > 0 {
			latest, err := e.st.LatestByKey(ctx, userID, s.Candidate.Type, s.Candidate.Title)
			if err != nil {
				return nil, fmt.Errorf("cooldown check for %q: %w", s.Candidate.Title, err)
			}
			if latest != nil && latest.Status == store.RecommendationDismissed &&
				now.Sub(latest.CreatedAt) < time.Duration(e.opts.CooldownDays)*24*time.Hour {
				report.CooldownSkipped++
				continue
			}
		}

		rec := store.ActiveRecommendation{
			UserID:       userID,
			RecType:      s.Candidate.Type,
			Title:        s.Candidate.Title,
			Description:  s.Candidate.Description,
			BasePriority: string(s.Candidate.BasePriority),
			Complexity:   string(s.Candidate.Complexity),
			Score:        s.Score,
			CreatedAt:    now,
			ExpiresAt:    expires,
		}
		superseded, err := e.st.ReplaceActive(ctx, &rec)
		if err != nil {
			return nil, fmt.Errorf("persisting %q: %w", s.Candidate.Title, err)
		}
		report.Persisted++
		report.Superseded += superseded
		report.Recommendations = append(report.Recommendations, rec)
	}

	return report, nil
}

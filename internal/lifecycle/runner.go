// Package lifecycle applies time-based maintenance to the persisted
// recommendation set, currently TTL expiry of overdue active rows.
//
// The runner plans its actions first and applies them second, so a dry
// run produces the exact action list a real run would apply.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/signalworks/pulse/internal/store"
)

// Action describes one planned or applied lifecycle change.
type Action struct {
	Policy           string `json:"policy"`
	RecommendationID string `json:"recommendation_id"`
	UserID           string `json:"user_id"`
	FromState        string `json:"from_state"`
	ToState          string `json:"to_state"`
	Reason           string `json:"reason"`
	Applied          bool   `json:"applied"`
}

// Report summarizes one runner invocation.
type Report struct {
	DryRun  bool     `json:"dry_run"`
	Scanned int      `json:"scanned"`
	Applied int      `json:"applied"`
	Actions []Action `json:"actions"`
}

// Runner scans for overdue active recommendations and expires them.
type Runner struct {
	st     store.Store
	sqlite *store.SQLiteStore
	now    time.Time
}

// NewRunner creates a lifecycle runner. Requires the SQLite store since
// the expiry scan is an ad hoc query outside the Store interface.
func NewRunner(st store.Store) (*Runner, error) {
	sqlite, ok := st.(*store.SQLiteStore)
	if !ok {
		return nil, fmt.Errorf("lifecycle runner requires sqlite store")
	}
	return &Runner{st: st, sqlite: sqlite, now: time.Now().UTC()}, nil
}

// Run executes the TTL expiry policy. With dryRun set, actions are planned
// and reported but nothing is written.
func (r *Runner) Run(ctx context.Context, dryRun bool) (*Report, error) {
	report := &Report{DryRun: dryRun, Actions: make([]Action, 0, 16)}

	rows, err := r.sqlite.GetDB().QueryContext(ctx, `
		SELECT id, user_id, expires_at
		FROM recommendations
		WHERE status = ? AND expires_at <= ?
		ORDER BY expires_at, id`,
		store.RecommendationActive, r.now)
	if err != nil {
		return nil, fmt.Errorf("query expiry candidates: %w", err)
	}

	for rows.Next() {
		var id, userID string
		var expiresAt time.Time
		if err := rows.Scan(&id, &userID, &expiresAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan expiry row: %w", err)
		}
		report.Scanned++
		report.Actions = append(report.Actions, Action{
			Policy:           "ttl-expire",
			RecommendationID: id,
			UserID:           userID,
			FromState:        store.RecommendationActive,
			ToState:          store.RecommendationExpired,
			Reason:           fmt.Sprintf("expires_at %s <= %s", expiresAt.Format(time.RFC3339), r.now.Format(time.RFC3339)),
		})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close expiry rows: %w", err)
	}

	if !dryRun {
		for i := range report.Actions {
			a := &report.Actions[i]
			if err := r.st.TransitionRecommendation(ctx, a.RecommendationID, store.RecommendationExpired); err != nil {
				a.Reason += "; apply_error: " + err.Error()
			} else {
				a.Applied = true
				report.Applied++
			}
		}
	}

	return report, nil
}

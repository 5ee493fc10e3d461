// Package observe reports on engine output: opportunity pipeline counts,
// active-set size, and engagement volume.
package observe

import (
	"context"
	"fmt"
	"strings"

	"github.com/signalworks/pulse/internal/store"
)

// Engine produces observability reports over the store.
type Engine struct {
	st store.Store
}

// NewEngine creates an observe engine.
func NewEngine(st store.Store) *Engine {
	return &Engine{st: st}
}

// Report is a snapshot of engine state for one user (or the whole store
// when UserID is empty).
type Report struct {
	UserID                string           `json:"user_id,omitempty"`
	Opportunities         map[string]int64 `json:"opportunities_by_status"`
	ConversionRate        float64          `json:"conversion_rate"`
	ActiveRecommendations int64            `json:"active_recommendations"`
	ExpiredTotal          int64            `json:"expired_total"`
	EngagementEvents      int64            `json:"engagement_events"`
}

// Snapshot gathers current counts.
func (e *Engine) Snapshot(ctx context.Context, userID string) (*Report, error) {
	stats, err := e.st.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("gathering stats: %w", err)
	}
	return &Report{
		UserID:                userID,
		Opportunities:         stats.OpportunitiesByStatus,
		ConversionRate:        stats.ConversionRate,
		ActiveRecommendations: stats.ActiveRecommendations,
		ExpiredTotal:          stats.ExpiredTotal,
		EngagementEvents:      stats.EngagementEvents,
	}, nil
}

// Format renders a report for terminal output.
func (r *Report) Format() string {
	var sb strings.Builder
	if r.UserID != "" {
		fmt.Fprintf(&sb, "User: %s\n", r.UserID)
	}
	sb.WriteString("Opportunities:\n")
	for _, status := range []string{
		store.OpportunityPending, store.OpportunityContacted,
		store.OpportunityConverted, store.OpportunityDismissed,
	} {
		fmt.Fprintf(&sb, "  %-10s %d\n", status, r.Opportunities[status])
	}
	fmt.Fprintf(&sb, "Conversion rate: %.0f%%\n", r.ConversionRate*100)
	fmt.Fprintf(&sb, "Active recommendations: %d (expired to date: %d)\n",
		r.ActiveRecommendations, r.ExpiredTotal)
	fmt.Fprintf(&sb, "Engagement events: %d\n", r.EngagementEvents)
	return sb.String()
}

// Package feedback records user reactions to recommendations and applies
// the lifecycle transition each reaction implies.
//
// Implemented and dismissed reactions move the recommendation to the
// matching terminal state before the event is logged; a rating only logs.
// The event log is the raw input for future scoring-weight tuning, which
// happens outside the engine.
package feedback

import (
	"context"
	"fmt"

	"github.com/signalworks/pulse/internal/store"
)

// Channel consumes engagement events against the store.
type Channel struct {
	st store.Store
}

// NewChannel creates a feedback channel.
func NewChannel(st store.Store) *Channel {
	return &Channel{st: st}
}

// Apply records one engagement event. For implemented/dismissed actions
// the recommendation's status transition runs first; if the row is already
// terminal the transition error surfaces and nothing is logged, keeping
// the event log consistent with row state.
func (c *Channel) Apply(ctx context.Context, e *store.EngagementEvent) error {
	rec, err := c.st.GetRecommendation(ctx, e.RecommendationID)
	if err != nil {
		return fmt.Errorf("looking up recommendation: %w", err)
	}
	if e.UserID == "" {
		e.UserID = rec.UserID
	}

	switch e.Action {
	case store.EngagementImplemented:
		if err := c.st.TransitionRecommendation(ctx, rec.ID, store.RecommendationImplemented); err != nil {
			return err
		}
	case store.EngagementDismissed:
		if err := c.st.TransitionRecommendation(ctx, rec.ID, store.RecommendationDismissed); err != nil {
			return err
		}
	case store.EngagementRated:
		// no status change
	default:
		return fmt.Errorf("unknown engagement action %q", e.Action)
	}

	if err := c.st.RecordEngagement(ctx, e); err != nil {
		return fmt.Errorf("recording engagement: %w", err)
	}
	return nil
}

// Summary returns per-type engagement aggregates for a user.
func (c *Channel) Summary(ctx context.Context, userID string) ([]store.TypeEngagement, error) {
	return c.st.EngagementByType(ctx, userID)
}

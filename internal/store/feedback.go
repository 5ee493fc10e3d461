package store

import (
	"context"
	"fmt"
	"time"
)

// RecordEngagement appends one engagement event. The event log is
// append-only; status changes implied by an action are applied separately
// through TransitionRecommendation.
func (s *SQLiteStore) RecordEngagement(ctx context.Context, e *EngagementEvent) error {
	if e.RecommendationID == "" {
		return fmt.Errorf("engagement event requires recommendation_id")
	}
	switch e.Action {
	case EngagementImplemented, EngagementDismissed, EngagementRated:
	default:
		return fmt.Errorf("unknown engagement action %q", e.Action)
	}
	if e.Action == EngagementRated && (e.Rating < 1 || e.Rating > 5) {
		return fmt.Errorf("rating must be 1-5, got %d", e.Rating)
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO engagement_events (recommendation_id, user_id, action, rating, seconds_on_item, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.RecommendationID, e.UserID, e.Action, e.Rating, e.SecondsOnItem, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording engagement: %w", err)
	}
	e.ID, _ = res.LastInsertId()
	return nil
}

// ListEngagement returns a user's engagement events, newest first.
func (s *SQLiteStore) ListEngagement(ctx context.Context, userID string, limit int) ([]*EngagementEvent, error) {
	query := `SELECT id, recommendation_id, user_id, action, rating, seconds_on_item, created_at
	          FROM engagement_events WHERE user_id = ?
	          ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing engagement: %w", err)
	}
	defer rows.Close()

	var out []*EngagementEvent
	for rows.Next() {
		var e EngagementEvent
		if err := rows.Scan(&e.ID, &e.RecommendationID, &e.UserID, &e.Action,
			&e.Rating, &e.SecondsOnItem, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning engagement event: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// EngagementByType aggregates engagement per recommendation type. This is
// the raw input for future scoring-weight tuning; the tuning itself lives
// outside the engine.
func (s *SQLiteStore) EngagementByType(ctx context.Context, userID string) ([]TypeEngagement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.rec_type,
		       SUM(CASE WHEN e.action = 'implemented' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN e.action = 'dismissed' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN e.action = 'rated' THEN 1 ELSE 0 END),
		       COALESCE(AVG(CASE WHEN e.action = 'rated' THEN e.rating END), 0),
		       COALESCE(AVG(CASE WHEN e.seconds_on_item > 0 THEN e.seconds_on_item END), 0)
		FROM engagement_events e
		JOIN recommendations r ON r.id = e.recommendation_id
		WHERE e.user_id = ?
		GROUP BY r.rec_type
		ORDER BY r.rec_type`, userID)
	if err != nil {
		return nil, fmt.Errorf("aggregating engagement: %w", err)
	}
	defer rows.Close()

	var out []TypeEngagement
	for rows.Next() {
		var te TypeEngagement
		if err := rows.Scan(&te.RecType, &te.Implemented, &te.Dismissed, &te.Rated,
			&te.AvgRating, &te.AvgSeconds); err != nil {
			return nil, fmt.Errorf("scanning engagement summary: %w", err)
		}
		out = append(out, te)
	}
	return out, rows.Err()
}

package store

import (
	"context"
	"fmt"
)

// Stats computes observability counts for one user. Pass an empty userID
// for store-wide totals.
func (s *SQLiteStore) Stats(ctx context.Context, userID string) (*Stats, error) {
	stats := &Stats{OpportunitiesByStatus: map[string]int64{}}

	oppQuery := `SELECT status, COUNT(*) FROM opportunities`
	recQuery := `SELECT status, COUNT(*) FROM recommendations`
	evtQuery := `SELECT COUNT(*) FROM engagement_events`
	var args []any
	if userID != "" {
		oppQuery += ` WHERE user_id = ?`
		recQuery += ` WHERE user_id = ?`
		evtQuery += ` WHERE user_id = ?`
		args = append(args, userID)
	}

	rows, err := s.db.QueryContext(ctx, oppQuery+` GROUP BY status`, args...)
	if err != nil {
		return nil, fmt.Errorf("counting opportunities: %w", err)
	}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning opportunity counts: %w", err)
		}
		stats.OpportunitiesByStatus[status] = n
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	converted := stats.OpportunitiesByStatus[OpportunityConverted]
	dismissed := stats.OpportunitiesByStatus[OpportunityDismissed]
	if converted+dismissed > 0 {
		stats.ConversionRate = float64(converted) / float64(converted+dismissed)
	}

	recRows, err := s.db.QueryContext(ctx, recQuery+` GROUP BY status`, args...)
	if err != nil {
		return nil, fmt.Errorf("counting recommendations: %w", err)
	}
	for recRows.Next() {
		var status string
		var n int64
		if err := recRows.Scan(&status, &n); err != nil {
			recRows.Close()
			return nil, fmt.Errorf("scanning recommendation counts: %w", err)
		}
		switch status {
		case RecommendationActive:
			stats.ActiveRecommendations = n
		case RecommendationExpired:
			stats.ExpiredTotal = n
		}
	}
	if err := recRows.Close(); err != nil {
		return nil, err
	}

	if err := s.db.QueryRowContext(ctx, evtQuery, args...).Scan(&stats.EngagementEvents); err != nil {
		return nil, fmt.Errorf("counting engagement events: %w", err)
	}

	return stats, nil
}

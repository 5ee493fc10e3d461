package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReplaceActive inserts a recommendation, first expiring any currently
// active row with the same (user_id, rec_type, title). Both steps run in
// one transaction so two concurrent passes cannot leave duplicate active
// rows; the partial unique index backstops the invariant at the schema
// level. Returns the number of rows superseded (0 or 1).
func (s *SQLiteStore) ReplaceActive(ctx context.Context, rec *ActiveRecommendation) (int, error) {
	if rec.UserID == "" || rec.RecType == "" || rec.Title == "" {
		return 0, fmt.Errorf("recommendation requires user_id, rec_type, and title")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = RecommendationActive
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.ExpiresAt.IsZero() {
		rec.ExpiresAt = rec.CreatedAt.AddDate(0, 0, 30)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning replace: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE recommendations SET status = ?
		 WHERE user_id = ? AND rec_type = ? AND title = ? AND status = ?`,
		RecommendationExpired, rec.UserID, rec.RecType, rec.Title, RecommendationActive)
	if err != nil {
		return 0, fmt.Errorf("superseding active recommendation: %w", err)
	}
	superseded, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recommendations (id, user_id, rec_type, title, description,
		                              base_priority, complexity, score, status, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.RecType, rec.Title, rec.Description,
		rec.BasePriority, rec.Complexity, rec.Score, rec.Status, rec.CreatedAt, rec.ExpiresAt,
	); err != nil {
		return 0, fmt.Errorf("inserting recommendation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing replace: %w", err)
	}
	return int(superseded), nil
}

// GetRecommendation fetches one recommendation by ID.
func (s *SQLiteStore) GetRecommendation(ctx context.Context, id string) (*ActiveRecommendation, error) {
	row := s.db.QueryRowContext(ctx, selectRecommendation+` WHERE id = ?`, id)
	rec, err := scanRecommendation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("recommendation %s not found", id)
		}
		return nil, fmt.Errorf("getting recommendation: %w", err)
	}
	return rec, nil
}

// ListActive returns a user's active set, highest score first. Ordering is
// fully deterministic: ties fall back to creation time, then ID.
func (s *SQLiteStore) ListActive(ctx context.Context, userID string) ([]*ActiveRecommendation, error) {
	rows, err := s.db.QueryContext(ctx,
		selectRecommendation+` WHERE user_id = ? AND status = ?
		 ORDER BY score DESC, created_at, id`,
		userID, RecommendationActive)
	if err != nil {
		return nil, fmt.Errorf("listing active recommendations: %w", err)
	}
	defer rows.Close()

	var out []*ActiveRecommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recommendation: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// TransitionRecommendation applies a lifecycle transition. Only active
// rows can move; all targets are terminal. Invalid requests fail with
// ErrInvalidTransition and leave the row unchanged.
func (s *SQLiteStore) TransitionRecommendation(ctx context.Context, id, to string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transition: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM recommendations WHERE id = ?`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("recommendation %s not found", id)
		}
		return fmt.Errorf("reading recommendation status: %w", err)
	}

	if err := ValidateRecommendationTransition(current, to); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE recommendations SET status = ? WHERE id = ?`, to, id); err != nil {
		return fmt.Errorf("updating recommendation status: %w", err)
	}

	return tx.Commit()
}

// LatestByKey returns the most recent recommendation for a
// (user, type, title) key regardless of status, or nil when none exists.
// The scoring pass uses this for the dismissed-cooldown check.
func (s *SQLiteStore) LatestByKey(ctx context.Context, userID, recType, title string) (*ActiveRecommendation, error) {
	row := s.db.QueryRowContext(ctx,
		selectRecommendation+` WHERE user_id = ? AND rec_type = ? AND title = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID, recType, title)
	rec, err := scanRecommendation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting latest recommendation by key: %w", err)
	}
	return rec, nil
}

const selectRecommendation = `SELECT id, user_id, rec_type, title, description,
       base_priority, complexity, score, status, created_at, expires_at
  FROM recommendations`

func scanRecommendation(r rowScanner) (*ActiveRecommendation, error) {
	var rec ActiveRecommendation
	if err := r.Scan(&rec.ID, &rec.UserID, &rec.RecType, &rec.Title, &rec.Description,
		&rec.BasePriority, &rec.Complexity, &rec.Score, &rec.Status,
		&rec.CreatedAt, &rec.ExpiresAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

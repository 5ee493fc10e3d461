package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateOpportunity inserts a new opportunity. An empty ID is assigned a
// UUID; an empty status defaults to pending.
func (s *SQLiteStore) CreateOpportunity(ctx context.Context, o *Opportunity) error {
	if o.UserID == "" {
		return fmt.Errorf("opportunity user_id cannot be empty")
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = OpportunityPending
	}

	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.LastActionAt.IsZero() {
		o.LastActionAt = o.CreatedAt
	}

	var estimated sql.NullFloat64
	if o.EstimatedValue != nil {
		estimated = sql.NullFloat64{Float64: *o.EstimatedValue, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO opportunities (id, user_id, transcript, intent, urgency, topic,
		                            estimated_value, priority, status, created_at, last_action_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.Transcript, o.Intent, o.Urgency, o.Topic,
		estimated, o.Priority, o.Status, o.CreatedAt, o.LastActionAt,
	)
	if err != nil {
		return fmt.Errorf("creating opportunity: %w", err)
	}
	return nil
}

// GetOpportunity fetches one opportunity by ID.
func (s *SQLiteStore) GetOpportunity(ctx context.Context, id string) (*Opportunity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, transcript, intent, urgency, topic,
		        estimated_value, priority, status, created_at, last_action_at
		 FROM opportunities WHERE id = ?`, id)

	o, err := scanOpportunity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("opportunity %s not found", id)
		}
		return nil, fmt.Errorf("getting opportunity: %w", err)
	}
	return o, nil
}

// ListOpportunities returns a user's opportunities, newest first.
func (s *SQLiteStore) ListOpportunities(ctx context.Context, userID string, opts ListOpts) ([]*Opportunity, error) {
	query := `SELECT id, user_id, transcript, intent, urgency, topic,
	                 estimated_value, priority, status, created_at, last_action_at
	          FROM opportunities WHERE user_id = ?`
	args := []any{userID}

	if opts.Status != "" {
		query += " AND status = ?"
		args = append(args, opts.Status)
	}
	query += " ORDER BY created_at DESC, id"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing opportunities: %w", err)
	}
	defer rows.Close()

	var out []*Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning opportunity: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// TransitionOpportunity applies a lifecycle transition. Requests outside
// the state graph fail with ErrInvalidTransition and leave the row
// unchanged. The check and update run in one transaction so concurrent
// transitions cannot skip a state.
func (s *SQLiteStore) TransitionOpportunity(ctx context.Context, id, to string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transition: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM opportunities WHERE id = ?`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("opportunity %s not found", id)
		}
		return fmt.Errorf("reading opportunity status: %w", err)
	}

	if err := ValidateOpportunityTransition(current, to); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE opportunities SET status = ?, last_action_at = ? WHERE id = ?`,
		to, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("updating opportunity status: %w", err)
	}

	return tx.Commit()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOpportunity(r rowScanner) (*Opportunity, error) {
	var o Opportunity
	var estimated sql.NullFloat64
	if err := r.Scan(&o.ID, &o.UserID, &o.Transcript, &o.Intent, &o.Urgency, &o.Topic,
		&estimated, &o.Priority, &o.Status, &o.CreatedAt, &o.LastActionAt); err != nil {
		return nil, err
	}
	if estimated.Valid {
		o.EstimatedValue = &estimated.Float64
	}
	return &o, nil
}

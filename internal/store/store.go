// Package store provides the SQLite persistence layer for Pulse.
//
// All engine output lives in a single SQLite database file:
// - Opportunities derived from inbound call signals
// - The active recommendation set per user
// - Engagement events recorded against recommendations
//
// The scoring core never touches this package directly except through the
// Store interface; it stays pure and synchronous while the store owns every
// read and write.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.pulse/pulse.db"

// Opportunity lifecycle states. Converted and Dismissed are terminal.
const (
	OpportunityPending   = "pending"
	OpportunityContacted = "contacted"
	OpportunityConverted = "converted"
	OpportunityDismissed = "dismissed"
)

// ActiveRecommendation lifecycle states. Everything but Active is terminal.
const (
	RecommendationActive      = "active"
	RecommendationImplemented = "implemented"
	RecommendationDismissed   = "dismissed"
	RecommendationExpired     = "expired"
)

// Engagement actions recorded against a recommendation.
const (
	EngagementImplemented = "implemented"
	EngagementDismissed   = "dismissed"
	EngagementRated       = "rated"
)

// Opportunity is a persisted, lifecycle-tracked potential revenue event
// derived from one classified call. The source signal is snapshotted into
// the row so the opportunity survives the ephemeral Signal.
type Opportunity struct {
	ID             string
	UserID         string
	Transcript     string
	Intent         string
	Urgency        string
	Topic          string
	EstimatedValue *float64 // nil when the business had no price range
	Priority       string   // "high", "medium", "low"
	Status         string
	CreatedAt      time.Time
	LastActionAt   time.Time
}

// ActiveRecommendation is a persisted recommendation shown in the user's
// feed. At most one active row may exist per (user_id, rec_type, title);
// regeneration supersedes the old row instead of duplicating it.
type ActiveRecommendation struct {
	ID           string
	UserID       string
	RecType      string
	Title        string
	Description  string
	BasePriority string
	Complexity   string
	Score        int
	Status       string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// EngagementEvent records one user reaction to a recommendation. Rating is
// 0 when the action carries no rating; SecondsOnItem is 0 when unknown.
type EngagementEvent struct {
	ID               int64
	RecommendationID string
	UserID           string
	Action           string
	Rating           int
	SecondsOnItem    int
	CreatedAt        time.Time
}

// TypeEngagement summarizes recorded engagement for one recommendation
// type, as raw material for future scoring-weight tuning.
type TypeEngagement struct {
	RecType     string
	Implemented int
	Dismissed   int
	Rated       int
	AvgRating   float64
	AvgSeconds  float64
}

// Stats holds observability counts over the store.
type Stats struct {
	OpportunitiesByStatus map[string]int64
	ActiveRecommendations int64
	ExpiredTotal          int64
	EngagementEvents      int64
	ConversionRate        float64 // converted / (converted + dismissed) opportunities
}

// ListOpts controls filtering for list operations.
type ListOpts struct {
	Status string // filter by status, empty = all
	Limit  int    // 0 = no limit
}

// StoreConfig holds configuration for NewStore.
type StoreConfig struct {
	DBPath string
}

// Store defines the persistence interface the engine writes through.
type Store interface {
	// Opportunities
	CreateOpportunity(ctx context.Context, o *Opportunity) error
	GetOpportunity(ctx context.Context, id string) (*Opportunity, error)
	ListOpportunities(ctx context.Context, userID string, opts ListOpts) ([]*Opportunity, error)
	TransitionOpportunity(ctx context.Context, id, to string) error

	// Recommendations
	ReplaceActive(ctx context.Context, rec *ActiveRecommendation) (superseded int, err error)
	GetRecommendation(ctx context.Context, id string) (*ActiveRecommendation, error)
	ListActive(ctx context.Context, userID string) ([]*ActiveRecommendation, error)
	TransitionRecommendation(ctx context.Context, id, to string) error
	LatestByKey(ctx context.Context, userID, recType, title string) (*ActiveRecommendation, error)

	// Engagement
	RecordEngagement(ctx context.Context, e *EngagementEvent) error
	ListEngagement(ctx context.Context, userID string, limit int) ([]*EngagementEvent, error)
	EngagementByType(ctx context.Context, userID string) ([]TypeEngagement, error)

	// Observability
	Stats(ctx context.Context, userID string) (*Stats, error)

	Close() error
}

// SQLiteStore implements Store using a single SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new SQLite-backed Store.
// Pass ":memory:" for in-memory databases (testing).
func NewStore(cfg StoreConfig) (Store, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = ExpandPath(DefaultDBPath)
	}

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, dbPath: cfg.DBPath}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// GetDB exposes the underlying connection for the lifecycle runner, which
// needs ad hoc scan queries the Store interface doesn't cover.
func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ExpandPath expands ~ to the home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

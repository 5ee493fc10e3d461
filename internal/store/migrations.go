package store

import "fmt"

// migrate creates all tables if they don't exist and seeds metadata.
func (s *SQLiteStore) migrate() error {
	bootstrapDone, err := s.isMetaFlagEnabled("schema_bootstrap_complete")
	if err != nil {
		return fmt.Errorf("checking bootstrap state: %w", err)
	}

	if !bootstrapDone {
		if err := s.runBootstrapDDL(); err != nil {
			return err
		}
		if err := s.setMetaFlag("schema_bootstrap_complete"); err != nil {
			return fmt.Errorf("marking bootstrap complete: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) runBootstrapDDL() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Opportunities with the source-signal snapshot inlined.
		`CREATE TABLE IF NOT EXISTS opportunities (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL,
			transcript      TEXT NOT NULL DEFAULT '',
			intent          TEXT NOT NULL,
			urgency         TEXT NOT NULL,
			topic           TEXT NOT NULL DEFAULT '',
			estimated_value REAL,
			priority        TEXT NOT NULL,
			status          TEXT NOT NULL DEFAULT 'pending',
			created_at      TIMESTAMP NOT NULL,
			last_action_at  TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_user_status
			ON opportunities(user_id, status)`,

		// The recommendation feed. The partial unique index is the
		// supersede invariant: one active row per (user, type, title).
		`CREATE TABLE IF NOT EXISTS recommendations (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL,
			rec_type      TEXT NOT NULL,
			title         TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			base_priority TEXT NOT NULL,
			complexity    TEXT NOT NULL,
			score         INTEGER NOT NULL DEFAULT 0,
			status        TEXT NOT NULL DEFAULT 'active',
			created_at    TIMESTAMP NOT NULL,
			expires_at    TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_recommendations_one_active
			ON recommendations(user_id, rec_type, title) WHERE status = 'active'`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_user_status
			ON recommendations(user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_expiry
			ON recommendations(expires_at) WHERE status = 'active'`,

		`CREATE TABLE IF NOT EXISTS engagement_events (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			recommendation_id TEXT NOT NULL,
			user_id           TEXT NOT NULL,
			action            TEXT NOT NULL,
			rating            INTEGER NOT NULL DEFAULT 0,
			seconds_on_item   INTEGER NOT NULL DEFAULT 0,
			created_at        TIMESTAMP NOT NULL,
			FOREIGN KEY (recommendation_id) REFERENCES recommendations(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_engagement_user
			ON engagement_events(user_id, created_at)`,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning bootstrap transaction: %w", err)
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("bootstrap DDL: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bootstrap: %w", err)
	}
	return nil
}

func (s *SQLiteStore) isMetaFlagEnabled(key string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type='table' AND name='meta')`,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	var value string
	err = s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return false, nil // missing row means not set
	}
	return value == "1", nil
}

func (s *SQLiteStore) setMetaFlag(key string) error {
	_, err := s.db.Exec(
		`INSERT INTO meta (key, value) VALUES (?, '1')
		 ON CONFLICT(key) DO UPDATE SET value='1'`, key)
	return err
}

// Package store archives report runs, AI feedback events and model
// conversations in SQLite.
//
// The database is optional. When no path is configured the server runs
// without persistence and the archive endpoints answer 503.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/esglens/esglens/internal/logging"
)

type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors.
const (
	ErrNotFound              constError = "record not found"
	ErrInvalidEventType      constError = "invalid event type"
	ErrInvalidConversationID constError = "invalid conversation id"
	ErrInvalidRole           constError = "invalid message role"
	ErrEmptyMessage          constError = "message content is required"
	ErrInvalidRating         constError = "rating must be between 1 and 5"
)

// List limits.
const (
	DefaultListLimit = 20
	MaxListLimit     = 200
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                    TEXT PRIMARY KEY,
	user                  TEXT NOT NULL,
	summary               TEXT NOT NULL,
	metrics               TEXT NOT NULL,
	environmental_metrics TEXT NOT NULL,
	social_metrics        TEXT NOT NULL,
	governance_metrics    TEXT NOT NULL,
	insights              TEXT NOT NULL,
	created_at            INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);

CREATE TABLE IF NOT EXISTS conversations (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	feature       TEXT NOT NULL,
	messages      TEXT NOT NULL,
	model         TEXT NOT NULL,
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens  INTEGER NOT NULL DEFAULT 0,
	latency_ms    INTEGER NOT NULL DEFAULT 0,
	rating        INTEGER,
	tags          TEXT NOT NULL DEFAULT '[]',
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id);
CREATE INDEX IF NOT EXISTS idx_conversations_feature ON conversations(feature);

CREATE TABLE IF NOT EXISTS ai_events (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	conversation_id TEXT,
	feature         TEXT NOT NULL,
	type            TEXT NOT NULL,
	meta            TEXT NOT NULL DEFAULT '{}',
	created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ai_events_user ON ai_events(user_id);
CREATE INDEX IF NOT EXISTS idx_ai_events_feature ON ai_events(feature);
`

// Store is a SQLite-backed archive. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	path   string
	now    func() time.Time
	logger zerolog.Logger
}

// Open creates or opens the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{
		db:     db,
		path:   path,
		now:    time.Now,
		logger: logging.ComponentLogger(log.Logger, "store"),
	}
	s.logger.Debug().Str("operation", "open").Str("path", path).Msg("database ready")
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func marshalColumn(name string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", name, err)
	}
	return string(data), nil
}

func unmarshalColumn(name, data string, v any) error {
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

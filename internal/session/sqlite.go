// ABOUTME: SQLite-backed session registry using modernc.org/sqlite
// ABOUTME: Durable across restarts, one row per chat user, upsert per turn

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRegistry implements Registry on a SQLite database so that session
// continuity survives process restarts.
type SQLiteRegistry struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteRegistry opens (or creates) the registry database at the given
// path. Parent directories are created if needed and the schema is applied
// automatically.
func NewSQLiteRegistry(path string) (*SQLiteRegistry, error) {
	logger := slog.Default().With("component", "session")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode for better concurrent read/write behavior
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			user_id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite session registry initialized", "path", path)
	return &SQLiteRegistry{db: db, logger: logger}, nil
}

// Get returns the conversation id recorded for the user, or ErrNotFound.
func (r *SQLiteRegistry) Get(ctx context.Context, userID string) (string, error) {
	var conversationID string
	err := r.db.QueryRowContext(ctx,
		"SELECT conversation_id FROM sessions WHERE user_id = ?", userID,
	).Scan(&conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying session: %w", err)
	}
	return conversationID, nil
}

// Put records the user's conversation id, replacing any existing one.
func (r *SQLiteRegistry) Put(ctx context.Context, userID, conversationID string) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, conversation_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			conversation_id = excluded.conversation_id,
			updated_at = excluded.updated_at
	`, userID, conversationID, now, now)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}

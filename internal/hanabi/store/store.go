// Package store persists Hanabi's durable state in SQLite: session
// transcripts, memory summaries, and the Matrix sync token.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the database connection.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies pending
// migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows only one writer at a time. Keep a single shared connection so
	// concurrent callers are serialized by database/sql instead of fighting
	// for write locks across multiple underlying connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{db: db}
	if err := store.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// TranscriptTurn is one persisted exchange of a session.
type TranscriptTurn struct {
	SessionID string
	Room      string
	Sender    string
	User      string
	Assistant string
	CreatedAt time.Time
}

// SaveTurn appends one exchange to the transcript.
func (s *Store) SaveTurn(ctx context.Context, t TranscriptTurn) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcript_turns (session_id, room, sender, user_text, assistant_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.SessionID, t.Room, t.Sender, t.User, t.Assistant, t.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save transcript turn: %w", err)
	}
	return nil
}

// Transcript returns all turns of a session, oldest first.
func (s *Store) Transcript(ctx context.Context, sessionID string) ([]TranscriptTurn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, room, sender, user_text, assistant_text, created_at
		FROM transcript_turns
		WHERE session_id = ?
		ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcript: %w", err)
	}
	defer rows.Close()

	var turns []TranscriptTurn
	for rows.Next() {
		var t TranscriptTurn
		if err := rows.Scan(&t.SessionID, &t.Room, &t.Sender, &t.User, &t.Assistant, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcript turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcript: %w", err)
	}
	return turns, nil
}

// SaveSummary upserts the rolling memory summary of a session.
func (s *Store) SaveSummary(ctx context.Context, sessionID, summary string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_summaries (session_id, summary, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET summary = excluded.summary, updated_at = excluded.updated_at`,
		sessionID, summary, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session summary: %w", err)
	}
	return nil
}

// Summary returns the stored summary for a session. A session with no stored
// summary returns ("", nil).
func (s *Store) Summary(ctx context.Context, sessionID string) (string, error) {
	var summary string
	err := s.db.QueryRowContext(ctx,
		"SELECT summary FROM session_summaries WHERE session_id = ?", sessionID,
	).Scan(&summary)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query session summary: %w", err)
	}
	return summary, nil
}

// DeleteSession removes a session's transcript and summary, used when a user
// resets their conversation.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM transcript_turns WHERE session_id = ?", sessionID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM session_summaries WHERE session_id = ?", sessionID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete summary: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// SetSyncToken stores the Matrix next-batch token under the given account
// key, so a restart resumes syncing where it left off.
func (s *Store) SetSyncToken(ctx context.Context, account, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_tokens (account, token, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		account, token, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save sync token: %w", err)
	}
	return nil
}

// SyncToken returns the stored Matrix sync token, or "" when none exists.
func (s *Store) SyncToken(ctx context.Context, account string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		"SELECT token FROM sync_tokens WHERE account = ?", account,
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query sync token: %w", err)
	}
	return token, nil
}

// runMigrations applies all pending migrations in version order.
func (s *Store) runMigrations() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			description TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	err = s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	seenVersions := make(map[int]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		parts := strings.SplitN(entry.Name(), "_", 2)
		if len(parts) < 2 {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(parts[0], "%d", &version); err != nil {
			continue
		}
		if prev, exists := seenVersions[version]; exists {
			return fmt.Errorf("duplicate migration version %04d: %q and %q", version, prev, entry.Name())
		}
		seenVersions[version] = entry.Name()
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		parts := strings.SplitN(entry.Name(), "_", 2)
		if len(parts) < 2 {
			continue
		}
		if _, err := fmt.Sscanf(parts[0], "%d", &version); err != nil {
			continue
		}
		description := strings.TrimSuffix(parts[1], ".sql")

		if version <= currentVersion {
			continue
		}

		content, err := migrationsFS.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", version, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, applied_at, description) VALUES (?, ?, ?)",
			version, time.Now(), description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", version, err)
		}

		slog.Info("applied migration", "version", fmt.Sprintf("%04d", version), "description", description)
	}

	return nil
}

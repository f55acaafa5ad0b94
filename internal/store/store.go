// Package store persists users, log entries and profile documents in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// User is an account row. The profile document is stored alongside as an
// opaque JSON blob, wholly replaced on each aggregation run.
type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// LogEntry is one user utterance. Emotions and topics are open-vocabulary
// labels detected by the ingestion pipeline; IsAnalyzed gates inclusion in
// profile aggregation. Entries are immutable here except for that flag.
type LogEntry struct {
	ID         int64
	UserID     string
	Content    string
	Intent     string
	Emotions   []string
	Topics     []string
	IsAnalyzed bool
	CreatedAt  time.Time
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and initializes the schema.
// Pass ":memory:" for tests.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	usersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		display_name TEXT,
		profile_json TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	entriesTable := `
	CREATE TABLE IF NOT EXISTS log_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		intent TEXT NOT NULL DEFAULT 'chat',
		emotions_json TEXT NOT NULL DEFAULT '[]',
		topics_json TEXT NOT NULL DEFAULT '[]',
		is_analyzed INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_entries_user_created ON log_entries(user_id, created_at);
	`

	for _, table := range []string{usersTable, entriesTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser inserts a user row.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.DisplayName, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser loads a user by ID. Returns ErrNotFound when absent.
func (s *Store) GetUser(ctx context.Context, userID string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, created_at FROM users WHERE id = ?`, userID)

	var u User
	var displayName sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &displayName, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	u.DisplayName = displayName.String
	return &u, nil
}

// ListUserIDs returns every user ID, for batch profile rebuilds.
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertEntry stores a log entry and returns its ID.
func (s *Store) InsertEntry(ctx context.Context, e LogEntry) (int64, error) {
	emotions, err := json.Marshal(emptyIfNil(e.Emotions))
	if err != nil {
		return 0, fmt.Errorf("failed to marshal emotions: %w", err)
	}
	topics, err := json.Marshal(emptyIfNil(e.Topics))
	if err != nil {
		return 0, fmt.Errorf("failed to marshal topics: %w", err)
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO log_entries (user_id, content, intent, emotions_json, topics_json, is_analyzed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Content, e.Intent, string(emotions), string(topics), boolToInt(e.IsAnalyzed), createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}
	return res.LastInsertId()
}

// MarkAnalyzed flags an entry as ready for aggregation.
func (s *Store) MarkAnalyzed(ctx context.Context, entryID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE log_entries SET is_analyzed = 1 WHERE id = ?`, entryID)
	if err != nil {
		return fmt.Errorf("failed to mark analyzed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecentEntries returns analyzed entries for a user created at or after
// since, newest first, capped at limit.
func (s *Store) RecentEntries(ctx context.Context, userID string, since time.Time, limit int) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, content, intent, emotions_json, topics_json, is_analyzed, created_at
		 FROM log_entries
		 WHERE user_id = ? AND created_at >= ? AND is_analyzed = 1
		 ORDER BY created_at DESC
		 LIMIT ?`,
		userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		var emotionsJSON, topicsJSON string
		var analyzed int
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &e.Intent,
			&emotionsJSON, &topicsJSON, &analyzed, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.IsAnalyzed = analyzed != 0
		if err := json.Unmarshal([]byte(emotionsJSON), &e.Emotions); err != nil {
			return nil, fmt.Errorf("failed to decode emotions: %w", err)
		}
		if err := json.Unmarshal([]byte(topicsJSON), &e.Topics); err != nil {
			return nil, fmt.Errorf("failed to decode topics: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveProfile overwrites the user's profile document wholesale.
// Returns ErrNotFound when the user row does not exist.
func (s *Store) SaveProfile(ctx context.Context, userID string, profileJSON []byte) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET profile_json = ? WHERE id = ?`, string(profileJSON), userID)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadProfile returns the user's stored profile document, or ErrNotFound
// when the user is absent or has no profile yet.
func (s *Store) LoadProfile(ctx context.Context, userID string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT profile_json FROM users WHERE id = ?`, userID)

	var profile sql.NullString
	if err := row.Scan(&profile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !profile.Valid || profile.String == "" {
		return nil, ErrNotFound
	}
	return []byte(profile.String), nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package history provides the durable conversation log.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Turn roles. Tool-result turns carry the formatted outcome of a tool
// dispatch so later requests have it as context.
const (
	RoleUser  = "user"
	RoleModel = "model"
	RoleTool  = "tool"
)

// Turn is one message in the conversation. Turns are append-only.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the persistence contract for conversation turns.
type Store interface {
	// Append records one turn at the end of the log.
	Append(ctx context.Context, t Turn) error
	// Recent returns up to n of the most recent turns, oldest first.
	Recent(ctx context.Context, n int) ([]Turn, error)
	// Clear removes all turns. Clearing an empty log is not an error.
	Clear(ctx context.Context) error
}

const schema = `
CREATE TABLE IF NOT EXISTS conversation_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_history_created ON conversation_history(created_at DESC);
`

// SQLiteStore persists turns in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (and if needed initializes) the history store at dbPath.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append records one turn at the end of the log.
func (s *SQLiteStore) Append(ctx context.Context, t Turn) error {
	ts := t.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_history (role, content, created_at) VALUES (?, ?, ?)`,
		t.Role, t.Content, ts,
	)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// Recent returns up to n of the most recent turns, oldest first.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]Turn, error) {
	if n <= 0 {
		return nil, nil
	}
	// Newest first, reversed below. Insertion id breaks created_at ties.
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM conversation_history ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Content, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Clear removes all turns.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversation_history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

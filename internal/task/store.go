// Package task provides the durable task store.
package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrTaskNotFound is returned when a task id does not exist.
var ErrTaskNotFound = errors.New("task not found")

// Task is a single tracked to-do item. IDs are assigned by the database
// and never reused. CompletedAt is non-nil iff Completed is true.
type Task struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Stats summarizes the task list.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed);
`

// Store persists tasks in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the task store at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open task db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply task schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new task and returns it with its assigned id.
func (s *Store) Create(ctx context.Context, name string) (*Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("task name is empty")
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (name, completed, created_at) VALUES (?, 0, ?)`,
		name, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("task id: %w", err)
	}

	return &Task{
		ID:        id,
		Name:      name,
		CreatedAt: now,
	}, nil
}

// List returns all tasks in creation order.
func (s *Store) List(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, completed, created_at, completed_at FROM tasks ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Get returns a single task by id.
func (s *Store) Get(ctx context.Context, id int64) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, completed, created_at, completed_at FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	return t, err
}

// Complete marks a task as done and stamps completed_at. Completing an
// already-completed task keeps the original completion time.
func (s *Store) Complete(ctx context.Context, id int64) (*Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET completed = 1, completed_at = COALESCE(completed_at, ?) WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}
	if affected == 0 {
		return nil, ErrTaskNotFound
	}
	return s.Get(ctx, id)
}

// Toggle flips a task's completion state, keeping completed_at in sync.
func (s *Store) Toggle(ctx context.Context, id int64) (*Task, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Completed {
		_, err = s.db.ExecContext(ctx,
			`UPDATE tasks SET completed = 0, completed_at = NULL WHERE id = ?`, id)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE tasks SET completed = 1, completed_at = ? WHERE id = ?`, time.Now().UTC(), id)
	}
	if err != nil {
		return nil, fmt.Errorf("toggle task: %w", err)
	}
	return s.Get(ctx, id)
}

// Reopen marks a completed task as pending again.
func (s *Store) Reopen(ctx context.Context, id int64) (*Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET completed = 0, completed_at = NULL WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("reopen task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("reopen task: %w", err)
	}
	if affected == 0 {
		return nil, ErrTaskNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a task permanently.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ClearCompleted removes all completed tasks and returns how many were removed.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE completed = 1`)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns task counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(completed), 0) FROM tasks`)
	if err := row.Scan(&st.Total, &st.Completed); err != nil {
		return Stats{}, fmt.Errorf("task stats: %w", err)
	}
	st.Pending = st.Total - st.Completed
	return st, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	var completed int
	var completedAt sql.NullTime
	if err := row.Scan(&t.ID, &t.Name, &completed, &t.CreatedAt, &completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.Completed = completed != 0
	if completedAt.Valid {
		ts := completedAt.Time
		t.CompletedAt = &ts
	}
	return &t, nil
}

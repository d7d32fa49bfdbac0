// Package agent implements the conversation orchestration loop: it routes
// each user turn to the model, executes any requested tool, and maintains
// the bounded conversation window.
package agent

import (
	"context"
	"sync"

	"github.com/tasktalk/tasktalk/internal/history"
)

// Session holds the in-memory conversation window. The window is bounded:
// once limit turns are held, appending evicts the oldest turn regardless
// of role. Safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	limit int
	turns []history.Turn
}

// NewSession creates an empty session holding at most limit turns.
// A non-positive limit falls back to 10.
func NewSession(limit int) *Session {
	if limit <= 0 {
		limit = 10
	}
	return &Session{
		limit: limit,
		turns: make([]history.Turn, 0, limit),
	}
}

// Rehydrate replaces the window with the most recent turns from the store,
// oldest first. Used at startup so a restarted process keeps its context.
func (s *Session) Rehydrate(ctx context.Context, store history.Store) error {
	turns, err := store.Recent(ctx, s.limit)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns[:0], turns...)
	return nil
}

// Reset drops every turn from the window. Used when the backing history
// is cleared so the next turn starts from an empty context.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = s.turns[:0]
}

// Append adds a turn to the window, evicting the oldest turn if full.
func (s *Session) Append(turn history.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.turns) >= s.limit {
		copy(s.turns, s.turns[1:])
		s.turns = s.turns[:len(s.turns)-1]
	}
	s.turns = append(s.turns, turn)
}

// Window returns a copy of the current window, oldest first.
func (s *Session) Window() []history.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]history.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns currently held.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Package web exposes the assistant and the task store over a small JSON
// HTTP API. One conversation session is shared across the whole server.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tasktalk/tasktalk/internal/agent"
	"github.com/tasktalk/tasktalk/internal/gateway"
	"github.com/tasktalk/tasktalk/internal/history"
	"github.com/tasktalk/tasktalk/internal/task"
)

// Server handles the HTTP API. Chat requests share one loop, so concurrent
// chats interleave into the same conversation window.
type Server struct {
	loop    *agent.Loop
	tasks   *task.Store
	history history.Store
	logger  *slog.Logger
	mux     *http.ServeMux
}

func NewServer(loop *agent.Loop, tasks *task.Store, hist history.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		loop:    loop,
		tasks:   tasks,
		history: hist,
		logger:  logger,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	s.mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	s.mux.HandleFunc("POST /api/tasks/{id}/complete", s.handleCompleteTask)
	s.mux.HandleFunc("POST /api/tasks/{id}/toggle", s.handleToggleTask)
	s.mux.HandleFunc("POST /api/tasks/{id}/reopen", s.handleReopenTask)
	s.mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	s.mux.HandleFunc("POST /api/tasks/clear-completed", s.handleClearCompleted)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("POST /api/history/clear", s.handleClearHistory)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// with a short grace period.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	reply, err := s.loop.HandleTurn(r.Context(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrProviderRejected):
			s.writeError(w, http.StatusBadGateway, "the model provider rejected the request")
		case errors.Is(err, gateway.ErrProviderUnavailable):
			s.writeError(w, http.StatusServiceUnavailable, "the model provider is unavailable, try again shortly")
		default:
			s.logger.Error("chat turn failed", "error", err)
			s.writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	s.writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

type taskPayload struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func toTaskPayload(t task.Task) taskPayload {
	return taskPayload{
		ID:          t.ID,
		Name:        t.Name,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	out := make([]taskPayload, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskPayload(t))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tasks": out})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	created, err := s.tasks.Create(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, toTaskPayload(*created))
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	t, err := s.tasks.Complete(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskPayload(*t))
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	t, err := s.tasks.Toggle(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskPayload(*t))
}

func (s *Server) handleReopenTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	t, err := s.tasks.Reopen(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskPayload(*t))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.tasks.Delete(r.Context(), id); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := s.tasks.ClearCompleted(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"removed": n})
}

type historyPayload struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	turns, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.storeError(w, err)
		return
	}
	out := make([]historyPayload, 0, len(turns))
	for _, t := range turns {
		out = append(out, historyPayload{Role: t.Role, Content: t.Content, Timestamp: t.Timestamp})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"turns": out})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(r.Context()); err != nil {
		s.storeError(w, err)
		return
	}
	// The loop's window still holds the cleared turns; drop them so the
	// next chat starts from an empty context.
	s.loop.Session().Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.tasks.Stats(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"total":     stats.Total,
		"completed": stats.Completed,
		"pending":   stats.Pending,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "task id must be a number")
		return 0, false
	}
	return id, true
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, task.ErrTaskNotFound) {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}
	s.logger.Error("store operation failed", "error", err)
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

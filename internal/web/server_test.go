package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/tasktalk/tasktalk/internal/agent"
	"github.com/tasktalk/tasktalk/internal/gateway"
	"github.com/tasktalk/tasktalk/internal/history"
	"github.com/tasktalk/tasktalk/internal/provider"
	"github.com/tasktalk/tasktalk/internal/task"
	"github.com/tasktalk/tasktalk/internal/tools"
)

// staticDecider always answers with fixed text, or an error if set, and
// records every request it sees.
type staticDecider struct {
	reply    string
	err      error
	requests [][]provider.Message
}

func (d *staticDecider) Decide(ctx context.Context, messages []provider.Message, defs []provider.ToolDefinition) (gateway.Decision, error) {
	d.requests = append(d.requests, messages)
	if d.err != nil {
		return gateway.Decision{}, d.err
	}
	return gateway.Decision{Kind: gateway.DecisionText, Text: d.reply}, nil
}

func newTestServer(t *testing.T, decider agent.Decider) (*Server, *task.Store) {
	t.Helper()
	dir := t.TempDir()

	taskStore, err := task.Open(filepath.Join(dir, "tasks.db"))
	if err != nil {
		t.Fatalf("open task store: %v", err)
	}
	t.Cleanup(func() { taskStore.Close() })

	histStore, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() { histStore.Close() })

	reg := tools.NewRegistry()
	tools.RegisterTaskTools(reg, taskStore)

	loop, err := agent.NewLoop(context.Background(), decider, reg, histStore, 10, nil)
	if err != nil {
		t.Fatalf("new loop: %v", err)
	}
	return NewServer(loop, taskStore, histStore, nil), taskStore
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &staticDecider{reply: "ok"})

	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestChatEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &staticDecider{reply: "hello from the model"})

	rec := doJSON(t, srv, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reply != "hello from the model" {
		t.Fatalf("unexpected reply: %q", resp.Reply)
	}
}

func TestChatEndpointBadJSON(t *testing.T) {
	srv, _ := newTestServer(t, &staticDecider{reply: "x"})

	rec := doJSON(t, srv, http.MethodPost, "/api/chat", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatEndpointProviderErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{gateway.ErrProviderUnavailable, http.StatusServiceUnavailable},
		{gateway.ErrProviderRejected, http.StatusBadGateway},
	}
	for _, tc := range cases {
		srv, _ := newTestServer(t, &staticDecider{err: tc.err})
		rec := doJSON(t, srv, http.MethodPost, "/api/chat", `{"message":"hi"}`)
		if rec.Code != tc.code {
			t.Fatalf("error %v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
	}
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t, &staticDecider{reply: "x"})

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", `{"name":"write docs"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/tasks/1/complete", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var listed struct {
		Tasks []struct {
			Name      string `json:"name"`
			Completed bool   `json:"completed"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Tasks) != 1 || !listed.Tasks[0].Completed {
		t.Fatalf("unexpected list: %+v", listed.Tasks)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", rec.Code)
	}
	var stats struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 1 || stats.Completed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/tasks/clear-completed", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear-completed: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/tasks/"+strconv.FormatInt(created.ID, 10), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete cleared task: expected 404, got %d", rec.Code)
	}
}

func TestTaskNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &staticDecider{reply: "x"})

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks/999/complete", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTaskBadID(t *testing.T) {
	srv, _ := newTestServer(t, &staticDecider{reply: "x"})

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks/abc/complete", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &staticDecider{reply: "noted"})

	if rec := doJSON(t, srv, http.MethodPost, "/api/chat", `{"message":"remember this"}`); rec.Code != http.StatusOK {
		t.Fatalf("chat: expected 200, got %d", rec.Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", rec.Code)
	}
	var hist struct {
		Turns []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"turns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.Turns) != 2 {
		t.Fatalf("expected user+model turns, got %+v", hist.Turns)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/history?limit=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: expected 400, got %d", rec.Code)
	}

	if rec := doJSON(t, srv, http.MethodPost, "/api/history/clear", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("clear: expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/history", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode cleared history: %v", err)
	}
	if len(hist.Turns) != 0 {
		t.Fatalf("expected empty history, got %+v", hist.Turns)
	}
}

func TestClearHistoryResetsChatContext(t *testing.T) {
	decider := &staticDecider{reply: "noted"}
	srv, _ := newTestServer(t, decider)

	if rec := doJSON(t, srv, http.MethodPost, "/api/chat", `{"message":"my secret is 42"}`); rec.Code != http.StatusOK {
		t.Fatalf("chat: expected 200, got %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodPost, "/api/history/clear", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("clear: expected 204, got %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodPost, "/api/chat", `{"message":"hello again"}`); rec.Code != http.StatusOK {
		t.Fatalf("chat after clear: expected 200, got %d", rec.Code)
	}

	second := decider.requests[1]
	for _, msg := range second {
		if strings.Contains(msg.Content, "my secret is 42") {
			t.Fatalf("cleared turn still sent to the model: %+v", msg)
		}
	}
	// system prompt + the new user turn only
	if len(second) != 2 {
		t.Fatalf("expected a fresh context, got %d messages: %+v", len(second), second)
	}
}

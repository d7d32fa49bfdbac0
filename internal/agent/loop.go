package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tasktalk/tasktalk/internal/gateway"
	"github.com/tasktalk/tasktalk/internal/history"
	"github.com/tasktalk/tasktalk/internal/provider"
	"github.com/tasktalk/tasktalk/internal/tools"
)

const systemPrompt = `You are TaskTalk, a friendly assistant that manages the user's to-do list.
When the user asks to add, list, or complete tasks, call the matching tool.
For anything else, answer conversationally. Keep replies short and helpful.
After a tool runs, summarize its result for the user in plain language.`

// Decider is the slice of the gateway the loop depends on. Narrowed to an
// interface so tests can script model behavior.
type Decider interface {
	Decide(ctx context.Context, messages []provider.Message, tools []provider.ToolDefinition) (gateway.Decision, error)
}

// Loop orchestrates one conversation: user input in, assistant reply out,
// with at most two model calls and at most one tool execution per turn.
type Loop struct {
	decider  Decider
	registry *tools.Registry
	store    history.Store
	session  *Session
	logger   *slog.Logger
	id       string
}

// NewLoop creates a loop and rehydrates the session window from the store.
func NewLoop(ctx context.Context, decider Decider, registry *tools.Registry, store history.Store, windowSize int, logger *slog.Logger) (*Loop, error) {
	if logger == nil {
		logger = slog.Default()
	}
	session := NewSession(windowSize)
	if err := session.Rehydrate(ctx, store); err != nil {
		return nil, fmt.Errorf("rehydrate session: %w", err)
	}
	id := uuid.NewString()
	return &Loop{
		decider:  decider,
		registry: registry,
		store:    store,
		session:  session,
		logger:   logger.With("session_id", id),
		id:       id,
	}, nil
}

// Session exposes the loop's conversation window.
func (l *Loop) Session() *Session {
	return l.session
}

// HandleTurn processes one user input and returns the assistant's reply.
//
// The turn makes at most two model calls: one to decide between answering
// directly and calling a tool, and, when a tool ran, one more to phrase
// the result. A second tool request in the same turn is refused and
// replaced with a templated confirmation built from the tool output.
//
// Only provider-level failures cross this boundary; tool failures are fed
// back into the conversation as tool results.
func (l *Loop) HandleTurn(ctx context.Context, input string) (string, error) {
	turnID := uuid.NewString()
	log := l.logger.With("turn_id", turnID)

	if err := l.record(ctx, history.RoleUser, input); err != nil {
		return "", err
	}

	messages := l.buildMessages()
	decision, err := l.decider.Decide(ctx, messages, l.registry.Declarations())
	if err != nil {
		log.Error("model call failed", "error", err)
		return "", err
	}

	if decision.Kind == gateway.DecisionText {
		if err := l.record(ctx, history.RoleModel, decision.Text); err != nil {
			return "", err
		}
		return decision.Text, nil
	}

	call := decision.Call
	log.Info("dispatching tool", "tool", call.Name)
	result := l.registry.Dispatch(ctx, call.Name, call.Args)
	if result.Err != nil {
		log.Warn("tool execution failed", "tool", call.Name, "error", result.Err)
	}

	if err := l.record(ctx, history.RoleTool, result.Text()); err != nil {
		return "", err
	}

	// The second call sees the tool exchange in the provider's native
	// shape so function-calling models can ground their phrasing in it.
	followup := append(messages, provider.Message{
		Role: "assistant",
		ToolCalls: []provider.ToolCall{{
			ID:        call.Name,
			Name:      call.Name,
			Arguments: call.Args,
		}},
	}, provider.Message{
		Role:       "tool",
		Content:    result.Text(),
		ToolCallID: call.Name,
	})

	decision, err = l.decider.Decide(ctx, followup, l.registry.Declarations())
	switch {
	case err != nil:
		// The tool already ran, so rather than lose its effect, fall
		// back to a plain confirmation.
		log.Warn("follow-up model call failed, using templated reply", "error", err)
		decision = gateway.Decision{Kind: gateway.DecisionText, Text: templatedReply(result)}
	case decision.Kind == gateway.DecisionToolCall:
		log.Warn("model requested a second tool call in one turn, refusing", "tool", decision.Call.Name)
		decision = gateway.Decision{Kind: gateway.DecisionText, Text: templatedReply(result)}
	}

	if err := l.record(ctx, history.RoleModel, decision.Text); err != nil {
		return "", err
	}
	return decision.Text, nil
}

// record appends a turn to the window and persists it.
func (l *Loop) record(ctx context.Context, role, content string) error {
	turn := history.Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	l.session.Append(turn)
	if err := l.store.Append(ctx, turn); err != nil {
		return fmt.Errorf("persist %s turn: %w", role, err)
	}
	return nil
}

// buildMessages maps the window onto provider messages, prefixed with the
// system prompt.
func (l *Loop) buildMessages() []provider.Message {
	window := l.session.Window()
	messages := make([]provider.Message, 0, len(window)+1)
	messages = append(messages, provider.Message{Role: "system", Content: systemPrompt})
	for _, turn := range window {
		messages = append(messages, replayMessage(turn))
	}
	return messages
}

// replayMessage maps one windowed turn onto a provider message. Persisted
// tool turns carry no call id, and both providers reject a bare tool-role
// message, so on replay they travel as plain user text.
func replayMessage(turn history.Turn) provider.Message {
	switch turn.Role {
	case history.RoleModel:
		return provider.Message{Role: "assistant", Content: turn.Content}
	case history.RoleTool:
		return provider.Message{Role: "user", Content: "Tool result: " + turn.Content}
	default:
		return provider.Message{Role: "user", Content: turn.Content}
	}
}

// templatedReply builds a deterministic confirmation from a tool result,
// used when the model cannot or will not phrase one itself.
func templatedReply(result tools.ToolResult) string {
	text := strings.TrimSpace(result.Text())
	if result.Err != nil {
		return fmt.Sprintf("I tried to run %s but it failed: %s", result.Tool, text)
	}
	if text == "" {
		return fmt.Sprintf("Done. %s finished with no output.", result.Tool)
	}
	return text
}

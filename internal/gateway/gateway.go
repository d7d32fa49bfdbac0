// Package gateway wraps an LLM provider behind a single Decide call that
// yields exactly one outcome per request: a text response or a tool call.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tasktalk/tasktalk/internal/provider"
)

// Sentinel errors classifying provider failures. Unavailable means the
// request may succeed if retried later (network faults, 5xx). Rejected
// means the provider refused the request and a retry will not help
// (auth failures, quota exhaustion, malformed requests).
var (
	ErrProviderUnavailable = errors.New("model provider unavailable")
	ErrProviderRejected    = errors.New("model provider rejected request")
)

// DecisionKind discriminates the two possible outcomes of a Decide call.
type DecisionKind int

const (
	DecisionText DecisionKind = iota
	DecisionToolCall
)

// ToolCallIntent is a request from the model to invoke a named tool.
type ToolCallIntent struct {
	Name string
	Args map[string]any
}

// Decision is the normalized outcome of one model request. Exactly one of
// Text or Call is meaningful, selected by Kind.
type Decision struct {
	Kind DecisionKind
	Text string
	Call *ToolCallIntent
}

// Gateway mediates between the agent loop and an LLM provider.
type Gateway struct {
	prov        provider.LLMProvider
	model       string
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

func New(prov provider.LLMProvider, model string, maxTokens int, temperature float64, logger *slog.Logger) *Gateway {
	if model == "" {
		model = prov.DefaultModel()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		prov:        prov,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Decide sends the conversation to the model and normalizes the reply into
// a single Decision. When the reply carries both text and tool calls, the
// first well-formed tool call wins. A reply with no content at all becomes
// an empty text decision.
func (g *Gateway) Decide(ctx context.Context, messages []provider.Message, tools []provider.ToolDefinition) (Decision, error) {
	resp, err := g.prov.Chat(ctx, &provider.ChatRequest{
		Messages:    messages,
		Tools:       tools,
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return Decision{}, g.classify(err)
	}

	for _, tc := range resp.ToolCalls {
		if tc.Name == "" {
			g.logger.Warn("dropping malformed tool call with empty name")
			continue
		}
		args := tc.Arguments
		if args == nil {
			args = map[string]any{}
		}
		return Decision{
			Kind: DecisionToolCall,
			Call: &ToolCallIntent{Name: tc.Name, Args: args},
		}, nil
	}

	return Decision{
		Kind: DecisionText,
		Text: strings.TrimSpace(resp.Content),
	}, nil
}

// classify maps raw provider errors onto the gateway's sentinel taxonomy.
// HTTP 5xx and transport-level failures are retryable; any other HTTP
// error status, including 429 quota exhaustion, is terminal.
func (g *Gateway) classify(err error) error {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 500 {
			return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}

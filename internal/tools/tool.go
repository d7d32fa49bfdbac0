// Package tools provides the tool framework and the task-management tools
// exposed to the model.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/tasktalk/tasktalk/internal/provider"
)

// Sentinel errors for dispatch failures. Both are absorbed into the
// conversation as tool results rather than aborting a turn.
var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// Tool is the interface that all agent tools must implement.
type Tool interface {
	// Name returns the tool identifier used in function calls.
	Name() string
	// Description returns a human-readable description for the LLM.
	Description() string
	// Parameters returns the JSON Schema for tool parameters.
	Parameters() map[string]any
	// Execute runs the tool with the given arguments.
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// ToolResult is the outcome of one dispatch, whether or not the tool
// succeeded. Err is recorded but never propagated past the registry.
type ToolResult struct {
	Tool    string
	Content string
	Err     error
}

// Text returns the content fed back to the model for this result.
func (r ToolResult) Text() string {
	if r.Err != nil {
		return fmt.Sprintf("Error: %v", r.Err)
	}
	return r.Content
}

// Registry manages tool registration and dispatch.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry. Re-registering a name replaces
// the previous tool but keeps its position.
func (r *Registry) Register(tool Tool) {
	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tools in registration order.
func (r *Registry) List() []Tool {
	result := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

// Declarations returns tool definitions in the provider wire format,
// in registration order so the model sees a stable tool list.
func (r *Registry) Declarations() []provider.ToolDefinition {
	result := make([]provider.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		result = append(result, provider.ToolDefinition{
			Type: "function",
			Function: provider.FunctionDef{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
		})
	}
	return result
}

// Dispatch runs a tool by name and wraps the outcome in a ToolResult.
// The error field is always one of the sentinel errors or a tool's own
// execution error, never a panic.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) ToolResult {
	tool, ok := r.tools[name]
	if !ok {
		return ToolResult{Tool: name, Err: fmt.Errorf("%w: %s", ErrUnknownTool, name)}
	}
	if args == nil {
		args = map[string]any{}
	}
	content, err := tool.Execute(ctx, args)
	return ToolResult{Tool: name, Content: content, Err: err}
}

// RequireString extracts a required string argument.
func RequireString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrInvalidArguments, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string", ErrInvalidArguments, key)
	}
	return s, nil
}

// RequireInt extracts a required integer argument. JSON numbers arrive as
// float64, so a float is accepted only when it carries no fraction.
func RequireInt(args map[string]any, key string) (int64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrInvalidArguments, key)
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("%w: %q must be an integer", ErrInvalidArguments, key)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%w: %q must be an integer", ErrInvalidArguments, key)
	}
}

// GetString extracts an optional string argument with a default value.
func GetString(args map[string]any, key string, defaultVal string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultVal
}

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tasktalk/tasktalk/internal/task"
)

// TaskStore is the subset of the task store the tools need.
type TaskStore interface {
	Create(ctx context.Context, name string) (*task.Task, error)
	List(ctx context.Context) ([]task.Task, error)
	Complete(ctx context.Context, id int64) (*task.Task, error)
}

// RegisterTaskTools wires the task-management tools into a registry.
func RegisterTaskTools(reg *Registry, store TaskStore) {
	reg.Register(&AddTaskTool{store: store})
	reg.Register(&ListTasksTool{store: store})
	reg.Register(&CompleteTaskTool{store: store})
}

// FormatTask renders a single task line for display to the model and user.
func FormatTask(t task.Task) string {
	mark := "○"
	if t.Completed {
		mark = "✓"
	}
	return fmt.Sprintf("[%d] %s %s", t.ID, mark, t.Name)
}

// FormatTaskList renders a full task list, one task per line.
func FormatTaskList(tasks []task.Task) string {
	if len(tasks) == 0 {
		return "No tasks found."
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, FormatTask(t))
	}
	return strings.Join(lines, "\n")
}

// AddTaskTool creates a new pending task.
type AddTaskTool struct {
	store TaskStore
}

func (t *AddTaskTool) Name() string { return "add_task" }

func (t *AddTaskTool) Description() string {
	return "Add a new task to the to-do list."
}

func (t *AddTaskTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"task_name": map[string]any{
				"type":        "string",
				"description": "The name or description of the task to add.",
			},
		},
		"required": []string{"task_name"},
	}
}

func (t *AddTaskTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	name, err := RequireString(args, "task_name")
	if err != nil {
		return "", err
	}
	created, err := t.store.Create(ctx, name)
	if err != nil {
		return "", fmt.Errorf("add task: %w", err)
	}
	return fmt.Sprintf("Added task %s", FormatTask(*created)), nil
}

// ListTasksTool returns the full task list.
type ListTasksTool struct {
	store TaskStore
}

func (t *ListTasksTool) Name() string { return "list_tasks" }

func (t *ListTasksTool) Description() string {
	return "List all tasks in the to-do list with their IDs and completion status."
}

func (t *ListTasksTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t *ListTasksTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	tasks, err := t.store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list tasks: %w", err)
	}
	return FormatTaskList(tasks), nil
}

// CompleteTaskTool marks a task as done by its numeric ID.
type CompleteTaskTool struct {
	store TaskStore
}

func (t *CompleteTaskTool) Name() string { return "complete_task" }

func (t *CompleteTaskTool) Description() string {
	return "Mark a task as completed by its numeric ID."
}

func (t *CompleteTaskTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"task_id": map[string]any{
				"type":        "integer",
				"description": "The numeric ID of the task to complete.",
			},
		},
		"required": []string{"task_id"},
	}
}

func (t *CompleteTaskTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	id, err := RequireInt(args, "task_id")
	if err != nil {
		return "", err
	}
	done, err := t.store.Complete(ctx, id)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			return "", fmt.Errorf("task %d not found", id)
		}
		return "", fmt.Errorf("complete task: %w", err)
	}
	return fmt.Sprintf("Completed task %s", FormatTask(*done)), nil
}

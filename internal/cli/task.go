package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tasktalk/tasktalk/internal/task"
	"github.com/tasktalk/tasktalk/internal/tools"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks directly, without the assistant",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, tasksStore, histStore, err := newStores()
		if err != nil {
			return err
		}
		defer tasksStore.Close()
		defer histStore.Close()

		items, err := tasksStore.List(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(tools.FormatTaskList(items))
		return nil
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add <name...>",
	Short: "Add a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, tasksStore, histStore, err := newStores()
		if err != nil {
			return err
		}
		defer tasksStore.Close()
		defer histStore.Close()

		created, err := tasksStore.Create(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		color.Green("Added %s", tools.FormatTask(*created))
		return nil
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("task id must be a number: %q", args[0])
		}
		_, tasksStore, histStore, err := newStores()
		if err != nil {
			return err
		}
		defer tasksStore.Close()
		defer histStore.Close()

		done, err := tasksStore.Complete(cmd.Context(), id)
		if err != nil {
			if errors.Is(err, task.ErrTaskNotFound) {
				return fmt.Errorf("no task with id %d", id)
			}
			return err
		}
		color.Green("Completed %s", tools.FormatTask(*done))
		return nil
	},
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("task id must be a number: %q", args[0])
		}
		_, tasksStore, histStore, err := newStores()
		if err != nil {
			return err
		}
		defer tasksStore.Close()
		defer histStore.Close()

		if err := tasksStore.Delete(cmd.Context(), id); err != nil {
			if errors.Is(err, task.ErrTaskNotFound) {
				return fmt.Errorf("no task with id %d", id)
			}
			return err
		}
		fmt.Printf("Deleted task %d\n", id)
		return nil
	},
}

var taskClearCompletedCmd = &cobra.Command{
	Use:   "clear-completed",
	Short: "Delete all completed tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, tasksStore, histStore, err := newStores()
		if err != nil {
			return err
		}
		defer tasksStore.Close()
		defer histStore.Close()

		n, err := tasksStore.ClearCompleted(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d completed task(s)\n", n)
		return nil
	},
}

func init() {
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskRmCmd)
	taskCmd.AddCommand(taskClearCompletedCmd)
}

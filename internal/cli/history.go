package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tasktalk/tasktalk/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the conversation history",
	RunE:  runHistoryShow,
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print recent conversation turns",
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all conversation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, tasksStore, histStore, err := newStores()
		if err != nil {
			return err
		}
		defer tasksStore.Close()
		defer histStore.Close()

		if err := histStore.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Conversation history cleared.")
		return nil
	},
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	_, tasksStore, histStore, err := newStores()
	if err != nil {
		return err
	}
	defer tasksStore.Close()
	defer histStore.Close()

	turns, err := histStore.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		fmt.Println("No conversation history.")
		return nil
	}
	for _, t := range turns {
		ts := t.Timestamp.Local().Format("2006-01-02 15:04")
		switch t.Role {
		case history.RoleUser:
			fmt.Printf("%s %s %s\n", ts, color.GreenString("you:     "), t.Content)
		case history.RoleTool:
			fmt.Printf("%s %s %s\n", ts, color.YellowString("tool:    "), t.Content)
		default:
			fmt.Printf("%s %s %s\n", ts, color.CyanString("tasktalk:"), t.Content)
		}
	}
	return nil
}

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 20, "Number of turns to show")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}

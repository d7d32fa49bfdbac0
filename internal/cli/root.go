// Package cli implements the tasktalk command-line interface.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/tasktalk/tasktalk/internal/cli.version=1.2.3"
	version = "0.3.0"
	logo    = "\n" +
		"  _____         _    _____     _ _\n" +
		" |_   _|_ _ ___| | _|_   _|_ _| | | __\n" +
		"   | |/ _` / __| |/ / | |/ _` | | |/ /\n" +
		"   | | (_| \\__ \\   <  | | (_| | |   <\n" +
		"   |_|\\__,_|___/_|\\_\\ |_|\\__,_|_|_|\\_\\\n"
)

var rootCmd = &cobra.Command{
	Use:   "tasktalk",
	Short: "TaskTalk - conversational task manager",
	Long:  color.CyanString(logo) + "\nA conversational assistant that manages your to-do list through natural language.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

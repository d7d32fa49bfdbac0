package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tasktalk/tasktalk/internal/config"
	"github.com/tasktalk/tasktalk/internal/provider"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ TaskTalk Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and provider status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 TaskTalk Status")
		fmt.Printf("Version: %s\n", version)

		if configPath, err := config.ConfigPath(); err == nil {
			if _, err := os.Stat(configPath); err == nil {
				fmt.Println("Config:   ✓ Found (" + configPath + ")")
			} else {
				fmt.Println("Config:   ✗ Not found (defaults and environment apply)")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config:   ✗ Failed to load: %v\n", err)
			return
		}

		fmt.Printf("Model:    %s\n", cfg.Model.Name)
		fmt.Printf("Window:   %d turns\n", cfg.Model.HistoryWindow)
		fmt.Printf("Database: %s\n", cfg.DatabasePath())

		if _, err := provider.Resolve(cfg); err == nil {
			fmt.Println("Provider: ✓ Configured")
		} else {
			fmt.Printf("Provider: ✗ %v\n", err)
		}
	},
}

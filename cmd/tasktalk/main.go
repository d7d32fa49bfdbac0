// Package main is the entry point for the tasktalk CLI.
package main

import (
	"os"

	"github.com/tasktalk/tasktalk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the factory-graph CLI.
package main

import (
	"os"

	"factory-graph/cmd/cli/cmd"
	"factory-graph/internal/logging"
)

func main() {
	err := cmd.Execute()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}

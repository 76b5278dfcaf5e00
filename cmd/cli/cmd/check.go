// Package cmd - check command
package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"factory-graph/core/graph"
	"factory-graph/internal/errors"
)

// checkCmd reports whether a graph contains a cycle
var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check a production graph for cycles",
	Long: `Load a production graph and check it for dependency cycles.

Exits non-zero and prints the offending path when a cycle exists.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(args[0])
		if err != nil {
			return err
		}

		out := newWriter(cmd.OutOrStdout())
		if cycle := graph.FindCycle(store); cycle != nil {
			out.Error("cycle: %s", strings.Join(cycle, " -> "))
			return errors.CyclicGraph(cycle)
		}

		out.Success("%s: %d items, no cycles", args[0], store.Len())
		return nil
	},
}

// Package cmd - export command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"factory-graph/core/graph"
)

var exportFormat string

// exportCmd renders the graph structure
var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the graph as DOT or as a production order",
	Long: `Export the structure of a production graph.

Formats:
  dot    Graphviz DOT, edges drawn from each input to its consumer
  order  one item per line, every item after all of its inputs

Examples:
  factory-graph export steelworks.hcl | dot -Tsvg > steelworks.svg
  factory-graph export --format order steelworks.hcl`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(args[0])
		if err != nil {
			return err
		}

		switch exportFormat {
		case "dot":
			return graph.ToDOT(store, cmd.OutOrStdout())
		case "order":
			order, err := graph.ProductionOrder(store)
			if err != nil {
				return err
			}
			for _, label := range order {
				fmt.Fprintln(cmd.OutOrStdout(), label)
			}
			return nil
		default:
			return fmt.Errorf("unknown export format: %s", exportFormat)
		}
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "dot", "export format (dot, order)")
}

// Package cmd - query command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var queryExclude string

// queryCmd lists items whose name contains a substring
var queryCmd = &cobra.Command{
	Use:   "query <file> <substring>",
	Short: "List items whose name contains a substring",
	Long: `List, in declaration order, every item whose name contains the
substring, ignoring case.

Examples:
  factory-graph query steelworks.hcl ore
  factory-graph query steelworks.hcl ore --exclude "Iron Ore"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(args[0])
		if err != nil {
			return err
		}

		var exclude []string
		if queryExclude != "" {
			exclude = append(exclude, queryExclude)
		}
		for _, label := range store.Query(args[1], exclude...) {
			fmt.Fprintln(cmd.OutOrStdout(), label)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryExclude, "exclude", "x", "", "item name to leave out")
}

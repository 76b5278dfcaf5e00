// Package cmd - history commands
package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"factory-graph/adapters/storage"
	"factory-graph/core/output"
	"factory-graph/internal/config"
)

var (
	historySource string
	historyLimit  int
	historyFormat string
)

// historyCmd groups the saved report commands
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect reports saved with solve --save",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		snaps, err := history.List(context.Background(), &storage.ListFilter{Source: historySource})
		if err != nil {
			return err
		}
		if historyLimit > 0 && len(snaps) > historyLimit {
			snaps = snaps[len(snaps)-historyLimit:]
		}

		out := newWriter(cmd.OutOrStdout())
		if len(snaps) == 0 {
			out.Info("no saved reports")
			return nil
		}

		table := out.NewTable("ID", "Source", "Fingerprint", "Saved", "Cycle profit")
		for _, snap := range snaps {
			profit := "cyclic"
			if p := snap.Report.Summary.CycleProfit; p != nil {
				profit = p.StringFixed(config.Get().Output.Precision)
			}
			table.AddRow(snap.ID, snap.Source, snap.Fingerprint, snap.CreatedAt.Format("2006-01-02 15:04:05"), profit)
		}
		table.Render()
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Render a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		snap, err := history.Get(context.Background(), args[0])
		if err != nil {
			return err
		}

		cfg := config.Get()
		format := cfg.Output.DefaultFormat
		if historyFormat != "" {
			format = historyFormat
		}
		formatter, err := output.Get(format, output.Options{
			ShowInputs: cfg.Output.ShowInputs,
			Precision:  cfg.Output.Precision,
			NoColor:    noColor,
		})
		if err != nil {
			return err
		}
		return formatter.Render(cmd.OutOrStdout(), snap.Report)
	},
}

var historyDiffCmd = &cobra.Command{
	Use:   "diff <old-id> <new-id>",
	Short: "Compare the metrics of two saved reports",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		c, err := storage.CompareIDs(context.Background(), history, args[0], args[1])
		if err != nil {
			return err
		}

		precision := config.Get().Output.Precision
		out := newWriter(cmd.OutOrStdout())
		out.Header(fmt.Sprintf("Diff %s -> %s", c.OldID, c.NewID))

		table := out.NewTable("Item", "Old net", "New net", "Delta", "Old bottleneck", "New bottleneck")
		for _, d := range c.Items {
			if !d.Changed() {
				continue
			}
			table.AddRow(d.Label,
				optDecimal(d.OldNet, precision), optDecimal(d.NewNet, precision), optDecimal(d.NetDelta, precision),
				optInt(d.OldBottleneck), optInt(d.NewBottleneck))
		}
		table.Render()

		for _, label := range c.Added {
			out.Success("added %s", label)
		}
		for _, label := range c.Removed {
			out.Warning("removed %s", label)
		}
		if c.CycleProfitDelta != nil {
			out.Info("cycle profit %s -> %s (%s)",
				optDecimal(c.OldCycleProfit, precision), optDecimal(c.NewCycleProfit, precision),
				optDecimal(c.CycleProfitDelta, precision))
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		if err := history.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		newWriter(cmd.OutOrStdout()).Success("deleted %s", args[0])
		return nil
	},
}

func optDecimal(d *decimal.Decimal, precision int32) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(precision)
}

func optInt(n *int64) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}

func init() {
	historyListCmd.Flags().StringVarP(&historySource, "source", "s", "", "only reports of this source")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "only the newest n reports")
	historyShowCmd.Flags().StringVarP(&historyFormat, "format", "f", "", "output format (cli, json, markdown)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDiffCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}

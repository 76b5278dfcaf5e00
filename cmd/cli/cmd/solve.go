// Package cmd - solve command
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"factory-graph/adapters/hcl"
	"factory-graph/adapters/storage"
	"factory-graph/core/engine"
	"factory-graph/core/output"
	"factory-graph/internal/config"
)

var (
	outputFormat string
	showInputs   bool
	precision    int32
	concurrency  int
	saveReports  bool
)

// solveCmd represents the solve command
var solveCmd = &cobra.Command{
	Use:   "solve <file>...",
	Short: "Compute net margin and bottleneck for every item",
	Long: `Evaluate one or more production graph files.

Each file is loaded into its own graph and evaluated independently. A graph
containing a cycle is reported with the offending path instead of metrics.

Examples:
  factory-graph solve steelworks.hcl
  factory-graph solve --inputs --precision 4 steelworks.hcl
  factory-graph solve --format json plants/*.hcl
  factory-graph solve --save steelworks.hcl`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, markdown)")
	solveCmd.Flags().BoolVarP(&showInputs, "inputs", "i", false, "list each item's inputs")
	solveCmd.Flags().Int32VarP(&precision, "precision", "p", -1, "decimal places for money values")
	solveCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "files evaluated at once")
	solveCmd.Flags().BoolVar(&saveReports, "save", false, "save each report to the history")
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	opts := output.Options{
		ShowInputs: showInputs || cfg.Output.ShowInputs,
		Precision:  cfg.Output.Precision,
		NoColor:    noColor,
	}
	if precision >= 0 {
		opts.Precision = precision
	}

	format := cfg.Output.DefaultFormat
	if outputFormat != "" {
		format = outputFormat
	}
	formatter, err := output.Get(format, opts)
	if err != nil {
		return err
	}

	engineConfig := engine.EngineConfig{
		DefaultStorage: cfg.Defaults.Storage,
		MaxConcurrency: cfg.Batch.MaxConcurrency,
	}
	if concurrency > 0 {
		engineConfig.MaxConcurrency = concurrency
	}
	e := engine.NewEngine(hcl.LoadStore, engineConfig)

	var history storage.Store
	if saveReports {
		if history, err = openHistory(); err != nil {
			return err
		}
		defer history.Close()
	}

	ctx := context.Background()
	results := e.EvaluateAll(ctx, args)

	out := cmd.OutOrStdout()
	errOut := newWriter(cmd.ErrOrStderr())
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			errOut.Error("%v", r.Err)
			failed++
			continue
		}
		if err := formatter.Render(out, r.Report); err != nil {
			return err
		}
		if history != nil {
			snap := storage.NewSnapshot(r.Report)
			if err := history.Save(ctx, snap); err != nil {
				return err
			}
			errOut.Info("saved %s as %s", r.Source, snap.ID)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

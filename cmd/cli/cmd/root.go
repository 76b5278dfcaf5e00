// Package cmd provides the CLI commands for factory-graph.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"factory-graph/adapters/hcl"
	"factory-graph/adapters/storage"
	"factory-graph/core/graph"
	"factory-graph/core/ui"
	"factory-graph/internal/config"
	"factory-graph/internal/logging"
)

const version = "0.1.0"

var (
	cfgFile string
	verbose bool
	noColor bool
	quiet   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "factory-graph",
	Short: "Evaluate production chains modeled as item graphs",
	Long: `factory-graph evaluates production chains described in HCL files.

Each item consumes fixed quantities of other items. For every item the tool
reports the net profit margin per unit and the bottleneck: the most whole
units producible in one cycle given storage capacities upstream.

Examples:
  factory-graph solve steelworks.hcl
  factory-graph solve --format json a.hcl b.hcl
  factory-graph check steelworks.hcl
  factory-graph query steelworks.hcl ore --exclude "Iron Ore"
  factory-graph export --format dot steelworks.hcl
  factory-graph history diff <old-id> <new-id>`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.factory-graph.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress informational messages")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	if verbose {
		logging.SetLevel(zapcore.DebugLevel)
	}
}

// loadStore reads a definition file using the configured defaults
func loadStore(path string) (*graph.Store, error) {
	return hcl.LoadStore(path,
		graph.WithDefaultStorage(config.Get().Defaults.Storage),
		graph.WithLogger(logging.Named("store")),
	)
}

// newWriter creates a UI writer honoring --no-color and --quiet
func newWriter(out io.Writer) *ui.Writer {
	w := ui.NewWriter(out, noColor)
	if quiet {
		w.SetVerbosity(0)
	}
	return w
}

// openHistory opens the configured report history
func openHistory() (storage.Store, error) {
	cfg := config.Get().History
	return storage.StoreFactory(storage.Backend(cfg.Backend), map[string]string{"path": cfg.Path})
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "factory-graph version %s\n", version)
	},
}

// configCmd prints the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(config.Get(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

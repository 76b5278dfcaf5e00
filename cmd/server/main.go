// Package main - Entry point for the factory-graph HTTP server
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"factory-graph/adapters/storage"
	"factory-graph/api"
	"factory-graph/internal/config"
	"factory-graph/internal/logging"
)

const version = "0.1.0"

var (
	cfgFile string
	addr    string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:          "factory-graph-server",
	Short:        "Serve production graph evaluation over HTTP",
	Version:      version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := logging.Initialize(cfg.Logging); err != nil {
			return err
		}
		if verbose {
			logging.SetLevel(zapcore.DebugLevel)
		}
		if addr == "" {
			addr = cfg.Server.Addr
		}

		history, err := storage.StoreFactory(storage.Backend(cfg.History.Backend), map[string]string{"path": cfg.History.Path})
		if err != nil {
			return err
		}
		defer history.Close()

		srv := api.NewServerWithHistory(version, api.ServerConfig{
			DefaultStorage: cfg.Defaults.Storage,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		}, history)

		logging.Info("factory-graph server listening", zap.String("addr", addr), zap.String("version", version))
		return srv.ListenAndServe(addr)
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.factory-graph.json)")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}

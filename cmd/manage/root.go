package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"yamdb/proj/internal/config"
	"yamdb/proj/internal/lib/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "manage",
	Short: "manage - YaMDb maintenance commands",
	Long: `manage runs maintenance tasks against the YaMDb database:
- apply or roll back schema migrations
- import the CSV fixtures from static/data`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config/local.yml", "path to config file")
	rootCmd.AddCommand(migrateCmd, importCmd)
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.SetupLogger(cfg.Debug), nil
}

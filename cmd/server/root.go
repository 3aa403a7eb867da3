package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/clarity/internal/config"
	"github.com/mmynk/clarity/internal/storage/sqlstore"
	"github.com/mmynk/clarity/pkg/logging"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:          "clarity",
	Short:        "Budget ledger and expense review server",
	Long:         "Clarity tracks institutional budgets, reviews expenses against them and publishes approved spending.",
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "clarity.toml", "Path to the TOML config file")
}

// loadConfig reads the configuration and installs the global logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	logging.Setup(cfg.SlogLevel())
	return cfg, nil
}

// openStore opens the configured database. Migrations run on open.
func openStore(cfg config.Config) (*sqlstore.Store, error) {
	dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	store, err := sqlstore.Open(dialect, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}
	slog.Info("Storage initialized", "driver", cfg.Database.Driver)
	return store, nil
}

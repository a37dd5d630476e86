package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantlab/silverquant/config"
	"github.com/quantlab/silverquant/internal/logger"
	"github.com/quantlab/silverquant/journal"
)

var rootCmd = &cobra.Command{
	Use:   "silverquant",
	Short: "A silver futures quant research and simulation platform",
	Long: `Silverquant is a quantitative trading research platform for the
Shanghai silver futures contract.

It provides tools for:
  - Backtesting signal strategies against historical bar data
  - Paper trading against a live quote feed
  - Printing the latest signal for a strategy without trading it
  - Journaling trades and equity curves to SQLite or CSV

All modes share one YAML configuration file; see "silverquant config"
for a starting point.`,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "path to the YAML configuration file")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// openJournal builds the configured journal backend. Callers own Close.
func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "none":
		return journal.Nop{}, nil
	}
	// Validate rejects anything else before we get here.
	return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
}

func isWSURL(u string) bool {
	return strings.HasPrefix(u, "ws://") || strings.HasPrefix(u, "wss://")
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantlab/silverquant/market"
	"github.com/quantlab/silverquant/strategy"
)

var signalCmd = &cobra.Command{
	Use:   "signal",
	Short: "Print the strategy's latest signal without trading it",
	Long: `Signal evaluates the configured strategy on the most recent bar and
prints the decision. History comes from data.csv_path; when data.source
is a quote URL, the current quote is appended as the live bar first.

Example:
  silverquant signal -c config.yaml`,
	RunE: runSignal,
}

func init() {
	rootCmd.AddCommand(signalCmd)
}

func runSignal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	strat, err := strategy.New(cfg.Strategy.Name, cfg.Strategy.Params)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	if cfg.Data.CSVPath == "" {
		return fmt.Errorf("data.csv_path is required for signal evaluation")
	}
	bars, err := market.LoadCSV(cfg.Data.CSVPath)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	if cfg.Data.Source != "" && cfg.Data.Source != "csv" {
		src, err := openQuoteSource(cfg.Data.Source, cfg.Data.Symbol)
		if err != nil {
			return err
		}
		defer src.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		q, err := src.Latest(ctx, cfg.Data.Symbol)
		if err != nil {
			return fmt.Errorf("fetch quote: %w", err)
		}
		bars = append(bars, q.Bar())
	}
	if len(bars) == 0 {
		return market.ErrNoBars
	}

	sig := strat.Latest(bars)
	last := bars[len(bars)-1]

	fmt.Printf("Strategy:  %s\n", strat.Name())
	fmt.Printf("Symbol:    %s\n", cfg.Data.Symbol)
	fmt.Printf("Bar time:  %s\n", last.Time.Format("2006-01-02 15:04"))
	fmt.Printf("Price:     %.2f\n", last.Close)
	fmt.Printf("Signal:    %s\n", sig.Action)
	if sig.StopLoss != nil {
		fmt.Printf("Stop loss: %.2f\n", *sig.StopLoss)
	}
	return nil
}

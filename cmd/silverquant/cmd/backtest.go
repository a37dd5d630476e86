package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantlab/silverquant/backtest"
	"github.com/quantlab/silverquant/exchange"
	"github.com/quantlab/silverquant/market"
	"github.com/quantlab/silverquant/strategy"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay historical bars through the simulated exchange",
	Long: `Backtest replays the configured CSV bar history through the simulated
exchange, bar by bar, and prints a performance report.

Supported strategies:
  - dual_ma_atr:   dual moving-average cross with an ATR volatility filter
  - rsi_bollinger: mean reversion on Bollinger band touches confirmed by RSI

Example:
  silverquant backtest -c config.yaml --progress=false`,
	RunE: runBacktest,
}

var btProgress bool

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().BoolVar(&btProgress, "progress", true, "show a replay progress bar")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Data.CSVPath == "" {
		return fmt.Errorf("data.csv_path is required for backtests")
	}

	bars, err := market.LoadCSV(cfg.Data.CSVPath)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	start, end := cfg.DateRange()
	bars = market.FilterRange(bars, start, end)
	if len(bars) == 0 {
		return fmt.Errorf("no bars in the configured date range")
	}

	strat, err := strategy.New(cfg.Strategy.Name, cfg.Strategy.Params)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	jrnl, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrnl.Close()

	acct := exchange.NewAccount(cfg.Account.InitialCapital, exchange.ContractSpec{
		Unit:           cfg.Exchange.ContractUnit,
		MarginRatio:    cfg.Exchange.MarginRatio,
		CommissionRate: cfg.Exchange.CommissionRate,
	})
	sim := exchange.NewSimulator(acct, exchange.Config{
		Symbol:          cfg.Data.Symbol,
		OrderSize:       cfg.Exchange.OrderSize,
		MaxTradesPerDay: cfg.Account.MaxTradesPerDay,
		ReverseOnSignal: cfg.ReverseOnSignalEnabled(),
	}, jrnl, log)

	engine := &backtest.Engine{
		Sim:           sim,
		Journal:       jrnl,
		Annualization: cfg.Annualization(),
		Progress:      btProgress,
		Log:           log,
	}

	fmt.Printf("Backtesting %s with strategy: %s\n", cfg.Data.Symbol, strat.Name())
	fmt.Printf("  Bars: %d (%s)\n\n", len(bars), cfg.Data.CSVPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := engine.Run(ctx, bars, strat.GenerateSignals(bars))
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	fmt.Println(result.Summary.Format())
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantlab/silverquant/config"
	"github.com/quantlab/silverquant/exchange"
	"github.com/quantlab/silverquant/journal"
	"github.com/quantlab/silverquant/market"
	"github.com/quantlab/silverquant/quotes"
	"github.com/quantlab/silverquant/strategy"
)

var paperCmd = &cobra.Command{
	Use:   "paper",
	Short: "Trade the configured strategy against a live quote feed",
	Long: `Paper runs the strategy against the quote feed in data.source, placing
simulated orders on the simulated exchange. The account survives process
restarts through the journal.snapshot_path file.

The feed URL decides the transport: ws:// or wss:// streams quotes over
a websocket, anything else is polled as a REST quote endpoint.

Example:
  silverquant paper -c config.yaml --duration 4h`,
	RunE: runPaper,
}

var (
	paperDuration time.Duration
	paperPoll     time.Duration
	paperCloseEnd bool
)

func init() {
	rootCmd.AddCommand(paperCmd)

	paperCmd.Flags().DurationVar(&paperDuration, "duration", 0, "stop after this long (0 = run until interrupted)")
	paperCmd.Flags().DurationVar(&paperPoll, "poll", 0, "bar evaluation interval (default: data.interval)")
	paperCmd.Flags().BoolVar(&paperCloseEnd, "close-end", false, "flatten the position on shutdown instead of snapshotting it open")
}

func runPaper(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	strat, err := strategy.New(cfg.Strategy.Name, cfg.Strategy.Params)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	jrnl, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrnl.Close()

	spec := exchange.ContractSpec{
		Unit:           cfg.Exchange.ContractUnit,
		MarginRatio:    cfg.Exchange.MarginRatio,
		CommissionRate: cfg.Exchange.CommissionRate,
	}
	acct, err := loadOrCreateAccount(cfg.Journal.SnapshotPath, cfg.Account.InitialCapital, spec, log)
	if err != nil {
		return err
	}

	sim := exchange.NewSimulator(acct, exchange.Config{
		Symbol:          cfg.Data.Symbol,
		OrderSize:       cfg.Exchange.OrderSize,
		MaxTradesPerDay: cfg.Account.MaxTradesPerDay,
		ReverseOnSignal: cfg.ReverseOnSignalEnabled(),
	}, jrnl, log)

	// Warm-up history so the indicators have a full window before the
	// first live bar arrives.
	var history []market.Bar
	if cfg.Data.CSVPath != "" {
		history, err = market.LoadCSV(cfg.Data.CSVPath)
		if err != nil {
			return fmt.Errorf("load warm-up bars: %w", err)
		}
		log.Info("warm-up history loaded", zap.Int("bars", len(history)))
	}

	src, err := openQuoteSource(cfg.Data.Source, cfg.Data.Symbol)
	if err != nil {
		return err
	}
	defer src.Close()

	poll := paperPoll
	if poll <= 0 {
		poll = cfg.Interval().Duration()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if paperDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, paperDuration)
		defer cancel()
	}

	fmt.Printf("Paper trading %s with strategy: %s (every %s)\n", cfg.Data.Symbol, strat.Name(), poll)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	var lastBar market.Bar
	for {
		select {
		case <-ctx.Done():
			return shutdownPaper(cfg, sim, lastBar, log)
		case <-ticker.C:
		}

		q, err := src.Latest(ctx, cfg.Data.Symbol)
		if err != nil {
			log.Warn("fetch quote", zap.Error(err))
			continue
		}

		bar := q.Bar()
		history = append(history, bar)
		lastBar = bar

		exec, err := sim.ProcessSignal(bar, strat.Latest(history))
		if err != nil {
			return fmt.Errorf("process signal: %w", err)
		}
		if recErr := jrnl.RecordEquity(journal.EquityRecord{
			Time:   bar.Time,
			Cash:   acct.Cash,
			Equity: acct.Equity(bar.Close),
			Action: string(exec.Action),
		}); recErr != nil {
			log.Warn("journal equity", zap.Error(recErr))
		}

		if exec.Action != exchange.ActionNone {
			fmt.Printf("%s  %s %s @ %.2f\n",
				bar.Time.Format("2006-01-02 15:04"), exec.Action, cfg.Data.Symbol, exec.Price)
		}
	}
}

func shutdownPaper(cfg *config.Config, sim *exchange.Simulator, lastBar market.Bar, log *zap.Logger) error {
	acct := sim.Account()

	if paperCloseEnd && acct.Position.IsOpen() && !lastBar.Time.IsZero() {
		if _, err := sim.ForceClose(lastBar, exchange.ReasonManualClose); err != nil {
			return fmt.Errorf("close on shutdown: %w", err)
		}
	}

	if cfg.Journal.SnapshotPath != "" {
		if err := journal.SaveAccountSnapshot(cfg.Journal.SnapshotPath, acct.Snapshot()); err != nil {
			return err
		}
		log.Info("account snapshot saved", zap.String("path", cfg.Journal.SnapshotPath))
	}

	price := lastBar.Close
	if price == 0 {
		price = acct.Position.EntryPrice
	}
	printStats(acct.Stats(price))
	return nil
}

func loadOrCreateAccount(snapshotPath string, capital float64, spec exchange.ContractSpec, log *zap.Logger) (*exchange.Account, error) {
	if snapshotPath != "" {
		if _, err := os.Stat(snapshotPath); err == nil {
			snap, err := journal.LoadAccountSnapshot(snapshotPath)
			if err != nil {
				return nil, err
			}
			log.Info("account restored from snapshot",
				zap.String("path", snapshotPath),
				zap.Float64("cash", snap.Cash))
			return exchange.RestoreAccount(snap, spec), nil
		}
	}
	return exchange.NewAccount(capital, spec), nil
}

func openQuoteSource(source, symbol string) (quotes.Source, error) {
	if source == "" || source == "csv" {
		return nil, fmt.Errorf("data.source must be a quote URL for this mode")
	}
	if isWSURL(source) {
		ws, err := quotes.DialWS(source)
		if err != nil {
			return nil, err
		}
		if err := ws.Subscribe(symbol); err != nil {
			ws.Close()
			return nil, err
		}
		return ws, nil
	}
	return quotes.NewRESTPoller(source), nil
}

func printStats(s exchange.Stats) {
	fmt.Println()
	fmt.Printf("Equity:       %.0f (%+.2f%%)\n", s.CurrentEquity, s.TotalReturnPct)
	fmt.Printf("Trades:       %d (win rate %.1f%%)\n", s.TotalTrades, s.WinRatePct)
	fmt.Printf("Net PnL:      %.0f\n", s.NetPnL)
	fmt.Printf("Commission:   %.2f\n", s.TotalCommission)
}

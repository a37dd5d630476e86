// Package backtest replays historical bars through the simulated
// exchange and derives performance metrics from the result.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/quantlab/silverquant/exchange"
	"github.com/quantlab/silverquant/journal"
	"github.com/quantlab/silverquant/market"
	"github.com/quantlab/silverquant/strategy"
)

// ErrNoSignals is returned when replay is started with a signal
// sequence that does not cover the bar sequence.
var ErrNoSignals = errors.New("backtest: signals do not cover bars")

// EquitySample is one point of the equity curve, appended after each
// replayed bar and never mutated.
type EquitySample struct {
	Time   time.Time
	Equity float64
	Action exchange.Action
}

// Result is the full outcome of a replay: summary metrics, the closed
// trades in order, and the equity curve.
type Result struct {
	Summary     Summary
	Trades      []exchange.Trade
	EquityCurve []EquitySample
}

// Engine drives a single sequential pass over the bar sequence. Each
// bar's decision depends on the account state left by the previous bar,
// so bars are never processed out of order or concurrently.
type Engine struct {
	Sim     *exchange.Simulator
	Journal journal.Journal // equity curve persistence; may be nil

	// Annualization is the number of return samples per year, e.g.
	// bars per trading day x 252. Zero disables the Sharpe-like ratio.
	Annualization float64

	Progress bool
	Log      *zap.Logger
}

// Run replays bars[i] against signals[i] for every i. After the final
// bar any open position is force-closed at the last close so the run
// ends with a reconciled, flat account. Cancelling ctx force-closes the
// position the same way and returns ctx.Err().
func (e *Engine) Run(ctx context.Context, bars []market.Bar, signals []strategy.Signal) (*Result, error) {
	if e.Sim == nil {
		return nil, fmt.Errorf("backtest: Sim is required")
	}
	if len(bars) == 0 {
		return nil, market.ErrNoBars
	}
	if len(signals) < len(bars) {
		return nil, fmt.Errorf("%w: %d signals for %d bars", ErrNoSignals, len(signals), len(bars))
	}

	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}
	jrnl := e.Journal
	if jrnl == nil {
		jrnl = journal.Nop{}
	}

	var bar *progressbar.ProgressBar
	if e.Progress {
		bar = progressbar.Default(int64(len(bars)), "replaying")
	}

	curve := make([]EquitySample, 0, len(bars))
	acct := e.Sim.Account()

	for i := range bars {
		select {
		case <-ctx.Done():
			if _, err := e.Sim.ForceClose(bars[i], exchange.ReasonManualClose); err != nil {
				return nil, err
			}
			return nil, ctx.Err()
		default:
		}

		exec, err := e.Sim.ProcessSignal(bars[i], signals[i])
		if err != nil {
			return nil, fmt.Errorf("bar %d (%s): %w", i, bars[i].Time.Format(time.RFC3339), err)
		}

		sample := EquitySample{
			Time:   bars[i].Time,
			Equity: acct.Equity(bars[i].Close),
			Action: exec.Action,
		}
		curve = append(curve, sample)

		if err := jrnl.RecordEquity(journal.EquityRecord{
			Time:   sample.Time,
			Cash:   acct.Cash,
			Equity: sample.Equity,
			Action: string(sample.Action),
		}); err != nil {
			log.Warn("journal equity", zap.Error(err))
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	last := bars[len(bars)-1]
	if acct.Position.IsOpen() {
		exec, err := e.Sim.ForceClose(last, exchange.ReasonEndOfData)
		if err != nil {
			return nil, err
		}
		// The curve reflects the settled book on the final bar.
		curve[len(curve)-1] = EquitySample{
			Time:   last.Time,
			Equity: acct.Equity(last.Close),
			Action: exec.Action,
		}
	}

	log.Info("replay complete",
		zap.Int("bars", len(bars)),
		zap.Int("trades", len(acct.Trades)),
		zap.Float64("final_equity", acct.Equity(last.Close)))

	return &Result{
		Summary:     BuildSummary(acct, last.Close, curve, e.Annualization),
		Trades:      append([]exchange.Trade(nil), acct.Trades...),
		EquityCurve: curve,
	}, nil
}

package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/silverquant/exchange"
	"github.com/quantlab/silverquant/market"
	"github.com/quantlab/silverquant/strategy"
)

func silverSpec() exchange.ContractSpec {
	return exchange.ContractSpec{Unit: 15, MarginRatio: 0.12, CommissionRate: 0.00005}
}

func newEngine(capital float64, cfg exchange.Config) *Engine {
	if cfg.Symbol == "" {
		cfg.Symbol = "AG0"
	}
	acct := exchange.NewAccount(capital, silverSpec())
	return &Engine{
		Sim:           exchange.NewSimulator(acct, cfg, nil, nil),
		Annualization: 252 * 48,
	}
}

func flatBars(n int, price float64) []market.Bar {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, n)
	for i := range bars {
		bars[i] = market.Bar{
			Time:   base.Add(time.Duration(i) * 5 * time.Minute),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 100,
		}
	}
	return bars
}

func holds(n int, price float64) []strategy.Signal {
	sigs := make([]strategy.Signal, n)
	for i := range sigs {
		sigs[i] = strategy.Signal{Action: strategy.Hold, Price: price}
	}
	return sigs
}

func TestRunValidation(t *testing.T) {
	ctx := context.Background()

	e := &Engine{}
	_, err := e.Run(ctx, flatBars(5, 100), holds(5, 100))
	require.Error(t, err)

	e = newEngine(1_000_000, exchange.Config{})
	_, err = e.Run(ctx, nil, nil)
	assert.ErrorIs(t, err, market.ErrNoBars)

	_, err = e.Run(ctx, flatBars(5, 100), holds(3, 100))
	assert.ErrorIs(t, err, ErrNoSignals)
}

// Flat for 40 bars, buy at bar 41, hold, sell at bar 60. One closed
// trade, commission charged on both legs, equity curve strictly flat
// before the entry.
func TestRoundTripLongProfit(t *testing.T) {
	bars := flatBars(60, 100)
	// Bars 41..59 drift up to 110 so the sell exits at 110.
	for i := 40; i < 60; i++ {
		p := 100 + float64(i-39)*0.5
		bars[i].Open, bars[i].High, bars[i].Low, bars[i].Close = p, p, p, p
	}
	bars[59].Open, bars[59].High, bars[59].Low, bars[59].Close = 110, 110, 110, 110

	sigs := holds(60, 100)
	stop := 95.0
	sigs[40] = strategy.Signal{Action: strategy.Buy, Price: 100, StopLoss: &stop}
	sigs[59] = strategy.Signal{Action: strategy.Sell, Price: 110}

	e := newEngine(1_000_000, exchange.Config{OrderSize: 2})
	res, err := e.Run(context.Background(), bars, sigs)
	require.NoError(t, err)

	// One closed round trip; the sell reverses into a short that the
	// end-of-data close flattens, so up to two trades may exist.
	require.NotEmpty(t, res.Trades)
	first := res.Trades[0]
	assert.Equal(t, exchange.Long, first.Side)
	assert.InDelta(t, (110-100)*2*15, first.GrossPnL, 1e-9)
	openComm := 2 * 15 * 100.0 * 0.00005
	closeComm := 2 * 15 * 110.0 * 0.00005
	assert.InDelta(t, openComm+closeComm, first.Commission, 1e-9)

	// Strictly flat equity before the entry bar.
	for i := 0; i < 40; i++ {
		assert.Equal(t, 1_000_000.0, res.EquityCurve[i].Equity, "bar %d", i)
		assert.Equal(t, exchange.ActionNone, res.EquityCurve[i].Action, "bar %d", i)
	}
	assert.Equal(t, exchange.ActionOpenLong, res.EquityCurve[40].Action)
}

// Same round trip without the reversal policy: exactly one trade.
func TestRoundTripCloseOnly(t *testing.T) {
	bars := flatBars(60, 100)
	sigs := holds(60, 100)
	stop := 95.0
	sigs[40] = strategy.Signal{Action: strategy.Buy, Price: 100, StopLoss: &stop}
	sigs[59] = strategy.Signal{Action: strategy.Sell, Price: 100}

	e := newEngine(1_000_000, exchange.Config{OrderSize: 1, ReverseOnSignal: false})
	res, err := e.Run(context.Background(), bars, sigs)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	assert.Equal(t, exchange.ReasonSignalReverse, res.Trades[0].Reason)
	assert.False(t, e.Sim.Account().Position.IsOpen())
}

// A bar prints a low through the stop before any opposing signal; the
// trade exits at the stop with reason stop_loss.
func TestStopLossExit(t *testing.T) {
	bars := flatBars(45, 100)
	sigs := holds(45, 100)
	stop := 95.0
	sigs[40] = strategy.Signal{Action: strategy.Buy, Price: 100, StopLoss: &stop}
	bars[43].Low = 94
	bars[43].Close = 97

	e := newEngine(1_000_000, exchange.Config{OrderSize: 1})
	res, err := e.Run(context.Background(), bars, sigs)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, exchange.ReasonStopLoss, tr.Reason)
	assert.LessOrEqual(t, tr.ExitPrice, 95.0)
	assert.Equal(t, exchange.ActionStopLossClose, res.EquityCurve[43].Action)
}

// Forced closure: every run ends flat.
func TestEndOfDataClose(t *testing.T) {
	bars := flatBars(45, 100)
	sigs := holds(45, 100)
	sigs[40] = strategy.Signal{Action: strategy.Buy, Price: 100}

	e := newEngine(1_000_000, exchange.Config{OrderSize: 1})
	res, err := e.Run(context.Background(), bars, sigs)
	require.NoError(t, err)

	assert.False(t, e.Sim.Account().Position.IsOpen())
	require.Len(t, res.Trades, 1)
	assert.Equal(t, exchange.ReasonEndOfData, res.Trades[0].Reason)
	assert.Equal(t, exchange.ActionCloseLong, res.EquityCurve[44].Action)
}

// Reconciliation after a full run: final equity equals initial capital
// plus gross P&L minus commission.
func TestRunReconciliation(t *testing.T) {
	bars := flatBars(50, 100)
	for i := 41; i < 50; i++ {
		p := 100 + float64(i-40)
		bars[i].Open, bars[i].High, bars[i].Low, bars[i].Close = p, p, p, p
	}
	sigs := holds(50, 100)
	sigs[40] = strategy.Signal{Action: strategy.Buy, Price: 100}
	sigs[45] = strategy.Signal{Action: strategy.Sell, Price: bars[45].Close}

	e := newEngine(1_000_000, exchange.Config{OrderSize: 3})
	res, err := e.Run(context.Background(), bars, sigs)
	require.NoError(t, err)

	var gross, comm float64
	for _, tr := range res.Trades {
		gross += tr.GrossPnL
		comm += tr.Commission
	}
	assert.InDelta(t, 1_000_000+gross-comm, res.Summary.FinalEquity, 1e-6)
}

// Determinism: identical inputs produce identical equity curves and
// trade lists.
func TestDeterminism(t *testing.T) {
	bars := flatBars(60, 100)
	for i := 35; i < 60; i++ {
		p := 100 + float64(i%7) - 3
		bars[i].Open, bars[i].High, bars[i].Low, bars[i].Close = p, p+1, p-1, p
	}
	strat := strategy.NewDualMAATR(strategy.DefaultDualMAATRParams())
	sigs := strat.GenerateSignals(bars)

	run := func() *Result {
		e := newEngine(1_000_000, exchange.Config{OrderSize: 1, ReverseOnSignal: true})
		res, err := e.Run(context.Background(), bars, sigs)
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	require.Equal(t, len(a.EquityCurve), len(b.EquityCurve))
	for i := range a.EquityCurve {
		assert.Equal(t, a.EquityCurve[i].Equity, b.EquityCurve[i].Equity, "bar %d", i)
		assert.Equal(t, a.EquityCurve[i].Action, b.EquityCurve[i].Action, "bar %d", i)
	}
	require.Equal(t, len(a.Trades), len(b.Trades))
	for i := range a.Trades {
		assert.Equal(t, a.Trades[i].GrossPnL, b.Trades[i].GrossPnL, "trade %d", i)
		assert.Equal(t, a.Trades[i].Reason, b.Trades[i].Reason, "trade %d", i)
	}
}

// Cancellation closes any open position before returning.
func TestCancellation(t *testing.T) {
	bars := flatBars(50, 100)
	sigs := holds(50, 100)
	sigs[0] = strategy.Signal{Action: strategy.Buy, Price: 100}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newEngine(1_000_000, exchange.Config{OrderSize: 1})
	_, err := e.Run(ctx, bars, sigs)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, e.Sim.Account().Position.IsOpen())
}

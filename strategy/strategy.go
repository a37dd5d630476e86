// Package strategy turns bar history into discrete trading signals.
package strategy

import (
	"fmt"
	"strings"

	"github.com/quantlab/silverquant/market"
)

// Action is a discrete trading decision for one bar.
type Action int8

const (
	Hold Action = iota
	Buy
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Signal is the decision for a single bar: an action, the reference
// price it was computed at, and an optional stop-loss level for entry
// signals. StopLoss is nil when the strategy does not place stops.
type Signal struct {
	Action   Action
	Price    float64
	StopLoss *float64
}

// Strategy produces signals from bar history. GenerateSignals evaluates
// the whole history at once (one Signal per bar, for backtests); Latest
// evaluates only the most recent bar (for paper trading). Both must
// agree for identical input windows: implementations derive each bar's
// signal purely from the trailing window ending at that bar.
//
// Bars shorter than the slowest indicator window produce Hold.
type Strategy interface {
	Name() string
	GenerateSignals(bars []market.Bar) []Signal
	Latest(bars []market.Bar) Signal
}

// New builds a registered strategy by name. Unknown params are ignored;
// missing params fall back to the strategy's defaults.
func New(name string, params map[string]float64) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "dual_ma_atr", "dual-ma-atr":
		return NewDualMAATR(DualMAATRParamsFrom(params)), nil
	case "rsi_bollinger", "rsi-bollinger":
		return NewRSIBollinger(RSIBollingerParamsFrom(params)), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: dual_ma_atr, rsi_bollinger)", name)
	}
}

func hold(bars []market.Bar, i int) Signal {
	return Signal{Action: Hold, Price: bars[i].Close}
}

func param(params map[string]float64, key string, def float64) float64 {
	if params == nil {
		return def
	}
	if v, ok := params[key]; ok {
		return v
	}
	return def
}

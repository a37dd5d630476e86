package backtest

import (
	"fmt"
	"math"
	"strings"

	"github.com/quantlab/silverquant/exchange"
)

// Summary aggregates account statistics with curve-derived risk metrics.
type Summary struct {
	InitialCapital  float64
	FinalEquity     float64
	TotalReturnPct  float64
	MaxDrawdownPct  float64
	SharpeLikeRatio float64
	TotalTrades     int
	WinRatePct      float64
	AvgWin          float64
	AvgLoss         float64
	NetPnL          float64
	TotalCommission float64
}

func BuildSummary(acct *exchange.Account, finalPrice float64, curve []EquitySample, annualization float64) Summary {
	stats := acct.Stats(finalPrice)
	return Summary{
		InitialCapital:  stats.InitialCapital,
		FinalEquity:     stats.CurrentEquity,
		TotalReturnPct:  stats.TotalReturnPct,
		MaxDrawdownPct:  MaxDrawdown(curve),
		SharpeLikeRatio: SharpeRatio(curve, annualization),
		TotalTrades:     stats.TotalTrades,
		WinRatePct:      stats.WinRatePct,
		AvgWin:          stats.AvgWin,
		AvgLoss:         stats.AvgLoss,
		NetPnL:          stats.NetPnL,
		TotalCommission: stats.TotalCommission,
	}
}

// MaxDrawdown is the most negative percentage decline of equity from
// its running peak, e.g. -12.5 for a 12.5% drawdown. Zero for an empty
// curve.
func MaxDrawdown(curve []EquitySample) float64 {
	var peak, worst float64
	for _, s := range curve {
		if s.Equity > peak {
			peak = s.Equity
		}
		if peak <= 0 {
			continue
		}
		dd := (s.Equity - peak) / peak * 100
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

// SharpeRatio is the annualized mean/stddev of per-sample simple
// returns (in percent). Zero when fewer than two returns exist or the
// returns never vary.
func SharpeRatio(curve []EquitySample, annualization float64) float64 {
	var returns []float64
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (curve[i].Equity/prev-1)*100)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(annualization)
}

// Format renders the summary as the report block printed after a run.
func (s Summary) Format() string {
	var b strings.Builder
	line := strings.Repeat("=", 50)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "Backtest Report")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Initial capital:  %.0f\n", s.InitialCapital)
	fmt.Fprintf(&b, "Final equity:     %.0f\n", s.FinalEquity)
	fmt.Fprintf(&b, "Total return:     %+.2f%%\n", s.TotalReturnPct)
	fmt.Fprintf(&b, "Max drawdown:     %.2f%%\n", s.MaxDrawdownPct)
	fmt.Fprintf(&b, "Sharpe ratio:     %.2f\n", s.SharpeLikeRatio)
	fmt.Fprintf(&b, "Total trades:     %d\n", s.TotalTrades)
	fmt.Fprintf(&b, "Win rate:         %.1f%%\n", s.WinRatePct)
	fmt.Fprintf(&b, "Avg win:          %.0f\n", s.AvgWin)
	fmt.Fprintf(&b, "Avg loss:         %.0f\n", s.AvgLoss)
	fmt.Fprintf(&b, "Net PnL:          %.0f\n", s.NetPnL)
	fmt.Fprintf(&b, "Total commission: %.2f\n", s.TotalCommission)
	fmt.Fprintln(&b, line)
	return b.String()
}

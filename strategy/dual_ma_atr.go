package strategy

import (
	"github.com/quantlab/silverquant/indicators"
	"github.com/quantlab/silverquant/market"
)

// DualMAATR is a dual moving-average trend follower with an ATR
// volatility filter:
//
//   - fast SMA crossing above the slow SMA signals Buy
//   - fast SMA crossing below the slow SMA signals Sell
//   - bars where ATR/price is below MinATRRatio are skipped, to avoid
//     churning in quiet ranges
//   - the stop-loss is placed ATRMultiplier true ranges away from the
//     entry price
type DualMAATR struct {
	params DualMAATRParams
}

type DualMAATRParams struct {
	FastMA        int
	SlowMA        int
	ATRPeriod     int
	ATRMultiplier float64
	MinATRRatio   float64
}

func DefaultDualMAATRParams() DualMAATRParams {
	return DualMAATRParams{
		FastMA:        10,
		SlowMA:        30,
		ATRPeriod:     14,
		ATRMultiplier: 2.0,
		MinATRRatio:   0.005,
	}
}

// DualMAATRParamsFrom overlays params from a config map onto the defaults.
func DualMAATRParamsFrom(m map[string]float64) DualMAATRParams {
	d := DefaultDualMAATRParams()
	d.FastMA = int(param(m, "fast_ma", float64(d.FastMA)))
	d.SlowMA = int(param(m, "slow_ma", float64(d.SlowMA)))
	d.ATRPeriod = int(param(m, "atr_period", float64(d.ATRPeriod)))
	d.ATRMultiplier = param(m, "atr_multiplier", d.ATRMultiplier)
	d.MinATRRatio = param(m, "min_atr_ratio", d.MinATRRatio)
	return d
}

func NewDualMAATR(params DualMAATRParams) *DualMAATR {
	return &DualMAATR{params: params}
}

func (s *DualMAATR) Name() string { return "dual_ma_atr" }

func (s *DualMAATR) GenerateSignals(bars []market.Bar) []Signal {
	out := make([]Signal, len(bars))
	for i := range bars {
		out[i] = s.signalAt(bars, i)
	}
	return out
}

func (s *DualMAATR) Latest(bars []market.Bar) Signal {
	if len(bars) == 0 {
		return Signal{Action: Hold}
	}
	return s.signalAt(bars, len(bars)-1)
}

// signalAt derives the signal for bar i from the trailing window only,
// so vectorized and incremental evaluation cannot diverge.
func (s *DualMAATR) signalAt(bars []market.Bar, i int) Signal {
	p := s.params

	// Need slow MA at i and i-1 for cross detection, plus ATR history.
	if i < p.SlowMA || i < p.ATRPeriod {
		return hold(bars, i)
	}

	fastNow, err := indicators.SMA(bars[:i+1], p.FastMA)
	if err != nil {
		return hold(bars, i)
	}
	slowNow, err := indicators.SMA(bars[:i+1], p.SlowMA)
	if err != nil {
		return hold(bars, i)
	}
	fastPrev, err := indicators.SMA(bars[:i], p.FastMA)
	if err != nil {
		return hold(bars, i)
	}
	slowPrev, err := indicators.SMA(bars[:i], p.SlowMA)
	if err != nil {
		return hold(bars, i)
	}
	atr, err := indicators.ATR(bars[:i+1], p.ATRPeriod)
	if err != nil {
		return hold(bars, i)
	}

	price := bars[i].Close
	if price <= 0 || atr/price < p.MinATRRatio {
		return hold(bars, i)
	}

	diffNow := fastNow - slowNow
	diffPrev := fastPrev - slowPrev

	switch {
	case diffNow > 0 && diffPrev <= 0:
		stop := price - p.ATRMultiplier*atr
		return Signal{Action: Buy, Price: price, StopLoss: &stop}
	case diffNow < 0 && diffPrev >= 0:
		stop := price + p.ATRMultiplier*atr
		return Signal{Action: Sell, Price: price, StopLoss: &stop}
	default:
		return hold(bars, i)
	}
}

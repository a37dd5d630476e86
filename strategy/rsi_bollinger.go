package strategy

import (
	"github.com/quantlab/silverquant/indicators"
	"github.com/quantlab/silverquant/market"
)

// RSIBollinger is a mean-reversion strategy: Buy when price touches the
// lower Bollinger band while RSI is oversold, Sell when price touches
// the upper band while RSI is overbought. It places no stop-loss; exits
// come from opposing signals.
type RSIBollinger struct {
	params RSIBollingerParams
}

type RSIBollingerParams struct {
	RSIPeriod  int
	BBPeriod   int
	BBStd      float64
	Oversold   float64
	Overbought float64
}

func DefaultRSIBollingerParams() RSIBollingerParams {
	return RSIBollingerParams{
		RSIPeriod:  14,
		BBPeriod:   20,
		BBStd:      2.0,
		Oversold:   30,
		Overbought: 70,
	}
}

func RSIBollingerParamsFrom(m map[string]float64) RSIBollingerParams {
	d := DefaultRSIBollingerParams()
	d.RSIPeriod = int(param(m, "rsi_period", float64(d.RSIPeriod)))
	d.BBPeriod = int(param(m, "bb_period", float64(d.BBPeriod)))
	d.BBStd = param(m, "bb_std", d.BBStd)
	d.Oversold = param(m, "oversold", d.Oversold)
	d.Overbought = param(m, "overbought", d.Overbought)
	return d
}

func NewRSIBollinger(params RSIBollingerParams) *RSIBollinger {
	return &RSIBollinger{params: params}
}

func (s *RSIBollinger) Name() string { return "rsi_bollinger" }

func (s *RSIBollinger) GenerateSignals(bars []market.Bar) []Signal {
	out := make([]Signal, len(bars))
	for i := range bars {
		out[i] = s.signalAt(bars, i)
	}
	return out
}

func (s *RSIBollinger) Latest(bars []market.Bar) Signal {
	if len(bars) == 0 {
		return Signal{Action: Hold}
	}
	return s.signalAt(bars, len(bars)-1)
}

func (s *RSIBollinger) signalAt(bars []market.Bar, i int) Signal {
	p := s.params

	if i < p.BBPeriod || i < p.RSIPeriod {
		return hold(bars, i)
	}

	_, upper, lower, err := indicators.Bollinger(bars[:i+1], p.BBPeriod, p.BBStd)
	if err != nil {
		return hold(bars, i)
	}
	rsi, err := indicators.RSI(bars[:i+1], p.RSIPeriod)
	if err != nil {
		return hold(bars, i)
	}

	price := bars[i].Close
	switch {
	case price <= lower && rsi < p.Oversold:
		return Signal{Action: Buy, Price: price}
	case price >= upper && rsi > p.Overbought:
		return Signal{Action: Sell, Price: price}
	default:
		return hold(bars, i)
	}
}

// Package indicators computes technical indicators over bar history.
//
// Every function operates on the trailing window of the slice it is
// given, so callers pass bars[:i+1] to evaluate an indicator "as of"
// bar i. Functions return an error when the history is shorter than
// the requested period.
package indicators

import (
	"fmt"
	"math"

	"github.com/quantlab/silverquant/market"
)

// SMA is the simple moving average of the last period closes.
func SMA(bars []market.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period, len(bars))
	}

	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += bars[i].Close
	}
	return sum / float64(period), nil
}

// StdDev is the sample standard deviation of the last period closes.
func StdDev(bars []market.Bar, period int) (float64, error) {
	if period < 2 {
		return 0, fmt.Errorf("period must be at least 2, got %d", period)
	}
	if len(bars) < period {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period, len(bars))
	}

	mean, _ := SMA(bars, period)
	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		d := bars[i].Close - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(period-1)), nil
}

// RSI is the relative strength index over the last period close deltas,
// using simple averages of gains and losses.
func RSI(bars []market.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period+1 {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period+1, len(bars))
	}

	var gain, loss float64
	for i := len(bars) - period; i < len(bars); i++ {
		delta := bars[i].Close - bars[i-1].Close
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	gain /= float64(period)
	loss /= float64(period)

	if loss == 0 {
		return 100, nil
	}
	rs := gain / loss
	return 100 - 100/(1+rs), nil
}

// Bollinger returns the middle, upper and lower Bollinger bands:
// SMA(period) +/- k sample standard deviations.
func Bollinger(bars []market.Bar, period int, k float64) (middle, upper, lower float64, err error) {
	middle, err = SMA(bars, period)
	if err != nil {
		return 0, 0, 0, err
	}
	sd, err := StdDev(bars, period)
	if err != nil {
		return 0, 0, 0, err
	}
	return middle, middle + k*sd, middle - k*sd, nil
}

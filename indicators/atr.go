package indicators

import (
	"fmt"
	"math"

	"github.com/quantlab/silverquant/market"
)

func trueRange(cur, prev market.Bar) float64 {
	a := cur.High - cur.Low
	b := math.Abs(cur.High - prev.Close)
	c := math.Abs(cur.Low - prev.Close)
	return math.Max(a, math.Max(b, c))
}

// ATR is the average true range: the rolling mean of the last period
// true ranges. Needs period+1 bars because the true range references
// the previous close.
func ATR(bars []market.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period+1 {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period+1, len(bars))
	}

	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += trueRange(bars[i], bars[i-1])
	}
	return sum / float64(period), nil
}

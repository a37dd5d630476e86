package market

import (
	"fmt"
	"math"
	"time"
)

// Bar is one OHLCV price sample for a fixed time interval.
// Bars are produced externally and never mutated once loaded.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Validate checks that every price field is finite and non-negative.
func (b Bar) Validate() error {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("bar at %s: invalid value %v", b.Time.Format(time.RFC3339), v)
		}
	}
	if b.Time.IsZero() {
		return fmt.Errorf("bar has zero timestamp")
	}
	return nil
}

// ValidateBars checks each bar and that timestamps are non-decreasing.
func ValidateBars(bars []Bar) error {
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return err
		}
		if i > 0 && b.Time.Before(bars[i-1].Time) {
			return fmt.Errorf("bars out of order at index %d: %s before %s",
				i, b.Time.Format(time.RFC3339), bars[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// FilterRange returns the bars whose timestamps fall in [start, end].
// A zero start or end leaves that side unbounded.
func FilterRange(bars []Bar, start, end time.Time) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if !start.IsZero() && b.Time.Before(start) {
			continue
		}
		if !end.IsZero() && b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Package quotes supplies real-time quotes for paper trading and the
// signal monitor. Backtests never touch it; they replay bars from disk.
package quotes

import (
	"context"
	"time"

	"github.com/quantlab/silverquant/market"
)

// Quote is one real-time snapshot of the current (partial) bar.
type Quote struct {
	Symbol string    `json:"symbol"`
	Time   time.Time `json:"timestamp"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Price  float64   `json:"price"`
	Volume float64   `json:"volume"`
}

// Bar converts the quote to a bar with the last price as the close, so
// it can be appended to history for incremental signal evaluation.
func (q Quote) Bar() market.Bar {
	return market.Bar{
		Time:   q.Time,
		Open:   q.Open,
		High:   q.High,
		Low:    q.Low,
		Close:  q.Price,
		Volume: q.Volume,
	}
}

// Source yields the latest quote for a symbol.
type Source interface {
	Latest(ctx context.Context, symbol string) (Quote, error)
	Close() error
}

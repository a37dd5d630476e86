// Package journal persists trade records and equity snapshots.
package journal

import "time"

// TradeRecord is one closed round trip as written to storage.
type TradeRecord struct {
	TradeID    string
	Symbol     string
	Side       string
	Quantity   int
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	GrossPnL   float64
	Commission float64
	Reason     string
}

// EquityRecord is one equity-curve sample.
type EquityRecord struct {
	Time   time.Time
	Cash   float64
	Equity float64
	Action string
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}

// Nop discards everything. Used where persistence is not wanted,
// e.g. unit tests and throwaway backtests.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error   { return nil }
func (Nop) RecordEquity(EquityRecord) error { return nil }
func (Nop) Close() error                    { return nil }

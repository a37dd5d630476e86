package exchange

import "time"

// ExitReason records why a round trip was closed.
type ExitReason string

const (
	ReasonSignalReverse ExitReason = "signal_reverse"
	ReasonStopLoss      ExitReason = "stop_loss"
	ReasonEndOfData     ExitReason = "end_of_data"
	ReasonManualClose   ExitReason = "manual_close"
)

// Trade is an immutable completed round trip. It is created when a
// position closes and never mutated afterwards.
type Trade struct {
	ID         string
	Side       Side
	Quantity   int
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	GrossPnL   float64
	Commission float64 // open + close commission
	Reason     ExitReason
}

// NetPnL is the round trip's profit after commission.
func (t Trade) NetPnL() float64 { return t.GrossPnL - t.Commission }

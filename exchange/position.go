package exchange

import "time"

// Side of a position.
type Side int8

const (
	Flat Side = iota
	Long
	Short
)

func (s Side) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "FLAT"
	}
}

// sign is +1 for long, -1 for short, 0 for flat.
func (s Side) sign() float64 {
	switch s {
	case Long:
		return 1
	case Short:
		return -1
	default:
		return 0
	}
}

// Position is the account's current open position. Invariant:
// Side == Flat exactly when Quantity == 0. Mutated only through the
// account's open/close paths.
type Position struct {
	Side       Side
	Quantity   int // lots, >= 0
	EntryPrice float64
	EntryTime  time.Time
	StopLoss   *float64

	// commission charged at open, folded into the Trade at close
	openCommission float64
}

func (p Position) IsOpen() bool { return p.Side != Flat }

// stopHit reports whether price breaches the stop-loss for this side.
func (p Position) stopHit(price float64) bool {
	if !p.IsOpen() || p.StopLoss == nil {
		return false
	}
	if p.Side == Long {
		return price <= *p.StopLoss
	}
	return price >= *p.StopLoss
}

package exchange

import (
	"time"

	"github.com/quantlab/silverquant/journal"
)

// Snapshot exports the account state for persistence between paper
// trading sessions.
func (a *Account) Snapshot() journal.AccountSnapshot {
	s := journal.AccountSnapshot{
		SavedAt:        time.Now(),
		InitialCapital: a.InitialCapital,
		Cash:           a.Cash,
		OpensByDay:     make(map[string]int, len(a.opensByDay)),
	}
	for k, v := range a.opensByDay {
		s.OpensByDay[k] = v
	}
	if a.Position.IsOpen() {
		p := a.Position
		s.Position = &journal.PositionSnapshot{
			Side:           p.Side.String(),
			Quantity:       p.Quantity,
			EntryPrice:     p.EntryPrice,
			EntryTime:      p.EntryTime,
			StopLoss:       p.StopLoss,
			OpenCommission: p.openCommission,
		}
	}
	return s
}

// RestoreAccount rebuilds an account from a snapshot. The closed-trade
// history is not carried over; it lives in the journal.
func RestoreAccount(s journal.AccountSnapshot, spec ContractSpec) *Account {
	a := NewAccount(s.InitialCapital, spec)
	a.Cash = s.Cash
	for k, v := range s.OpensByDay {
		a.opensByDay[k] = v
	}
	if s.Position != nil {
		side := Flat
		switch s.Position.Side {
		case Long.String():
			side = Long
		case Short.String():
			side = Short
		}
		a.Position = Position{
			Side:           side,
			Quantity:       s.Position.Quantity,
			EntryPrice:     s.Position.EntryPrice,
			EntryTime:      s.Position.EntryTime,
			StopLoss:       s.Position.StopLoss,
			openCommission: s.Position.OpenCommission,
		}
	}
	return a
}

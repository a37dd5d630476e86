package exchange

import (
	"errors"
	"fmt"
	"time"

	"github.com/quantlab/silverquant/pkg/id"
)

var (
	// ErrInsufficientMargin rejects an open whose margin requirement
	// plus commission exceeds available cash. Recoverable: the
	// simulator reports the open as rejected and the run continues.
	ErrInsufficientMargin = errors.New("exchange: insufficient margin")

	// ErrNoOpenPosition rejects a close on a flat account. The state
	// machine never closes while flat, so seeing this is a defect.
	ErrNoOpenPosition = errors.New("exchange: no open position")
)

// ContractSpec holds the futures contract parameters. The defaults are
// the Shanghai silver contract: 15 kg per lot, 12% margin, 0.005%
// commission per side.
type ContractSpec struct {
	Unit           float64 // contract multiplier (kg per lot)
	MarginRatio    float64
	CommissionRate float64
}

// Account owns cash, the current position, the closed-trade history and
// the per-day open counts. All mutation goes through OpenPosition and
// ClosePosition so cash, margin and equity cannot silently diverge.
type Account struct {
	InitialCapital float64
	Cash           float64
	Position       Position
	Trades         []Trade

	Spec ContractSpec

	opensByDay map[string]int
}

func NewAccount(initialCapital float64, spec ContractSpec) *Account {
	return &Account{
		InitialCapital: initialCapital,
		Cash:           initialCapital,
		Spec:           spec,
		opensByDay:     make(map[string]int),
	}
}

// Equity is cash plus the unrealized P&L of the open position at the
// given price. Pure: no state is touched.
func (a *Account) Equity(price float64) float64 {
	if !a.Position.IsOpen() {
		return a.Cash
	}
	p := a.Position
	unrealized := (price - p.EntryPrice) * float64(p.Quantity) * a.Spec.Unit * p.Side.sign()
	return a.Cash + unrealized
}

// OpensOn returns how many positions were opened on t's date.
func (a *Account) OpensOn(t time.Time) int {
	return a.opensByDay[dayKey(t)]
}

// OpenPosition opens a new position after checking margin capacity.
// Margin is a capacity check against cash, not a deduction: only the
// commission leaves cash at open, P&L settles at close.
func (a *Account) OpenPosition(side Side, quantity int, price float64, t time.Time, stopLoss *float64) error {
	if side == Flat || quantity <= 0 {
		return fmt.Errorf("exchange: invalid open: side=%s quantity=%d", side, quantity)
	}
	if a.Position.IsOpen() {
		return fmt.Errorf("exchange: position already open")
	}

	notional := float64(quantity) * a.Spec.Unit * price
	margin := notional * a.Spec.MarginRatio
	commission := notional * a.Spec.CommissionRate

	if margin+commission > a.Cash {
		return fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientMargin, margin+commission, a.Cash)
	}

	a.Cash -= commission
	a.Position = Position{
		Side:           side,
		Quantity:       quantity,
		EntryPrice:     price,
		EntryTime:      t,
		StopLoss:       stopLoss,
		openCommission: commission,
	}
	a.opensByDay[dayKey(t)]++
	return nil
}

// ClosePosition settles the open position at price, credits the gross
// P&L, deducts the closing commission, appends the immutable Trade and
// resets the position to flat.
func (a *Account) ClosePosition(t time.Time, price float64, reason ExitReason) (Trade, error) {
	if !a.Position.IsOpen() {
		return Trade{}, ErrNoOpenPosition
	}

	p := a.Position
	gross := (price - p.EntryPrice) * float64(p.Quantity) * a.Spec.Unit * p.Side.sign()
	closeCommission := float64(p.Quantity) * a.Spec.Unit * price * a.Spec.CommissionRate

	a.Cash += gross - closeCommission

	trade := Trade{
		ID:         id.New(),
		Side:       p.Side,
		Quantity:   p.Quantity,
		EntryTime:  p.EntryTime,
		ExitTime:   t,
		EntryPrice: p.EntryPrice,
		ExitPrice:  price,
		GrossPnL:   gross,
		Commission: p.openCommission + closeCommission,
		Reason:     reason,
	}
	a.Trades = append(a.Trades, trade)
	a.Position = Position{}
	return trade, nil
}

// Stats summarizes the account, derived purely from the trade history
// and current equity.
type Stats struct {
	InitialCapital  float64
	CurrentEquity   float64
	TotalReturnPct  float64
	TotalTrades     int
	WinRatePct      float64
	AvgWin          float64
	AvgLoss         float64
	NetPnL          float64
	TotalCommission float64
}

func (a *Account) Stats(price float64) Stats {
	s := Stats{
		InitialCapital: a.InitialCapital,
		CurrentEquity:  a.Equity(price),
		TotalTrades:    len(a.Trades),
	}
	if a.InitialCapital > 0 {
		s.TotalReturnPct = (s.CurrentEquity/a.InitialCapital - 1) * 100
	}

	var wins, losses int
	var winSum, lossSum float64
	for _, tr := range a.Trades {
		net := tr.NetPnL()
		s.NetPnL += net
		s.TotalCommission += tr.Commission
		if net > 0 {
			wins++
			winSum += net
		} else {
			losses++
			lossSum += net
		}
	}
	if s.TotalTrades > 0 {
		s.WinRatePct = float64(wins) / float64(s.TotalTrades) * 100
	}
	if wins > 0 {
		s.AvgWin = winSum / float64(wins)
	}
	if losses > 0 {
		s.AvgLoss = lossSum / float64(losses)
	}
	return s
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

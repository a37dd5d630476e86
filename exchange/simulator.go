package exchange

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/quantlab/silverquant/journal"
	"github.com/quantlab/silverquant/market"
	"github.com/quantlab/silverquant/strategy"
)

// Action is what the simulator did with a signal on one bar.
type Action string

const (
	ActionNone           Action = "NONE"
	ActionOpenLong       Action = "OPEN_LONG"
	ActionOpenShort      Action = "OPEN_SHORT"
	ActionCloseLong      Action = "CLOSE_LONG"
	ActionCloseShort     Action = "CLOSE_SHORT"
	ActionReverseToLong  Action = "REVERSE_TO_LONG"
	ActionReverseToShort Action = "REVERSE_TO_SHORT"
	ActionStopLossClose  Action = "STOP_LOSS_CLOSE"
	ActionRejectedMargin Action = "REJECTED_MARGIN"
)

// Execution reports what one ProcessSignal call did. PnL and Commission
// cover only this call: the close leg's gross P&L, and whatever
// commission the executed legs were charged.
type Execution struct {
	Action     Action
	Price      float64
	Quantity   int
	PnL        float64
	Commission float64
}

// Config controls the simulator's policies.
type Config struct {
	Symbol          string
	OrderSize       int  // lots per entry
	MaxTradesPerDay int  // opens per calendar day; 0 disables the cap
	ReverseOnSignal bool // opposing signal reverses instead of just closing
}

// Simulator interprets per-bar signals against the account state. It is
// a strictly sequential state machine: one instance per run, no
// concurrent callers.
type Simulator struct {
	acct *Account
	cfg  Config
	jrnl journal.Journal
	log  *zap.Logger
}

func NewSimulator(acct *Account, cfg Config, jrnl journal.Journal, log *zap.Logger) *Simulator {
	if cfg.OrderSize <= 0 {
		cfg.OrderSize = 1
	}
	if jrnl == nil {
		jrnl = journal.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{acct: acct, cfg: cfg, jrnl: jrnl, log: log}
}

func (s *Simulator) Account() *Account { return s.acct }

// ProcessSignal resolves one bar, in priority order: stop-loss check,
// daily-limit check, then signal resolution. Ordinary rejections
// (daily cap, margin, same-direction repeat) are reported in the
// Execution, never as errors; an error here means the state machine
// itself is broken.
func (s *Simulator) ProcessSignal(bar market.Bar, sig strategy.Signal) (Execution, error) {
	price := sig.Price
	if price == 0 {
		price = bar.Close
	}

	// 1. Stop-loss takes precedence over the incoming signal: when it
	// fires, the signal is not applied on the same bar.
	if s.acct.Position.IsOpen() && s.stopBreached(bar) {
		fill := s.stopFillPrice(bar)
		exec, err := s.close(bar, fill, ReasonStopLoss, ActionStopLossClose)
		if err != nil {
			return Execution{}, err
		}
		return exec, nil
	}

	// 2. Daily limit only gates new opens; closes always go through.
	canOpen := s.cfg.MaxTradesPerDay <= 0 || s.acct.OpensOn(bar.Time) < s.cfg.MaxTradesPerDay

	// 3. Signal resolution.
	pos := s.acct.Position
	switch sig.Action {
	case strategy.Buy:
		switch pos.Side {
		case Flat:
			if !canOpen {
				return Execution{Action: ActionNone, Price: price}, nil
			}
			return s.open(bar, Long, price, sig.StopLoss, ActionOpenLong)
		case Long:
			return Execution{Action: ActionNone, Price: price}, nil
		case Short:
			return s.reverse(bar, Long, price, sig.StopLoss, canOpen)
		}
	case strategy.Sell:
		switch pos.Side {
		case Flat:
			if !canOpen {
				return Execution{Action: ActionNone, Price: price}, nil
			}
			return s.open(bar, Short, price, sig.StopLoss, ActionOpenShort)
		case Short:
			return Execution{Action: ActionNone, Price: price}, nil
		case Long:
			return s.reverse(bar, Short, price, sig.StopLoss, canOpen)
		}
	}

	return Execution{Action: ActionNone, Price: price}, nil
}

// ForceClose flattens the account (end of data, cancellation). A flat
// account is a no-op, not an error.
func (s *Simulator) ForceClose(bar market.Bar, reason ExitReason) (Execution, error) {
	if !s.acct.Position.IsOpen() {
		return Execution{Action: ActionNone, Price: bar.Close}, nil
	}
	action := ActionCloseLong
	if s.acct.Position.Side == Short {
		action = ActionCloseShort
	}
	return s.close(bar, bar.Close, reason, action)
}

// stopBreached checks the stop against the bar's adverse extreme.
func (s *Simulator) stopBreached(bar market.Bar) bool {
	p := s.acct.Position
	if p.Side == Long {
		return p.stopHit(bar.Low)
	}
	return p.stopHit(bar.High)
}

// stopFillPrice fills at the stop level, or at the open when the bar
// gaps through the stop.
func (s *Simulator) stopFillPrice(bar market.Bar) float64 {
	p := s.acct.Position
	fill := *p.StopLoss
	if p.Side == Long && bar.Open < fill {
		fill = bar.Open
	}
	if p.Side == Short && bar.Open > fill {
		fill = bar.Open
	}
	return fill
}

func (s *Simulator) open(bar market.Bar, side Side, price float64, stopLoss *float64, action Action) (Execution, error) {
	qty := s.cfg.OrderSize
	err := s.acct.OpenPosition(side, qty, price, bar.Time, stopLoss)
	if errors.Is(err, ErrInsufficientMargin) {
		s.log.Warn("open rejected",
			zap.String("side", side.String()),
			zap.Float64("price", price),
			zap.Error(err))
		return Execution{Action: ActionRejectedMargin, Price: price}, nil
	}
	if err != nil {
		return Execution{}, fmt.Errorf("open %s: %w", side, err)
	}

	commission := float64(qty) * s.acct.Spec.Unit * price * s.acct.Spec.CommissionRate
	s.log.Debug("position opened",
		zap.String("side", side.String()),
		zap.Int("quantity", qty),
		zap.Float64("price", price))
	return Execution{Action: action, Price: price, Quantity: qty, Commission: commission}, nil
}

func (s *Simulator) close(bar market.Bar, price float64, reason ExitReason, action Action) (Execution, error) {
	qty := s.acct.Position.Quantity
	openCommission := s.acct.Position.openCommission

	trade, err := s.acct.ClosePosition(bar.Time, price, reason)
	if err != nil {
		return Execution{}, fmt.Errorf("close (%s): %w", reason, err)
	}
	s.recordTrade(trade)

	s.log.Debug("position closed",
		zap.String("reason", string(reason)),
		zap.Float64("price", price),
		zap.Float64("gross_pnl", trade.GrossPnL))
	return Execution{
		Action:     action,
		Price:      price,
		Quantity:   qty,
		PnL:        trade.GrossPnL,
		Commission: trade.Commission - openCommission,
	}, nil
}

// reverse closes the open position on an opposing signal and, policy
// and daily cap permitting, opens the opposite side. A margin rejection
// on the re-entry leg degrades to a plain close.
func (s *Simulator) reverse(bar market.Bar, side Side, price float64, stopLoss *float64, canOpen bool) (Execution, error) {
	closeAction := ActionCloseLong
	reverseAction := ActionReverseToShort
	if side == Long {
		closeAction = ActionCloseShort
		reverseAction = ActionReverseToLong
	}

	exec, err := s.close(bar, price, ReasonSignalReverse, closeAction)
	if err != nil {
		return Execution{}, err
	}
	if !s.cfg.ReverseOnSignal || !canOpen {
		return exec, nil
	}

	openExec, err := s.open(bar, side, price, stopLoss, reverseAction)
	if err != nil {
		return Execution{}, err
	}
	if openExec.Action == ActionRejectedMargin {
		return exec, nil
	}

	openExec.PnL = exec.PnL
	openExec.Commission += exec.Commission
	return openExec, nil
}

func (s *Simulator) recordTrade(t Trade) {
	err := s.jrnl.RecordTrade(journal.TradeRecord{
		TradeID:    t.ID,
		Symbol:     s.cfg.Symbol,
		Side:       t.Side.String(),
		Quantity:   t.Quantity,
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		EntryTime:  t.EntryTime,
		ExitTime:   t.ExitTime,
		GrossPnL:   t.GrossPnL,
		Commission: t.Commission,
		Reason:     string(t.Reason),
	})
	if err != nil {
		s.log.Warn("journal trade", zap.Error(err))
	}
}

package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, side, quantity, entry_price, exit_price, entry_time, exit_time, gross_pnl, commission, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Symbol, t.Side, t.Quantity, t.EntryPrice,
		t.ExitPrice, t.EntryTime, t.ExitTime, t.GrossPnL, t.Commission, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (time, cash, equity, action)
		VALUES (?, ?, ?, ?)`,
		e.Time, e.Cash, e.Equity, e.Action,
	)
	return err
}

// ListTradesClosedBetween returns trades with exit_time in [start, end),
// ordered by exit time.
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, side, quantity, entry_price, exit_price, entry_time, exit_time, gross_pnl, commission, reason
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []TradeRecord
	for rows.Next() {
		var r TradeRecord
		if err := rows.Scan(
			&r.TradeID, &r.Symbol, &r.Side, &r.Quantity, &r.EntryPrice,
			&r.ExitPrice, &r.EntryTime, &r.ExitTime, &r.GrossPnL, &r.Commission, &r.Reason,
		); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// ListEquityBetween returns equity samples with time in [start, end),
// in insertion order.
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT time, cash, equity, action
		FROM equity
		WHERE time >= ? AND time < ?`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []EquityRecord
	for rows.Next() {
		var r EquityRecord
		if err := rows.Scan(&r.Time, &r.Cash, &r.Equity, &r.Action); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

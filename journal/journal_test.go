package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrade(exit time.Time) TradeRecord {
	return TradeRecord{
		TradeID:    "01HTESTTRADE0000000000000",
		Symbol:     "AG0",
		Side:       "LONG",
		Quantity:   2,
		EntryPrice: 100,
		ExitPrice:  110,
		EntryTime:  exit.Add(-2 * time.Hour),
		ExitTime:   exit,
		GrossPnL:   300,
		Commission: 0.1575,
		Reason:     "signal_reverse",
	}
}

func TestSQLiteTradeRoundTrip(t *testing.T) {
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.sqlite"))
	require.NoError(t, err)
	defer j.Close()

	exit := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(sampleTrade(exit)))

	recs, err := j.ListTradesClosedBetween(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	got := recs[0]
	assert.Equal(t, "AG0", got.Symbol)
	assert.Equal(t, "LONG", got.Side)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, 300.0, got.GrossPnL)
	assert.Equal(t, "signal_reverse", got.Reason)
	assert.True(t, got.ExitTime.Equal(exit))
}

func TestSQLiteTradeRangeExcludes(t *testing.T) {
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.sqlite"))
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.RecordTrade(sampleTrade(time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC))))

	recs, err := j.ListTradesClosedBetween(
		time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSQLiteTradesOrderedByExit(t *testing.T) {
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.sqlite"))
	require.NoError(t, err)
	defer j.Close()

	late := sampleTrade(time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC))
	late.TradeID = "01HTESTTRADE0000000000002"
	early := sampleTrade(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	early.TradeID = "01HTESTTRADE0000000000001"

	require.NoError(t, j.RecordTrade(late))
	require.NoError(t, j.RecordTrade(early))

	recs, err := j.ListTradesClosedBetween(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, early.TradeID, recs[0].TradeID)
	assert.Equal(t, late.TradeID, recs[1].TradeID)
}

func TestSQLiteEquityRoundTrip(t *testing.T) {
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.sqlite"))
	require.NoError(t, err)
	defer j.Close()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordEquity(EquityRecord{
			Time:   base.Add(time.Duration(i) * 5 * time.Minute),
			Cash:   1_000_000,
			Equity: 1_000_000 + float64(i)*100,
			Action: "NONE",
		}))
	}

	recs, err := j.ListEquityBetween(base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 1_000_200.0, recs[2].Equity)
}

func TestCSVJournal(t *testing.T) {
	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)

	exit := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(sampleTrade(exit)))
	require.NoError(t, j.RecordEquity(EquityRecord{
		Time: exit, Cash: 1_000_000, Equity: 1_000_300, Action: "CLOSE_LONG",
	}))
	require.NoError(t, j.Close())

	tf, err := os.Open(tradesPath)
	require.NoError(t, err)
	defer tf.Close()

	rows, err := csv.NewReader(tf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2) // header + one trade
	assert.Equal(t, "trade_id", rows[0][0])
	assert.Equal(t, "AG0", rows[1][1])
	assert.Equal(t, "signal_reverse", rows[1][10])

	ef, err := os.Open(equityPath)
	require.NoError(t, err)
	defer ef.Close()

	rows, err = csv.NewReader(ef).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CLOSE_LONG", rows[1][3])
}

func TestAccountSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "account.json")
	stop := 95.0

	want := AccountSnapshot{
		SavedAt:        time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC),
		InitialCapital: 1_000_000,
		Cash:           999_850,
		Position: &PositionSnapshot{
			Side:           "LONG",
			Quantity:       1,
			EntryPrice:     100,
			EntryTime:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			StopLoss:       &stop,
			OpenCommission: 0.075,
		},
		OpensByDay: map[string]int{"2024-03-01": 1},
	}
	require.NoError(t, SaveAccountSnapshot(path, want))

	got, err := LoadAccountSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, want.Cash, got.Cash)
	require.NotNil(t, got.Position)
	assert.Equal(t, "LONG", got.Position.Side)
	require.NotNil(t, got.Position.StopLoss)
	assert.Equal(t, 95.0, *got.Position.StopLoss)
	assert.Equal(t, 0.075, got.Position.OpenCommission)
	assert.Equal(t, 1, got.OpensByDay["2024-03-01"])
}

func TestLoadAccountSnapshotMissing(t *testing.T) {
	_, err := LoadAccountSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

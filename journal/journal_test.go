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

func sampleOrder(id string, at time.Time) OrderRecord {
	return OrderRecord{
		RequestID:     id,
		Time:          at,
		Symbol:        "EURUSD",
		Direction:     "buy",
		Volume:        0.10,
		Price:         1.08452,
		StopLoss:      1.07952,
		TakeProfit:    1.09452,
		Comment:       "AutoTrade",
		OrderID:       500123,
		DealID:        700456,
		Retcode:       10009,
		RetcodeText:   "Request completed",
		ResultComment: "done",
	}
}

func TestSQLiteJournal_OrderRoundTrip(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	at := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	require.NoError(t, j.RecordOrder(sampleOrder("01ARZ3NDEKTSV4RRFFQ69G5FAV", at)))

	got, err := j.GetOrder("01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", got.Symbol)
	assert.Equal(t, "buy", got.Direction)
	assert.InDelta(t, 1.08452, got.Price, 1e-9)
	assert.Equal(t, 10009, got.Retcode)
	assert.True(t, got.Time.Equal(at))
}

func TestSQLiteJournal_GetOrderMissing(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	_, err = j.GetOrder("nope")
	assert.ErrorContains(t, err, "not found")
}

func TestSQLiteJournal_ListOrdersBetween(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		rec := sampleOrder(id, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, j.RecordOrder(rec))
	}

	got, err := j.ListOrdersBetween(base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].RequestID)
	assert.Equal(t, "b", got[1].RequestID)
}

func TestSQLiteJournal_Equity(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	assert.NoError(t, j.RecordEquity(EquitySnapshot{
		Time:           time.Now(),
		Balance:        10000,
		Equity:         10120.50,
		MarginFree:     9800,
		FloatingProfit: 120.50,
	}))
}

func TestCSVJournal_WritesRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ordersPath := filepath.Join(dir, "orders.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(ordersPath, equityPath)
	require.NoError(t, err)

	at := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	require.NoError(t, j.RecordOrder(sampleOrder("x1", at)))
	require.NoError(t, j.RecordEquity(EquitySnapshot{Time: at, Balance: 10000, Equity: 10050}))
	require.NoError(t, j.Close())

	of, err := os.Open(ordersPath)
	require.NoError(t, err)
	defer of.Close()

	rows, err := csv.NewReader(of).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "request_id", rows[0][0])
	assert.Equal(t, "x1", rows[1][0])
	assert.Equal(t, "EURUSD", rows[1][2])
	assert.Equal(t, "10009", rows[1][11])

	ef, err := os.Open(equityPath)
	require.NoError(t, err)
	defer ef.Close()

	erows, err := csv.NewReader(ef).ReadAll()
	require.NoError(t, err)
	require.Len(t, erows, 2)
	assert.Equal(t, "10000.000000", erows[1][1])
}

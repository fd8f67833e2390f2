package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/statikfintechllc/personal-pennies/internal/analytics"
	"github.com/statikfintechllc/personal-pennies/internal/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_FreshDirectory(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	trades, err := st.Trades()
	require.NoError(t, err)
	assert.Empty(t, trades)

	acct, err := st.Account()
	require.NoError(t, err)
	assert.Equal(t, journal.AccountConfig{}, acct)

	res, err := st.Result()
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestFileStore_TradesRoundTrip(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	stop := 95.0
	trades := []journal.Trade{
		{
			ID:             1,
			Symbol:         "AAPL",
			EntryDate:      "2024-01-10",
			EntryTime:      "09:31:00",
			ExitDate:       "2024-01-11",
			EntryPrice:     100,
			ExitPrice:      105,
			Size:           10,
			Direction:      journal.DirectionLong,
			ProfitCurrency: 50,
			ProfitPercent:  5,
			StopPrice:      &stop,
			Strategies:     []string{"breakout"},
		},
		{ID: 2, Symbol: "TSLA", EntryDate: "2024-01-12", ExitDate: "2024-01-12"},
	}

	require.NoError(t, st.SaveTrades(trades))

	got, err := st.Trades()
	require.NoError(t, err)
	assert.Equal(t, trades, got)
}

func TestFileStore_AccountRoundTrip(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	acct := journal.AccountConfig{
		StartingBalance: 10_000,
		Deposits:        []journal.CashFlow{{Amount: 500, Date: "2024-02-01", Note: "bonus"}},
	}

	require.NoError(t, st.SaveAccount(acct))

	got, err := st.Account()
	require.NoError(t, err)
	assert.Equal(t, acct, got)
}

func TestFileStore_ResultRoundTrip(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	res := analytics.Result{
		Expectancy:   18,
		ProfitFactor: 2.5,
		ByStrategy:   map[string]analytics.TagStats{"breakout": {TotalTrades: 3}},
		GeneratedAt:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, st.SaveResult(&res))

	got, err := st.Result()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, res.Expectancy, got.Expectancy)
	assert.Equal(t, res.ByStrategy, got.ByStrategy)
	assert.True(t, res.GeneratedAt.Equal(got.GeneratedAt))
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "trades.json"), []byte("{not json"), 0o644))

	_, err = st.Trades()
	assert.Error(t, err)
}

package journal

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(symbol, side string, day int, qty, price float64) Transaction {
	return Transaction{
		Symbol: symbol,
		Side:   side,
		Time:   time.Date(2024, 5, day, 10, 0, 0, 0, time.UTC),
		Qty:    qty,
		Price:  price,
	}
}

func TestMatcher_Sequential(t *testing.T) {
	m := NewMatcher(nil, MatchSequential)

	trades := m.Match([]Transaction{
		tx("AAPL", SideSell, 3, 10, 110),
		tx("AAPL", SideBuy, 1, 10, 100),
		tx("AAPL", SideBuy, 2, 5, 105),
		tx("AAPL", SideSell, 4, 5, 120),
		tx("AAPL", SideBuy, 5, 7, 130), // open position, no round trip
	})

	require.Len(t, trades, 2)

	assert.Equal(t, "2024-05-01", trades[0].EntryDate)
	assert.Equal(t, "2024-05-03", trades[0].ExitDate)
	assert.Equal(t, 100.0, trades[0].EntryPrice)
	assert.Equal(t, 110.0, trades[0].ExitPrice)
	assert.Equal(t, 10.0, trades[0].Size)
	assert.Equal(t, 100.0, trades[0].ProfitCurrency)
	assert.Equal(t, 10.0, trades[0].ProfitPercent)

	assert.Equal(t, "2024-05-02", trades[1].EntryDate)
	assert.Equal(t, "2024-05-04", trades[1].ExitDate)
	assert.Equal(t, 5.0, trades[1].Size)
}

func TestMatcher_PairCountIsMinOfSides(t *testing.T) {
	tbl := []struct {
		buys  int
		sells int
		want  int
	}{
		{buys: 3, sells: 3, want: 3},
		{buys: 5, sells: 2, want: 2},
		{buys: 0, sells: 4, want: 0},
		{buys: 4, sells: 0, want: 0},
		{buys: 0, sells: 0, want: 0},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			var txs []Transaction
			for d := 0; d < c.buys; d++ {
				txs = append(txs, tx("MSFT", SideBuy, d+1, 1, 100))
			}
			for d := 0; d < c.sells; d++ {
				txs = append(txs, tx("MSFT", SideSell, d+10, 1, 110))
			}

			m := NewMatcher(nil, MatchSequential)
			assert.Len(t, m.Match(txs), c.want)
		})
	}
}

func TestMatcher_GroupsBySymbolAndAssignsIDs(t *testing.T) {
	m := NewMatcher(nil, MatchSequential)

	trades := m.Match([]Transaction{
		tx("TSLA", SideBuy, 1, 1, 200),
		tx("AAPL", SideBuy, 1, 1, 100),
		tx("TSLA", SideSell, 2, 1, 210),
		tx("AAPL", SideSell, 2, 1, 105),
	})

	require.Len(t, trades, 2)
	assert.Equal(t, "AAPL", trades[0].Symbol)
	assert.Equal(t, "TSLA", trades[1].Symbol)
	assert.Equal(t, 1, trades[0].ID)
	assert.Equal(t, 2, trades[1].ID)
}

func TestMatcher_FIFO_SplitsLots(t *testing.T) {
	m := NewMatcher(nil, MatchFIFO)

	// one closing of 15 spans a 10-lot and half of a 10-lot
	trades := m.Match([]Transaction{
		tx("NVDA", SideBuy, 1, 10, 100),
		tx("NVDA", SideBuy, 2, 10, 110),
		tx("NVDA", SideSell, 3, 15, 120),
	})

	require.Len(t, trades, 2)

	assert.Equal(t, 10.0, trades[0].Size)
	assert.Equal(t, 100.0, trades[0].EntryPrice)
	assert.Equal(t, 200.0, trades[0].ProfitCurrency)

	assert.Equal(t, 5.0, trades[1].Size)
	assert.Equal(t, 110.0, trades[1].EntryPrice)
	assert.Equal(t, 50.0, trades[1].ProfitCurrency)
}

func TestMatcher_FIFO_PartialCloseLeavesLotOpen(t *testing.T) {
	m := NewMatcher(nil, MatchFIFO)

	trades := m.Match([]Transaction{
		tx("NVDA", SideBuy, 1, 10, 100),
		tx("NVDA", SideSell, 2, 4, 105),
		tx("NVDA", SideSell, 3, 6, 110),
	})

	require.Len(t, trades, 2)
	assert.Equal(t, 4.0, trades[0].Size)
	assert.Equal(t, "2024-05-02", trades[0].ExitDate)
	assert.Equal(t, 6.0, trades[1].Size)
	assert.Equal(t, "2024-05-03", trades[1].ExitDate)
	assert.Equal(t, 100.0, trades[1].EntryPrice)
}

func TestProfit(t *testing.T) {
	tbl := []struct {
		direction    string
		entry        float64
		exit         float64
		size         float64
		wantCurrency float64
		wantPercent  float64
	}{
		{DirectionLong, 100, 110, 10, 100, 10},
		{DirectionLong, 110, 100, 10, -100, -9.09},
		{DirectionShort, 110, 100, 10, 100, 9.09},
		{DirectionShort, 100, 110, 10, -100, -10},
		{DirectionLong, 0.1, 0.3, 3, 0.6, 200},
		{DirectionLong, 0, 10, 5, 50, 0},
		{DirectionLong, 100, 100, 10, 0, 0},
		{DirectionLong, 100, 110, 0, 0, 0},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			currency, percent := Profit(c.direction, c.entry, c.exit, c.size)
			assert.Equal(t, c.wantCurrency, currency)
			assert.Equal(t, c.wantPercent, percent)
		})
	}
}

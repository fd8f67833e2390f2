package broker

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/statikfintechllc/personal-pennies/internal/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalizer_ParseRobinhood(t *testing.T) {
	export := strings.Join([]string{
		"Activity Date,Process Date,Settle Date,Instrument,Description,Trans Code,Quantity,Price,Amount",
		`3/15/2024,3/15/2024,3/18/2024,AAPL,Apple Inc,Buy,10,$171.50,"($1,715.00)"`,
		`3/18/2024,3/18/2024,3/20/2024,AAPL,Apple Inc,Sell,10,$176.20,"$1,762.00"`,
		"3/19/2024,3/19/2024,3/21/2024,AAPL,Apple Inc,CDIV,,,$2.40",
	}, "\n")

	n := NewNormalizer(discardLogger())
	txs, err := n.Parse(strings.NewReader(export), FormatUnknown)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "AAPL", txs[0].Symbol)
	assert.Equal(t, journal.SideBuy, txs[0].Side)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), txs[0].Time)
	assert.Equal(t, 10.0, txs[0].Qty)
	assert.Equal(t, 171.50, txs[0].Price)
	assert.Equal(t, "robinhood", txs[0].Source)

	assert.Equal(t, journal.SideSell, txs[1].Side)
	assert.Equal(t, 176.20, txs[1].Price)
}

func TestNormalizer_ParseWebullSkipsUnfilled(t *testing.T) {
	export := strings.Join([]string{
		"Symbol,Side,Status,Filled,Total Qty,Avg Price,Placed Time,Filled Time",
		"TSLA,Buy,Filled,5,5,180.00,03/01/2024 09:30:00,03/01/2024 09:30:12",
		"TSLA,Sell,Cancelled,0,5,190.00,03/02/2024 10:00:00,",
		"TSLA,Sell,Filled,5,5,185.40,03/04/2024 11:00:00,03/04/2024 11:00:03",
	}, "\n")

	n := NewNormalizer(discardLogger())
	txs, err := n.Parse(strings.NewReader(export), FormatUnknown)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	// the quantity comes from "Filled", not "Filled Time"
	assert.Equal(t, 5.0, txs[0].Qty)
	assert.Equal(t, 180.0, txs[0].Price)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 12, 0, time.UTC), txs[0].Time)
	assert.Equal(t, journal.SideSell, txs[1].Side)
}

func TestNormalizer_ParseSchwabCommission(t *testing.T) {
	export := strings.Join([]string{
		"Date,Action,Symbol,Description,Quantity,Price,Fees & Comm,Amount",
		`03/05/2024,Buy,MSFT,Microsoft Corp,8,$402.11,$0.65,"($3,217.53)"`,
		`03/08/2024,Sell,MSFT,Microsoft Corp,8,$410.00,$0.65,"$3,279.35"`,
	}, "\n")

	n := NewNormalizer(discardLogger())
	txs, err := n.Parse(strings.NewReader(export), FormatUnknown)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "schwab", txs[0].Source)
	assert.Equal(t, 0.65, txs[0].Commission)
	assert.Equal(t, 402.11, txs[0].Price)
}

func TestNormalizer_ParseIBKR(t *testing.T) {
	export := strings.Join([]string{
		"Symbol,Date/Time,Quantity,T. Price,Proceeds,Comm/Fee,Buy/Sell",
		`NVDA,"2024-03-05, 09:31:00",4,850.10,"-3,400.40",-1.05,BUY`,
		`NVDA,"2024-03-08, 15:59:30",4,870.00,"3,480.00",-1.05,SELL`,
	}, "\n")

	n := NewNormalizer(discardLogger())
	txs, err := n.Parse(strings.NewReader(export), FormatUnknown)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "ibkr", txs[0].Source)
	assert.Equal(t, journal.SideBuy, txs[0].Side)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 31, 0, 0, time.UTC), txs[0].Time)
	assert.Equal(t, 850.10, txs[0].Price)
	assert.Equal(t, -1.05, txs[0].Commission)
	assert.Equal(t, journal.SideSell, txs[1].Side)
}

func TestNormalizer_HintOverridesDetection(t *testing.T) {
	// too few indicators for detection, but the hint still resolves
	// the columns that are present
	rows := [][]string{
		{"Instrument", "Activity Date", "Trans Code"},
		{"nvda", "3/05/2024", "Buy"},
	}

	n := NewNormalizer(discardLogger())
	_, err := n.NormalizeRows(rows, FormatUnknown)
	assert.ErrorIs(t, err, ErrUnknownSource)

	txs, err := n.NormalizeRows(rows, FormatRobinhood)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "NVDA", txs[0].Symbol)
	assert.Equal(t, "robinhood", txs[0].Source)
}

func TestNormalizer_UnknownFormat(t *testing.T) {
	n := NewNormalizer(discardLogger())

	_, err := n.Parse(strings.NewReader("a,b,c\n1,2,3\n"), FormatUnknown)
	assert.ErrorIs(t, err, ErrUnknownSource)

	_, err = n.NormalizeRows(nil, FormatUnknown)
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestNormalizer_SkipRules(t *testing.T) {
	header := []string{"Activity Date", "Process Date", "Settle Date", "Instrument", "Trans Code", "Quantity", "Price"}

	tbl := []struct {
		row  []string
		want int
	}{
		// dividends, transfers and other non-trade codes
		{[]string{"3/15/2024", "", "", "AAPL", "CDIV", "", "1.25"}, 0},
		// missing symbol
		{[]string{"3/15/2024", "", "", "", "Buy", "10", "100"}, 0},
		// unparseable date
		{[]string{"someday", "", "", "AAPL", "Buy", "10", "100"}, 0},
		// short row
		{[]string{"3/15/2024"}, 0},
		{[]string{"3/15/2024", "", "", "AAPL", "Buy", "10", "100"}, 1},
	}

	n := NewNormalizer(discardLogger())
	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			txs, err := n.NormalizeRows([][]string{header, c.row}, FormatUnknown)
			require.NoError(t, err)
			assert.Len(t, txs, c.want)
		})
	}
}

func TestParseMoney(t *testing.T) {
	tbl := []struct {
		in   string
		want float64
	}{
		{"171.50", 171.50},
		{"$171.50", 171.50},
		{"$1,715.00", 1715},
		{"(1,715.00)", -1715},
		{"($42.00)", -42},
		{"  12 ", 12},
		{"", 0},
		{"n/a", 0},
		{"--", 0},
	}

	for i, c := range tbl {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			assert.Equal(t, c.want, ParseMoney(c.in))
		})
	}
}

func TestFindColumn_PrefersExactMatch(t *testing.T) {
	header := []string{"Symbol", "Filled Time", "Filled", "Avg Price"}

	assert.Equal(t, 2, findColumn(header, "filled"))
	assert.Equal(t, 1, findColumn(header, "filled time"))
	assert.Equal(t, 3, findColumn(header, "avg price"))
	assert.Equal(t, -1, findColumn(header, "status"))
	assert.Equal(t, -1, findColumn(header, ""))
}

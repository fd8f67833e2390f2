package journal

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"
)

type MatchMode int

const (
	// MatchSequential pairs the i-th opening with the i-th closing per
	// symbol and drops the surplus. This mirrors the historical journal
	// behavior and is the default.
	MatchSequential MatchMode = iota
	// MatchFIFO carries partial quantities across openings: closings
	// consume the oldest open lots first, splitting lots when needed.
	MatchFIFO
)

// Matcher reconciles normalized transactions into round-trip trades.
type Matcher struct {
	Mode MatchMode

	log *slog.Logger
}

func NewMatcher(log *slog.Logger, mode MatchMode) *Matcher {
	return &Matcher{Mode: mode, log: log}
}

// Match groups transactions by symbol, orders each group by time and
// pairs openings with closings. Unmatched transactions are dropped, not
// reported: an open position simply has no round trip yet.
func (m *Matcher) Match(txs []Transaction) []Trade {
	bySymbol := make(map[string][]Transaction)
	var symbols []string
	for _, tx := range txs {
		if _, ok := bySymbol[tx.Symbol]; !ok {
			symbols = append(symbols, tx.Symbol)
		}
		bySymbol[tx.Symbol] = append(bySymbol[tx.Symbol], tx)
	}
	sort.Strings(symbols)

	var trades []Trade
	for _, symbol := range symbols {
		group := bySymbol[symbol]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Time.Before(group[j].Time)
		})

		var buys, sells []Transaction
		for _, tx := range group {
			switch tx.Side {
			case SideBuy:
				buys = append(buys, tx)
			case SideSell:
				sells = append(sells, tx)
			}
		}

		var matched []Trade
		if m.Mode == MatchFIFO {
			matched = m.pairFIFO(symbol, buys, sells)
		} else {
			matched = m.pairSequential(symbol, buys, sells)
		}
		trades = append(trades, matched...)
	}

	for i := range trades {
		trades[i].ID = i + 1
	}

	return trades
}

func (m *Matcher) pairSequential(symbol string, buys, sells []Transaction) []Trade {
	n := min(len(buys), len(sells))
	if dropped := len(buys) + len(sells) - 2*n; dropped > 0 && m.log != nil {
		m.log.Debug("dropping unmatched transactions",
			slog.String("symbol", symbol),
			slog.Int("count", dropped))
	}

	trades := make([]Trade, 0, n)
	for i := 0; i < n; i++ {
		trades = append(trades, m.makeTrade(symbol, buys[i], sells[i], buys[i].Qty))
	}

	return trades
}

// pairFIFO walks the closings against a queue of open lots, consuming
// the oldest remaining quantity first. A closing larger than the head
// lot spans several trades; a closing smaller than it leaves the rest
// of the lot open for the next closing.
func (m *Matcher) pairFIFO(symbol string, buys, sells []Transaction) []Trade {
	type lot struct {
		tx        Transaction
		remaining float64
	}

	lots := make([]lot, 0, len(buys))
	for _, b := range buys {
		lots = append(lots, lot{tx: b, remaining: b.Qty})
	}

	var trades []Trade
	head := 0
	for _, s := range sells {
		left := s.Qty
		for left > 0 && head < len(lots) {
			l := &lots[head]
			qty := min(left, l.remaining)
			if qty > 0 {
				trades = append(trades, m.makeTrade(symbol, l.tx, s, qty))
			}
			left -= qty
			l.remaining -= qty
			if l.remaining <= 0 {
				head++
			}
		}
		if left > 0 && m.log != nil {
			m.log.Debug("closing exceeds open quantity",
				slog.String("symbol", symbol),
				slog.Float64("unmatched_qty", left))
		}
	}

	return trades
}

func (m *Matcher) makeTrade(symbol string, open, close Transaction, size float64) Trade {
	t := Trade{
		Symbol:     symbol,
		EntryDate:  open.Time.Format("2006-01-02"),
		EntryTime:  open.Time.Format("15:04:05"),
		ExitDate:   close.Time.Format("2006-01-02"),
		ExitTime:   close.Time.Format("15:04:05"),
		EntryPrice: open.Price,
		ExitPrice:  close.Price,
		Size:       size,
		Direction:  DirectionLong,
		Broker:     open.Source,
	}
	t.ProfitCurrency, t.ProfitPercent = Profit(t.Direction, t.EntryPrice, t.ExitPrice, t.Size)

	return t
}

// Profit computes the realized currency and percentage profit for one
// round trip, both rounded to cents. The percentage is 0 when the entry
// price is not positive.
func Profit(direction string, entry, exit, size float64) (currency, percent float64) {
	e := decimal.NewFromFloat(entry)
	x := decimal.NewFromFloat(exit)
	s := decimal.NewFromFloat(size)

	var gross decimal.Decimal
	if direction == DirectionShort {
		gross = e.Sub(x).Mul(s)
	} else {
		gross = x.Sub(e).Mul(s)
	}

	currency, _ = gross.Round(2).Float64()

	cost := e.Mul(s)
	if entry <= 0 || cost.IsZero() {
		return currency, 0
	}

	percent, _ = gross.Div(cost).Mul(decimal.NewFromInt(100)).Round(2).Float64()

	return currency, percent
}

package journal

import (
	"sort"
	"time"
)

const (
	DirectionLong  = "long"
	DirectionShort = "short"

	SideBuy  = "buy"
	SideSell = "sell"
)

// Transaction is a single normalized fill extracted from a broker export.
// Transactions only live long enough to be matched into trades.
type Transaction struct {
	Symbol     string
	Time       time.Time
	Side       string
	Qty        float64
	Price      float64
	Commission float64
	Source     string
}

// Trade is one matched round trip: an opening fill paired with a closing
// fill in the same instrument. Dates and times are kept as the separate
// ISO date / HH:MM:SS strings the store and exports use.
type Trade struct {
	ID         int     `json:"id"`
	Symbol     string  `json:"symbol"`
	EntryDate  string  `json:"entry_date"`
	EntryTime  string  `json:"entry_time,omitempty"`
	ExitDate   string  `json:"exit_date"`
	ExitTime   string  `json:"exit_time,omitempty"`
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`
	Size       float64 `json:"size"`
	Direction  string  `json:"direction"`

	ProfitCurrency float64 `json:"profit_currency"`
	ProfitPercent  float64 `json:"profit_percent"`

	StopPrice   *float64 `json:"stop_price,omitempty"`
	TargetPrice *float64 `json:"target_price,omitempty"`
	RiskReward  *float64 `json:"risk_reward,omitempty"`

	Strategies       []string `json:"strategies,omitempty"`
	Setups           []string `json:"setups,omitempty"`
	Sessions         []string `json:"sessions,omitempty"`
	MarketConditions []string `json:"market_conditions,omitempty"`

	Broker string `json:"broker,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// EntryAt combines the entry date and time strings into a timestamp.
// A trade with an unparseable date reports the zero time.
func (t *Trade) EntryAt() time.Time {
	return combine(t.EntryDate, t.EntryTime)
}

// ExitAt combines the exit date and time strings into a timestamp.
func (t *Trade) ExitAt() time.Time {
	return combine(t.ExitDate, t.ExitTime)
}

// SortKey is the chronological ordering key used by analytics: exit
// timestamp when present, entry timestamp otherwise.
func (t *Trade) SortKey() time.Time {
	if at := t.ExitAt(); !at.IsZero() {
		return at
	}
	return t.EntryAt()
}

func combine(date, clock string) time.Time {
	if date == "" {
		return time.Time{}
	}

	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}
	}

	for _, layout := range []string{"15:04:05", "15:04"} {
		c, err := time.Parse(layout, clock)
		if err == nil {
			return d.Add(time.Duration(c.Hour())*time.Hour +
				time.Duration(c.Minute())*time.Minute +
				time.Duration(c.Second())*time.Second)
		}
	}

	return d
}

// SortByExit returns a chronological copy of the trades, ordered by
// exit timestamp with entry as the fallback. The input is not touched.
func SortByExit(trades []Trade) []Trade {
	sorted := make([]Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortKey().Before(sorted[j].SortKey())
	})
	return sorted
}

// CashFlow is a single deposit or withdrawal on the account.
type CashFlow struct {
	Amount float64 `json:"amount" yaml:"amount"`
	Date   string  `json:"date" yaml:"date"`
	Note   string  `json:"note,omitempty" yaml:"note,omitempty"`
}

// AccountConfig is the external account description every analytics run
// reads alongside the trade list. It is never written by this module.
type AccountConfig struct {
	StartingBalance float64    `json:"starting_balance" yaml:"starting_balance"`
	Deposits        []CashFlow `json:"deposits,omitempty" yaml:"deposits,omitempty"`
	Withdrawals     []CashFlow `json:"withdrawals,omitempty" yaml:"withdrawals,omitempty"`
}

// InitialCapital is the base all percentage metrics divide by:
// starting balance plus deposits minus withdrawals.
func (a *AccountConfig) InitialCapital() float64 {
	c := a.StartingBalance
	for _, d := range a.Deposits {
		c += d.Amount
	}
	for _, w := range a.Withdrawals {
		c -= w.Amount
	}
	return c
}

// TotalDeposits sums the deposit list.
func (a *AccountConfig) TotalDeposits() float64 {
	var sum float64
	for _, d := range a.Deposits {
		sum += d.Amount
	}
	return sum
}

package analytics

import (
	"math"
	"time"

	"github.com/statikfintechllc/personal-pennies/internal/journal"
)

// ProfitFactorCap is reported when there is profit but no loss volume
// to divide by. Downstream consumers treat it as "no losing trades yet"
// rather than an actual ratio.
const ProfitFactorCap = 999.99

// Aggregator computes the full Result from a trade list and account
// configuration. Compute is a pure function of its inputs: the same
// trades and account always yield the same metrics.
type Aggregator struct {
	// RiskFreeRate is subtracted from the mean percentage return in the
	// Sharpe ratio. Zero by default.
	RiskFreeRate float64

	// Now supplies the result timestamp; defaults to time.Now.
	Now func() time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Compute produces the metrics snapshot. Malformed individual trades
// never abort the run: a trade missing a field is excluded from the
// metrics that need that field and nothing else.
func (a *Aggregator) Compute(trades []journal.Trade, acct journal.AccountConfig) Result {
	sorted := journal.SortByExit(trades)

	res := Result{
		RMultipleDistribution: RMultipleDistribution{
			Labels: rBucketLabels,
			Data:   make([]int, len(rBucketLabels)),
		},
		DrawdownSeries: Series{Labels: []string{}, Values: []float64{}},
		ByStrategy:     map[string]TagStats{},
		BySetup:        map[string]TagStats{},
		BySession:      map[string]TagStats{},
		GeneratedAt:    a.now(),
	}

	res.Expectancy = expectancy(sorted)
	res.ProfitFactor = profitFactor(sorted)
	res.MaxWinStreak, res.MaxLossStreak = streaks(sorted)
	res.DrawdownSeries, res.MaxDrawdown = drawdownSeries(sorted)
	res.KellyCriterion = kelly(sorted)
	res.SharpeRatio = a.sharpe(sorted)
	res.RMultipleDistribution = rMultiples(sorted)

	res.ByStrategy = tagStats(sorted, func(t *journal.Trade) []string { return t.Strategies })
	res.BySetup = tagStats(sorted, func(t *journal.Trade) []string { return t.Setups })
	res.BySession = tagStats(sorted, func(t *journal.Trade) []string { return t.Sessions })

	res.Returns = returns(sorted, acct)
	res.Account = accountSummary(sorted, acct)
	if capital := acct.InitialCapital(); capital > 0 {
		res.MaxDrawdownPercent = round2(res.MaxDrawdown / capital * 100)
	}

	return res
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

// buckets partitions trades into winners and losers by realized profit.
// Breakeven trades belong to neither bucket but still count toward the
// trade total, which dilutes both rates.
type buckets struct {
	total     int
	wins      int
	losses    int
	grossWin  float64
	grossLoss float64 // positive magnitude
}

func bucketize(trades []journal.Trade) buckets {
	b := buckets{total: len(trades)}
	for i := range trades {
		p := trades[i].ProfitCurrency
		switch {
		case p > 0:
			b.wins++
			b.grossWin += p
		case p < 0:
			b.losses++
			b.grossLoss += -p
		}
	}
	return b
}

func (b buckets) winRate() float64 {
	if b.total == 0 {
		return 0
	}
	return float64(b.wins) / float64(b.total)
}

func (b buckets) lossRate() float64 {
	if b.total == 0 {
		return 0
	}
	return float64(b.losses) / float64(b.total)
}

func (b buckets) avgWin() float64 {
	if b.wins == 0 {
		return 0
	}
	return b.grossWin / float64(b.wins)
}

func (b buckets) avgLoss() float64 {
	if b.losses == 0 {
		return 0
	}
	return b.grossLoss / float64(b.losses)
}

// expectancy is winRate*avgWin - lossRate*avgLoss, the expected profit
// of the next trade given the historical distribution.
func expectancy(trades []journal.Trade) float64 {
	b := bucketize(trades)
	if b.total == 0 {
		return 0
	}
	return round2(b.winRate()*b.avgWin() - b.lossRate()*b.avgLoss())
}

func profitFactor(trades []journal.Trade) float64 {
	b := bucketize(trades)
	if b.grossLoss == 0 {
		if b.grossWin > 0 {
			return ProfitFactorCap
		}
		return 0
	}
	return round2(b.grossWin / b.grossLoss)
}

// streaks runs one forward pass over the chronological trades. A
// breakeven trade advances neither counter and breaks neither streak;
// that asymmetry matches the historical implementation and is kept
// deliberately.
func streaks(trades []journal.Trade) (maxWin, maxLoss int) {
	var win, loss int
	for i := range trades {
		p := trades[i].ProfitCurrency
		switch {
		case p > 0:
			win++
			loss = 0
			maxWin = max(maxWin, win)
		case p < 0:
			loss++
			win = 0
			maxLoss = max(maxLoss, loss)
		}
	}
	return maxWin, maxLoss
}

// drawdownSeries tracks cumulative profit against a running peak that
// starts at zero, so a losing first trade immediately shows as a
// negative point. The max drawdown is the series minimum.
func drawdownSeries(trades []journal.Trade) (Series, float64) {
	s := Series{Labels: []string{}, Values: []float64{}}

	var cumulative, peak, maxDD float64
	for i := range trades {
		cumulative += trades[i].ProfitCurrency
		if cumulative > peak {
			peak = cumulative
		}

		dd := round2(cumulative - peak)
		if dd < maxDD {
			maxDD = dd
		}

		label := trades[i].ExitDate
		if label == "" {
			label = trades[i].EntryDate
		}
		s.Labels = append(s.Labels, label)
		s.Values = append(s.Values, dd)
	}

	return s, maxDD
}

// kelly is the optimal capital fraction winRate - (1-winRate)/payoff,
// reported as a percentage with one decimal. Degenerate inputs (no
// wins, no losses) report 0 rather than a misleading extreme.
func kelly(trades []journal.Trade) float64 {
	b := bucketize(trades)
	if b.wins == 0 || b.losses == 0 || b.avgLoss() == 0 {
		return 0
	}

	payoff := b.avgWin() / b.avgLoss()
	k := b.winRate() - (1-b.winRate())/payoff
	return round1(k * 100)
}

// sharpe uses the population standard deviation (divide by N) of the
// per-trade percentage returns. Fewer than two trades or zero variance
// reports 0.
func (a *Aggregator) sharpe(trades []journal.Trade) float64 {
	if len(trades) < 2 {
		return 0
	}

	n := float64(len(trades))
	var mean float64
	for i := range trades {
		mean += trades[i].ProfitPercent
	}
	mean /= n

	var variance float64
	for i := range trades {
		d := trades[i].ProfitPercent - mean
		variance += d * d
	}
	variance /= n

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}

	return round2((mean - a.RiskFreeRate) / std)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

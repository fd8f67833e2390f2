package analytics

import (
	"github.com/statikfintechllc/personal-pennies/internal/journal"
)

// returns computes the percentage metrics relative to initial capital.
// A non-positive starting balance zeroes the whole block even when
// deposits make the capital positive, as does a non-positive capital.
func returns(trades []journal.Trade, acct journal.AccountConfig) Returns {
	capital := acct.InitialCapital()
	if acct.StartingBalance <= 0 || capital <= 0 {
		return Returns{}
	}

	b := bucketize(trades)
	totalProfit := b.grossWin - b.grossLoss

	r := Returns{
		TotalReturnPercent: round2(totalProfit / capital * 100),
		AvgRiskPercent:     round3(b.avgLoss() / capital * 100),
	}

	if b.total > 0 {
		// Per-trade average return gets four decimals; the per-trade
		// magnitudes are too small for cent precision to survive.
		r.AvgReturnPercent = round4(totalProfit / float64(b.total) / capital * 100)
	}

	r.AvgPositionSizePercent = avgPositionSize(trades, capital)

	return r
}

// avgPositionSize averages each trade's position value against the
// account balance as it stood when the trade was taken: initial
// capital plus the realized profit of every earlier trade. Trades
// taken while the running balance was not positive contribute nothing,
// but the divisor stays the full trade count.
func avgPositionSize(trades []journal.Trade, capital float64) float64 {
	if len(trades) == 0 {
		return 0
	}

	running := capital
	var sum float64
	for i := range trades {
		if running > 0 {
			sum += trades[i].EntryPrice * trades[i].Size / running * 100
		}
		running += trades[i].ProfitCurrency
	}

	return round2(sum / float64(len(trades)))
}

func accountSummary(trades []journal.Trade, acct journal.AccountConfig) AccountSummary {
	b := bucketize(trades)
	totalProfit := b.grossWin - b.grossLoss

	return AccountSummary{
		StartingBalance: acct.StartingBalance,
		TotalDeposits:   round2(acct.TotalDeposits()),
		TotalPnL:        round2(totalProfit),
		PortfolioValue:  round2(acct.InitialCapital() + totalProfit),
	}
}

package analytics

import (
	"time"
)

// Result is the full metrics snapshot for one (trades, account) input.
// It is recomputed wholesale on every run and never mutated in place.
type Result struct {
	Expectancy    float64 `json:"expectancy"`
	ProfitFactor  float64 `json:"profit_factor"`
	MaxWinStreak  int     `json:"max_win_streak"`
	MaxLossStreak int     `json:"max_loss_streak"`

	MaxDrawdown        float64 `json:"max_drawdown"`
	MaxDrawdownPercent float64 `json:"max_drawdown_percent"`

	KellyCriterion float64 `json:"kelly_criterion"`
	SharpeRatio    float64 `json:"sharpe_ratio"`

	RMultipleDistribution RMultipleDistribution `json:"r_multiple_distribution"`

	ByStrategy map[string]TagStats `json:"by_strategy"`
	BySetup    map[string]TagStats `json:"by_setup"`
	BySession  map[string]TagStats `json:"by_session"`

	DrawdownSeries Series `json:"drawdown_series"`

	Returns Returns        `json:"returns"`
	Account AccountSummary `json:"account"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Series is a label-aligned value series, shaped for direct charting.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// RMultipleDistribution is the histogram of realized R-multiples.
// Data[i] counts the trades falling into Labels[i]'s bucket; trades
// without a usable stop are not represented at all.
type RMultipleDistribution struct {
	Labels          []string `json:"labels"`
	Data            []int    `json:"data"`
	AvgRMultiple    float64  `json:"avg_r_multiple"`
	MedianRMultiple float64  `json:"median_r_multiple"`
}

// TagStats is the per-classification aggregate used by the strategy,
// setup and session breakdowns.
type TagStats struct {
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`
	TotalProfit float64 `json:"total_profit"`
	AvgProfit   float64 `json:"avg_profit"`
	Expectancy  float64 `json:"expectancy"`
}

// Returns holds the percentage-based metrics relative to initial
// capital.
type Returns struct {
	TotalReturnPercent     float64 `json:"total_return_percent"`
	AvgReturnPercent       float64 `json:"avg_return_percent"`
	AvgRiskPercent         float64 `json:"avg_risk_percent"`
	AvgPositionSizePercent float64 `json:"avg_position_size_percent"`
}

// AccountSummary echoes the account inputs next to the realized totals.
type AccountSummary struct {
	StartingBalance float64 `json:"starting_balance"`
	TotalDeposits   float64 `json:"total_deposits"`
	TotalPnL        float64 `json:"total_pnl"`
	PortfolioValue  float64 `json:"portfolio_value"`
}

// rBucketLabels are the fixed histogram buckets; boundaries are closed
// on the left, open on the right, with open-ended tails.
var rBucketLabels = []string{"< -2R", "-2R to -1R", "-1R to 0R", "0R to 1R", "1R to 2R", "2R to 3R", "> 3R"}

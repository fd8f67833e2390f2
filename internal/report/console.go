package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/statikfintechllc/personal-pennies/internal/analytics"
	"github.com/statikfintechllc/personal-pennies/internal/journal"
)

// ConsoleReporter prints the metric battery as a terminal table.
type ConsoleReporter struct {
	Out io.Writer
}

func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{Out: os.Stdout}
}

func (r *ConsoleReporter) Name() string {
	return "console"
}

func (r *ConsoleReporter) Generate(ctx context.Context, res *analytics.Result, trades []journal.Trade) error {
	t := table.NewWriter()
	t.SetOutputMirror(r.Out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Metric", "Value"})

	t.AppendRows([]table.Row{
		{"Trades", len(trades)},
		{"Expectancy", fmt.Sprintf("%.2f", res.Expectancy)},
		{"Profit Factor", fmt.Sprintf("%.2f", res.ProfitFactor)},
		{"Max Win Streak", res.MaxWinStreak},
		{"Max Loss Streak", res.MaxLossStreak},
		{"Max Drawdown", fmt.Sprintf("%.2f (%.2f%%)", res.MaxDrawdown, res.MaxDrawdownPercent)},
		{"Kelly", fmt.Sprintf("%.1f%%", res.KellyCriterion)},
		{"Sharpe Ratio", fmt.Sprintf("%.2f", res.SharpeRatio)},
		{"Avg R-Multiple", fmt.Sprintf("%.2f", res.RMultipleDistribution.AvgRMultiple)},
		{"Total Return", fmt.Sprintf("%.2f%%", res.Returns.TotalReturnPercent)},
		{"Avg Position Size", fmt.Sprintf("%.2f%%", res.Returns.AvgPositionSizePercent)},
		{"Portfolio Value", fmt.Sprintf("%.2f", res.Account.PortfolioValue)},
	})

	t.Render()

	if len(res.ByStrategy) > 0 {
		st := table.NewWriter()
		st.SetOutputMirror(r.Out)
		st.SetStyle(table.StyleLight)
		st.AppendHeader(table.Row{"Strategy", "Trades", "Win %", "Total P&L", "Expectancy"})
		names := make([]string, 0, len(res.ByStrategy))
		for name := range res.ByStrategy {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s := res.ByStrategy[name]
			st.AppendRow(table.Row{name, s.TotalTrades, fmt.Sprintf("%.1f", s.WinRate), fmt.Sprintf("%.2f", s.TotalProfit), fmt.Sprintf("%.2f", s.Expectancy)})
		}
		st.Render()
	}

	return nil
}

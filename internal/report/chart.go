package report

import (
	"context"
	"fmt"

	"github.com/statikfintechllc/personal-pennies/internal/analytics"
	"github.com/statikfintechllc/personal-pennies/internal/journal"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

// ChartReporter renders the equity curve over the drawdown series as a
// two-panel PNG.
type ChartReporter struct {
	Path   string
	Width  int
	Height int
}

func NewChartReporter(path string, w, h int) *ChartReporter {
	return &ChartReporter{Path: path, Width: w, Height: h}
}

func (r *ChartReporter) Name() string {
	return "chart"
}

func (r *ChartReporter) Generate(ctx context.Context, res *analytics.Result, trades []journal.Trade) error {
	equity := plot.New()
	equity.Title.Text = "Equity"
	equity.Y.Label.Text = "Cumulative P&L"
	equity.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	sorted := journal.SortByExit(trades)
	pts := make(plotter.XYs, len(sorted))
	cumulative := 0.0
	for i := range sorted {
		cumulative += sorted[i].ProfitCurrency
		pts[i] = plotter.XY{X: float64(sorted[i].SortKey().Unix()), Y: cumulative}
	}

	equityLine, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to create equity graph: %w", err)
	}
	equity.Add(equityLine)

	drawdown := plot.New()
	drawdown.Title.Text = "Drawdown"
	drawdown.Y.Label.Text = "From peak"
	drawdown.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	ddPts := make(plotter.XYs, 0, len(res.DrawdownSeries.Values))
	for i, v := range res.DrawdownSeries.Values {
		if i >= len(sorted) {
			break
		}
		ddPts = append(ddPts, plotter.XY{X: float64(sorted[i].SortKey().Unix()), Y: v})
	}

	ddLine, err := plotter.NewLine(ddPts)
	if err != nil {
		return fmt.Errorf("failed to create drawdown graph: %w", err)
	}
	drawdown.Add(ddLine)

	return writeEquityPanels(r.Path, equity, drawdown, r.Width, r.Height)
}

package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/statikfintechllc/personal-pennies/internal/analytics"
	"github.com/statikfintechllc/personal-pennies/internal/journal"
	"github.com/xuri/excelize/v2"
)

// ExcelReporter writes a workbook with a Trades sheet and an Analytics
// summary sheet.
type ExcelReporter struct {
	Path string
}

func NewExcelReporter(path string) *ExcelReporter {
	return &ExcelReporter{Path: path}
}

func (r *ExcelReporter) Name() string {
	return "excel"
}

const (
	tradesSheet    = "Trades"
	analyticsSheet = "Analytics"
)

func (r *ExcelReporter) Generate(ctx context.Context, res *analytics.Result, trades []journal.Trade) error {
	if dir := filepath.Dir(r.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	if _, err := fx.NewSheet(analyticsSheet); err != nil {
		return fmt.Errorf("failed to create analytics sheet: %w", err)
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := r.writeTrades(fx, trades, headerStyle); err != nil {
		return err
	}
	if err := r.writeAnalytics(fx, res, headerStyle); err != nil {
		return err
	}

	if err := fx.SaveAs(r.Path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

func (r *ExcelReporter) writeTrades(fx *excelize.File, trades []journal.Trade, headerStyle int) error {
	headers := []string{"#", "Symbol", "Direction", "Entry Date", "Entry Price", "Exit Date", "Exit Price", "Size", "P&L", "P&L %", "Strategy", "Setup", "Session", "Broker"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := fx.SetCellValue(tradesSheet, cell, h); err != nil {
			return fmt.Errorf("failed to write trades header: %w", err)
		}
	}

	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := fx.SetCellStyle(tradesSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style trades header: %w", err)
	}

	for i, t := range trades {
		row := []any{
			t.ID, t.Symbol, t.Direction,
			t.EntryDate, t.EntryPrice,
			t.ExitDate, t.ExitPrice,
			t.Size, t.ProfitCurrency, t.ProfitPercent,
			first(t.Strategies), first(t.Setups), first(t.Sessions),
			t.Broker,
		}
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := fx.SetCellValue(tradesSheet, cell, v); err != nil {
				return fmt.Errorf("failed to write trade row: %w", err)
			}
		}
	}

	return fx.SetColWidth(tradesSheet, "A", "N", 14)
}

func (r *ExcelReporter) writeAnalytics(fx *excelize.File, res *analytics.Result, headerStyle int) error {
	if err := fx.SetCellValue(analyticsSheet, "A1", "Metric"); err != nil {
		return fmt.Errorf("failed to write analytics header: %w", err)
	}
	if err := fx.SetCellValue(analyticsSheet, "B1", "Value"); err != nil {
		return fmt.Errorf("failed to write analytics header: %w", err)
	}
	if err := fx.SetCellStyle(analyticsSheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("failed to style analytics header: %w", err)
	}

	rows := []struct {
		name  string
		value any
	}{
		{"Expectancy", res.Expectancy},
		{"Profit Factor", res.ProfitFactor},
		{"Max Win Streak", res.MaxWinStreak},
		{"Max Loss Streak", res.MaxLossStreak},
		{"Max Drawdown", res.MaxDrawdown},
		{"Max Drawdown %", res.MaxDrawdownPercent},
		{"Kelly %", res.KellyCriterion},
		{"Sharpe Ratio", res.SharpeRatio},
		{"Avg R-Multiple", res.RMultipleDistribution.AvgRMultiple},
		{"Median R-Multiple", res.RMultipleDistribution.MedianRMultiple},
		{"Total Return %", res.Returns.TotalReturnPercent},
		{"Avg Return % / Trade", res.Returns.AvgReturnPercent},
		{"Avg Risk %", res.Returns.AvgRiskPercent},
		{"Avg Position Size %", res.Returns.AvgPositionSizePercent},
		{"Starting Balance", res.Account.StartingBalance},
		{"Total Deposits", res.Account.TotalDeposits},
		{"Total P&L", res.Account.TotalPnL},
		{"Portfolio Value", res.Account.PortfolioValue},
	}

	for i, row := range rows {
		name, _ := excelize.CoordinatesToCellName(1, i+2)
		value, _ := excelize.CoordinatesToCellName(2, i+2)
		if err := fx.SetCellValue(analyticsSheet, name, row.name); err != nil {
			return fmt.Errorf("failed to write metric name: %w", err)
		}
		if err := fx.SetCellValue(analyticsSheet, value, row.value); err != nil {
			return fmt.Errorf("failed to write metric value: %w", err)
		}
	}

	return fx.SetColWidth(analyticsSheet, "A", "B", 22)
}

func first(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return strings.TrimSpace(tags[0])
}

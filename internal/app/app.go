package app

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/statikfintechllc/personal-pennies/internal/analytics"
	"github.com/statikfintechllc/personal-pennies/internal/broker"
	"github.com/statikfintechllc/personal-pennies/internal/broker/alpaca"
	"github.com/statikfintechllc/personal-pennies/internal/config"
	"github.com/statikfintechllc/personal-pennies/internal/journal"
	"github.com/statikfintechllc/personal-pennies/internal/pipeline"
	"github.com/statikfintechllc/personal-pennies/internal/report"
	"github.com/statikfintechllc/personal-pennies/internal/store"
)

// App wires the journal's components from one config file. Both
// binaries build the exact same pipeline through it.
type App struct {
	Cfg   *config.Config
	Log   *slog.Logger
	Store store.Store
}

func New(log *slog.Logger, cfgPath string) (*App, error) {
	cfg, err := config.ReadFromFile(cfgPath)
	if err != nil {
		return nil, err
	}

	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	// The config file owns the account description; mirror it into the
	// store so every run reads the same record.
	if err := st.SaveAccount(cfg.Account); err != nil {
		return nil, err
	}

	return &App{Cfg: cfg, Log: log, Store: st}, nil
}

func (a *App) Matcher() *journal.Matcher {
	mode := journal.MatchSequential
	if a.Cfg.Matching.Mode == "fifo" {
		mode = journal.MatchFIFO
	}
	return journal.NewMatcher(a.Log, mode)
}

func (a *App) Validator() *journal.Validator {
	v := journal.NewValidator()
	if a.Cfg.Validation.MaxSanePrice > 0 {
		v.MaxSanePrice = a.Cfg.Validation.MaxSanePrice
	}
	return v
}

func (a *App) Aggregator() *analytics.Aggregator {
	agg := analytics.NewAggregator()
	agg.RiskFreeRate = a.Cfg.Analytics.RiskFreeRate
	return agg
}

func (a *App) Sources() []pipeline.Source {
	var sources []pipeline.Source
	for _, ref := range a.Cfg.Sources {
		switch src := ref.Source.(type) {
		case config.FileExport:
			hint, _ := broker.ParseFormat(src.Format)
			sources = append(sources, broker.NewFileSource(a.Log, src.Path, hint))
		case config.Alpaca:
			if src.ApiKey == "" {
				src.ApiKey = os.Getenv("ALPACA_API_KEY")
				src.Secret = os.Getenv("ALPACA_API_SECRET")
			}
			sources = append(sources, alpaca.NewClient(src))
		}
	}
	return sources
}

func (a *App) Reporters() []report.Reporter {
	cfg := a.Cfg.Reports
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		a.Log.Warn("failed to create reports directory",
			slog.String("dir", cfg.Dir),
			slog.String("error", err.Error()))
	}

	jsonPath := cfg.JSON
	if jsonPath == "" {
		jsonPath = filepath.Join(cfg.Dir, "report.json")
	}
	excelPath := cfg.Excel
	if excelPath == "" {
		excelPath = filepath.Join(cfg.Dir, "report.xlsx")
	}
	chartPath := cfg.Chart
	if chartPath == "" {
		chartPath = filepath.Join(cfg.Dir, "report.png")
	}

	return []report.Reporter{
		report.NewJSONReporter(a.Log, jsonPath),
		report.NewExcelReporter(excelPath),
		report.NewChartReporter(chartPath, cfg.ChartWidth, cfg.ChartHeight),
		report.NewConsoleReporter(),
	}
}

func (a *App) Runner() *pipeline.Runner {
	return pipeline.NewRunner(a.Log, a.Store,
		a.Matcher(), a.Validator(), a.Aggregator(),
		a.Sources(), a.Reporters())
}

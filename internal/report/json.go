package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/statikfintechllc/personal-pennies/internal/analytics"
	"github.com/statikfintechllc/personal-pennies/internal/journal"
)

// JSONReporter writes the analytics snapshot together with the trade
// list it was computed from, in the shape the web journal consumes.
type JSONReporter struct {
	Path string

	log *slog.Logger
}

type jsonReport struct {
	Analytics *analytics.Result `json:"analytics"`
	Trades    []journal.Trade   `json:"trades"`
}

func NewJSONReporter(log *slog.Logger, path string) *JSONReporter {
	return &JSONReporter{Path: path, log: log}
}

func (r *JSONReporter) Name() string {
	return "json"
}

func (r *JSONReporter) Generate(ctx context.Context, res *analytics.Result, trades []journal.Trade) (err error) {
	f, err := os.Create(r.Path)
	if err != nil {
		return fmt.Errorf("failed to create json report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := r.write(f, res, trades); err != nil {
		return err
	}

	r.log.Info("json report written",
		slog.String("path", r.Path),
		slog.Int("trades", len(trades)))

	return nil
}

func (r *JSONReporter) write(w io.Writer, res *analytics.Result, trades []journal.Trade) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(jsonReport{Analytics: res, Trades: trades}); err != nil {
		return fmt.Errorf("failed to write json report: %w", err)
	}

	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/statikfintechllc/personal-pennies/internal/app"
	"github.com/statikfintechllc/personal-pennies/internal/broker"
	"github.com/statikfintechllc/personal-pennies/internal/pipeline"
	"github.com/statikfintechllc/personal-pennies/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "journal.yaml", "path to the journal config file")
	importPath := flag.String("import", "", "broker export file to import")
	formatHint := flag.String("format", "", "source format hint for -import (robinhood, webull, schwab, ibkr)")
	analyze := flag.Bool("analyze", false, "recompute analytics and write reports")
	flag.Parse()

	a, err := app.New(slog.Default(), *cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	if *importPath != "" {
		if err := importFile(ctx, a, *importPath, *formatHint); err != nil {
			log.Fatal(err)
		}
	}

	if *analyze || *importPath == "" {
		if err := recompute(ctx, a); err != nil {
			log.Fatal(err)
		}
	}
}

func importFile(ctx context.Context, a *app.App, path, formatHint string) error {
	hint := broker.FormatUnknown
	if formatHint != "" {
		parsed, ok := broker.ParseFormat(formatHint)
		if !ok {
			return fmt.Errorf("unknown format hint %q", formatHint)
		}
		hint = parsed
	}

	src := broker.NewFileSource(a.Log, path, hint)
	txs, err := src.Transactions(ctx, lastExit(a.Store))
	if err != nil {
		return err
	}

	valid, invalid, warns := a.Validator().Partition(a.Matcher().Match(txs))
	for _, w := range warns {
		a.Log.Warn("trade validation warning", slog.String("warning", w))
	}

	existing, err := a.Store.Trades()
	if err != nil {
		return err
	}
	for _, t := range valid {
		t.ID = len(existing) + 1
		existing = append(existing, t)
	}
	if err := a.Store.SaveTrades(existing); err != nil {
		return err
	}

	a.Log.Info("import finished",
		slog.String("file", filepath.Base(path)),
		slog.Int("imported", len(valid)),
		slog.Int("rejected", len(invalid)),
		slog.Int("total", len(existing)))

	return nil
}

func recompute(ctx context.Context, a *app.App) error {
	res, err := a.Runner().TryRun(ctx, pipeline.EventManual)
	if err != nil {
		return err
	}
	if !res.Completed {
		return fmt.Errorf("recomputation failed at step %s", res.FailedStep)
	}
	return nil
}

func lastExit(st store.Store) (last time.Time) {
	trades, err := st.Trades()
	if err != nil {
		return last
	}
	for i := range trades {
		if at := trades[i].ExitAt(); at.After(last) {
			last = at
		}
	}
	return last
}

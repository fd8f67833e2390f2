package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/statikfintechllc/personal-pennies/internal/app"
	"github.com/statikfintechllc/personal-pennies/internal/pipeline"
)

// journald keeps a runner alive and feeds it change events read as
// lines from stdin (trade_added, deposit_changed, manual, ...). Each
// terminal run outcome is echoed to stdout as one JSON line for
// whatever UI or script sits on the other end.
func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "journal.yaml", "path to the journal config file")
	flag.Parse()

	logger := slog.Default()

	a, err := app.New(logger, *cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	runner := a.Runner()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go runner.Listen(ctx)

	go func() {
		enc := json.NewEncoder(os.Stdout)
		for {
			select {
			case <-ctx.Done():
				return
			case res := <-runner.Results():
				if err := enc.Encode(res); err != nil {
					logger.Error("failed to write run result", slog.String("error", err.Error()))
				}
			}
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}

		event, ok := parseEvent(name)
		if !ok {
			logger.Warn("unknown event", slog.String("event", name))
			continue
		}
		runner.Submit(event)
	}

	<-ctx.Done()
}

func parseEvent(name string) (pipeline.Event, bool) {
	switch pipeline.Event(name) {
	case pipeline.EventTradeAdded,
		pipeline.EventTradeUpdated,
		pipeline.EventTradeDeleted,
		pipeline.EventDepositChanged,
		pipeline.EventWithdrawalChanged,
		pipeline.EventBalanceChanged,
		pipeline.EventManual:
		return pipeline.Event(name), true
	default:
		return "", false
	}
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/statikfintechllc/personal-pennies/internal/analytics"
	"github.com/statikfintechllc/personal-pennies/internal/journal"
	"github.com/statikfintechllc/personal-pennies/internal/report"
	"github.com/statikfintechllc/personal-pennies/internal/store"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyRunning is returned when a run is requested while another
// one is in flight. Requests are rejected, never queued: the caller
// re-triggers after completion if it still wants a fresh run.
var ErrAlreadyRunning = errors.New("recomputation already running")

// Event names a journal change that warrants a recomputation.
type Event string

const (
	EventTradeAdded        Event = "trade_added"
	EventTradeUpdated      Event = "trade_updated"
	EventTradeDeleted      Event = "trade_deleted"
	EventDepositChanged    Event = "deposit_changed"
	EventWithdrawalChanged Event = "withdrawal_changed"
	EventBalanceChanged    Event = "balance_changed"
	EventManual            Event = "manual"
)

// State is the runner's coarse lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateErrored State = "errored"
)

type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepSkipped   StepStatus = "skipped"
	StepFailed    StepStatus = "failed"
)

type StepResult struct {
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// RunResult is the single terminal outcome every run emits, success or
// not.
type RunResult struct {
	ID         string       `json:"id"`
	Trigger    Event        `json:"trigger"`
	Completed  bool         `json:"completed"`
	FailedStep string       `json:"failed_step,omitempty"`
	Steps      []StepResult `json:"steps"`
	Started    time.Time    `json:"started"`
	Finished   time.Time    `json:"finished"`
}

// Source supplies fresh transactions during the import step.
type Source interface {
	Name() string
	Transactions(ctx context.Context, after time.Time) ([]journal.Transaction, error)
}

// Runner sequences one full recomputation: import, match, validate,
// analytics, persist, then the report fan-out. The single-flight flag
// is the only shared mutable state it owns.
type Runner struct {
	log       *slog.Logger
	store     store.Store
	matcher   *journal.Matcher
	validator *journal.Validator
	agg       *analytics.Aggregator
	sources   []Source
	reporters []report.Reporter

	mu      sync.Mutex
	state   State
	running bool

	events  chan Event
	results chan RunResult
}

func NewRunner(log *slog.Logger, st store.Store, matcher *journal.Matcher, validator *journal.Validator, agg *analytics.Aggregator, sources []Source, reporters []report.Reporter) *Runner {
	return &Runner{
		log:       log,
		store:     st,
		matcher:   matcher,
		validator: validator,
		agg:       agg,
		sources:   sources,
		reporters: reporters,
		state:     StateIdle,
		events:    make(chan Event, 16),
		results:   make(chan RunResult, 16),
	}
}

// State reports the runner's current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Submit hands a change event to the runner. It never blocks; when the
// queue is full the event is dropped, since any queued event already
// forces a full recomputation anyway.
func (r *Runner) Submit(e Event) {
	select {
	case r.events <- e:
	default:
		r.log.Warn("event queue full, dropping trigger", slog.String("event", string(e)))
	}
}

// Results exposes the terminal outcome stream for external consumers.
func (r *Runner) Results() <-chan RunResult {
	return r.results
}

// Listen consumes change events until the context ends, triggering one
// recomputation per event. Events arriving mid-run are rejected by the
// single-flight guard and simply dropped.
func (r *Runner) Listen(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-r.events:
			res, err := r.TryRun(ctx, e)
			if errors.Is(err, ErrAlreadyRunning) {
				r.log.Info("recomputation already in flight, dropping trigger", slog.String("event", string(e)))
				continue
			}

			select {
			case r.results <- res:
			default:
				r.log.Warn("result channel full, dropping run result", slog.String("run_id", res.ID))
			}
		}
	}
}

// TryRun executes one full recomputation unless one is already in
// flight. There is no cancellation once a run starts: it proceeds to
// completion or to its first failing step.
func (r *Runner) TryRun(ctx context.Context, trigger Event) (RunResult, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return RunResult{}, ErrAlreadyRunning
	}
	r.running = true
	r.state = StateRunning
	r.mu.Unlock()

	res := r.run(ctx, trigger)

	r.mu.Lock()
	r.running = false
	if res.Completed {
		r.state = StateIdle
	} else {
		r.state = StateErrored
	}
	r.mu.Unlock()

	return res, nil
}

func (r *Runner) run(ctx context.Context, trigger Event) RunResult {
	res := RunResult{
		ID:      uuid.NewString(),
		Trigger: trigger,
		Started: time.Now(),
	}

	r.log.Info("recomputation started",
		slog.String("run_id", res.ID),
		slog.String("trigger", string(trigger)))

	var trades []journal.Trade
	var acct journal.AccountConfig
	var txs []journal.Transaction
	var matched []journal.Trade
	var result *analytics.Result

	steps := []struct {
		name string
		fn   func(context.Context) (StepStatus, error)
	}{
		{"load", func(ctx context.Context) (StepStatus, error) {
			var err error
			if trades, err = r.store.Trades(); err != nil {
				return StepFailed, err
			}
			if acct, err = r.store.Account(); err != nil {
				return StepFailed, err
			}
			return StepCompleted, nil
		}},
		{"import", func(ctx context.Context) (StepStatus, error) {
			if len(r.sources) == 0 {
				return StepSkipped, nil
			}
			fetched, err := r.fetchTransactions(ctx, trades)
			if err != nil {
				return StepFailed, err
			}
			txs = fetched
			return StepCompleted, nil
		}},
		{"match", func(ctx context.Context) (StepStatus, error) {
			if len(r.sources) == 0 {
				return StepSkipped, nil
			}
			matched = r.matcher.Match(txs)
			return StepCompleted, nil
		}},
		{"validate", func(ctx context.Context) (StepStatus, error) {
			if len(r.sources) == 0 {
				return StepSkipped, nil
			}
			trades = r.appendValid(trades, matched)
			if err := r.store.SaveTrades(trades); err != nil {
				return StepFailed, err
			}
			return StepCompleted, nil
		}},
		{"analytics", func(ctx context.Context) (StepStatus, error) {
			snapshot := r.agg.Compute(trades, acct)
			result = &snapshot
			return StepCompleted, nil
		}},
		{"persist", func(ctx context.Context) (StepStatus, error) {
			if err := r.store.SaveResult(result); err != nil {
				return StepFailed, err
			}
			return StepCompleted, nil
		}},
		{"reports", func(ctx context.Context) (StepStatus, error) {
			if len(r.reporters) == 0 {
				return StepSkipped, nil
			}
			if err := r.generateReports(ctx, result, trades); err != nil {
				return StepFailed, err
			}
			return StepCompleted, nil
		}},
	}

	for _, step := range steps {
		started := time.Now()
		status, err := step.fn(ctx)

		sr := StepResult{
			Name:     step.name,
			Status:   status,
			Duration: time.Since(started),
		}
		if err != nil {
			sr.Error = err.Error()
		}
		res.Steps = append(res.Steps, sr)

		if status == StepFailed {
			// Completed steps keep their side effects; there is no
			// compensating rollback.
			res.FailedStep = step.name
			res.Finished = time.Now()
			r.log.Error("recomputation failed",
				slog.String("run_id", res.ID),
				slog.String("step", step.name),
				slog.String("error", sr.Error))
			return res
		}
	}

	res.Completed = true
	res.Finished = time.Now()
	r.log.Info("recomputation completed",
		slog.String("run_id", res.ID),
		slog.Duration("took", res.Finished.Sub(res.Started)))

	return res
}

// fetchTransactions pulls fresh transactions from every source, using
// the latest stored exit as the watermark. A failing source aborts the
// step.
func (r *Runner) fetchTransactions(ctx context.Context, existing []journal.Trade) ([]journal.Transaction, error) {
	after := lastExit(existing)

	var txs []journal.Transaction
	for _, src := range r.sources {
		fetched, err := src.Transactions(ctx, after)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name(), err)
		}
		txs = append(txs, fetched...)
	}

	return txs, nil
}

// appendValid partitions the matched trades and appends the valid ones
// to the existing list with fresh sequence numbers. Invalid trades are
// logged and dropped.
func (r *Runner) appendValid(existing, matched []journal.Trade) []journal.Trade {
	valid, invalid, warns := r.validator.Partition(matched)
	for _, w := range warns {
		r.log.Warn("trade validation warning", slog.String("warning", w))
	}
	for _, inv := range invalid {
		r.log.Warn("dropping invalid trade",
			slog.String("symbol", inv.Trade.Symbol),
			slog.Any("errors", inv.Errors))
	}

	next := make([]journal.Trade, 0, len(existing)+len(valid))
	next = append(next, existing...)
	for _, t := range valid {
		t.ID = len(next) + 1
		next = append(next, t)
	}

	return next
}

// generateReports fans out the independent generators and joins on all
// of them. They write disjoint outputs, so ordering between them does
// not matter.
func (r *Runner) generateReports(ctx context.Context, res *analytics.Result, trades []journal.Trade) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, rep := range r.reporters {
		g.Go(func() error {
			if err := rep.Generate(ctx, res, trades); err != nil {
				return fmt.Errorf("reporter %s: %w", rep.Name(), err)
			}
			return nil
		})
	}

	return g.Wait()
}

func lastExit(trades []journal.Trade) time.Time {
	var last time.Time
	for i := range trades {
		if at := trades[i].ExitAt(); at.After(last) {
			last = at
		}
	}
	return last
}

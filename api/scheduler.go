/*
scheduler.go - Automated period rollover scheduler

PURPOSE:
  Periodically sweeps all budgets and freezes every completed period that
  has not been archived yet, so forecasts stay anchored to frozen history
  even when nobody opens the budget for months.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Sweeps budgets concurrently with a bounded worker group
  - A failing budget is logged and skipped, never aborts the sweep
  - Already-archived periods are skipped inside the catch-up walk
  - Publishes a period-archived event for every newly frozen period

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Concurrency: Budgets swept in parallel (default: 4)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewRolloverScheduler(store, archiver)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Forecast endpoint (on-demand catch-up)
  - cmd/server/main.go: Scheduler startup
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/events"
)

// RolloverScheduler freezes completed periods in the background.
type RolloverScheduler struct {
	Store         budget.Store
	Archiver      *budget.Archiver
	Publisher     events.Publisher
	CheckInterval time.Duration
	Concurrency   int
	Enabled       bool

	// Now is the clock used to decide which periods are completed.
	// Tests pin it.
	Now func() budget.Date

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRolloverScheduler creates a new scheduler.
func NewRolloverScheduler(store budget.Store, archiver *budget.Archiver) *RolloverScheduler {
	return &RolloverScheduler{
		Store:         store,
		Archiver:      archiver,
		Publisher:     events.NoopPublisher{},
		CheckInterval: 1 * time.Hour,
		Concurrency:   4,
		Enabled:       true,
		Now:           budget.Today,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (rs *RolloverScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		slog.Info("Rollover scheduler disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	slog.Info("Rollover scheduler started", "check_interval", rs.CheckInterval)
}

// Stop stops the scheduler.
func (rs *RolloverScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		slog.Info("Rollover scheduler stopped")
	}
}

func (rs *RolloverScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.sweep()

	for {
		select {
		case <-rs.ticker.C:
			rs.sweep()
		case <-rs.stop:
			return
		}
	}
}

// sweep walks every budget and archives its overdue periods.
func (rs *RolloverScheduler) sweep() {
	ctx := context.Background()
	through := budget.PeriodOf(rs.Now()).Previous()

	budgets, err := rs.Store.ListBudgets(ctx)
	if err != nil {
		slog.Error("Rollover sweep failed to list budgets", "error", err)
		return
	}

	var archived, failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rs.Concurrency)
	for _, b := range budgets {
		b := b
		g.Go(func() error {
			newly, err := rs.Archiver.CatchUp(ctx, b.ID, through)
			if err != nil {
				failed.Add(1)
				slog.Error("Rollover failed for budget",
					"budget_id", b.ID, "through", through.String(), "error", err)
				return nil
			}
			archived.Add(int64(len(newly)))
			rs.publish(ctx, b.ID, newly)
			return nil
		})
	}
	g.Wait()

	if archived.Load() > 0 || failed.Load() > 0 {
		slog.Info("Rollover sweep completed",
			"budgets", len(budgets),
			"periods_archived", archived.Load(),
			"budgets_failed", failed.Load())
	}
}

// publish announces newly frozen periods. Delivery failures are logged,
// consumers catch up on the next sweep through their own dedupe.
func (rs *RolloverScheduler) publish(ctx context.Context, id budget.BudgetID, periods []budget.Period) {
	for _, period := range periods {
		snapshot, err := rs.Store.GetArchivedPeriod(ctx, id, period)
		if err != nil {
			slog.Error("Failed to load archived period for event",
				"budget_id", id, "period", period.String(), "error", err)
			continue
		}
		if err := rs.Publisher.PublishPeriodArchived(ctx, events.NewPeriodArchivedMessage(snapshot)); err != nil {
			slog.Error("Failed to publish period archived event",
				"budget_id", id, "period", period.String(), "error", err)
		}
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (rs *RolloverScheduler) RunNow() {
	rs.sweep()
}

// NextRunTime returns when the next scheduled sweep will occur.
func (rs *RolloverScheduler) NextRunTime() time.Time {
	return time.Now().Add(rs.CheckInterval)
}

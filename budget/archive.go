/*
archive.go - Idempotent period archival

PURPOSE:
  Snapshots one just-completed period into immutable records. Reads the
  active budget lines, composes their occurrences clipped to exactly that
  period, and freezes line identities plus occurrences. The active lines
  and patterns are never touched; they keep generating future periods.

CONCURRENCY:
  A per-budget mutex covers the full read-compute-write sequence so two
  rollover triggers (the scheduled sweep and a first-access catch-up) do
  not both do the work. The lock is an optimization, not the correctness
  mechanism: the store's uniqueness constraint on (budget, direction,
  category, period) decides who wins a race, and the loser re-reads the
  existing snapshot and returns it as success.

SEE ALSO:
  - store.go: SaveArchivedLines atomicity and ErrSnapshotExists contract
  - project.go: Reads frozen periods instead of re-expanding them
*/
package budget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// =============================================================================
// ARCHIVER - Freezes completed periods
// =============================================================================

type Archiver struct {
	Store    Store
	Expander *Expander

	mu    sync.Mutex
	locks map[BudgetID]*sync.Mutex
}

func NewArchiver(store Store, expander *Expander) *Archiver {
	return &Archiver{
		Store:    store,
		Expander: expander,
		locks:    make(map[BudgetID]*sync.Mutex),
	}
}

// ArchivePeriod freezes one period of a budget. Idempotent: archiving an
// already-archived period returns the existing snapshot unchanged.
func (a *Archiver) ArchivePeriod(ctx context.Context, budgetID BudgetID, period Period) (*ArchivedPeriod, error) {
	if !period.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, period)
	}

	lock := a.lockFor(budgetID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := a.Store.GetArchivedPeriod(ctx, budgetID, period)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrSnapshotNotFound) {
		return nil, fmt.Errorf("check existing snapshot: %w", err)
	}

	b, err := a.Store.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}

	lines, err := a.freezeLines(b, period)
	if err != nil {
		return nil, err
	}

	if err := a.Store.SaveArchivedLines(ctx, lines); err != nil {
		if errors.Is(err, ErrSnapshotExists) {
			// Lost the race to a concurrent writer; their snapshot wins.
			return a.Store.GetArchivedPeriod(ctx, budgetID, period)
		}
		return nil, fmt.Errorf("save archived lines: %w", err)
	}

	return &ArchivedPeriod{BudgetID: budgetID, Period: period, Lines: lines}, nil
}

// CatchUp archives every period from the budget's first pattern period
// through the given period that is not yet archived. Safe to call from the
// scheduled sweep and the first-access path at once.
func (a *Archiver) CatchUp(ctx context.Context, budgetID BudgetID, through Period) ([]Period, error) {
	b, err := a.Store.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}

	first, ok := earliestPatternPeriod(b)
	if !ok || through.Before(first) {
		return nil, nil
	}

	archived, err := a.Store.ListArchivedPeriods(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list archived periods: %w", err)
	}
	done := make(map[Period]bool, len(archived))
	for _, p := range archived {
		done[p] = true
	}

	var newly []Period
	for period := first; !period.After(through); period = period.Next() {
		if done[period] {
			continue
		}
		if _, err := a.ArchivePeriod(ctx, budgetID, period); err != nil {
			return newly, fmt.Errorf("archive %s: %w", period, err)
		}
		newly = append(newly, period)
	}
	return newly, nil
}

func (a *Archiver) freezeLines(b *Budget, period Period) ([]ArchivedLine, error) {
	window := period.Window()
	now := time.Now().UTC()

	lines := make([]ArchivedLine, 0, len(b.Lines))
	for _, line := range b.Lines {
		occurrences, err := a.Expander.Compose(line, window)
		if err != nil {
			return nil, fmt.Errorf("compose line %s: %w", line.ID, err)
		}
		lines = append(lines, ArchivedLine{
			ID:          generateArchiveID(b.ID, line.Direction, line.Category, period),
			BudgetID:    b.ID,
			Direction:   line.Direction,
			Category:    line.Category,
			Accumulate:  line.Accumulate,
			Period:      period,
			Occurrences: occurrences,
			CreatedAt:   now,
		})
	}
	return lines, nil
}

func (a *Archiver) lockFor(id BudgetID) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[id] = lock
	}
	return lock
}

func earliestPatternPeriod(b *Budget) (Period, bool) {
	var first Period
	found := false
	for _, line := range b.Lines {
		for _, p := range line.Patterns {
			period := PeriodOf(p.StartDate)
			if !found || period.Before(first) {
				first = period
				found = true
			}
		}
	}
	return first, found
}

func generateArchiveID(budgetID BudgetID, direction Direction, category string, period Period) ArchiveID {
	return ArchiveID(string(budgetID) + "-" + string(direction) + "-" + category + "-" + period.String())
}

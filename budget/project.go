/*
project.go - Forecast projection across a period horizon

PURPOSE:
  Turns a budget into a month-by-month forecast: expected income, expected
  expenses, and a balance chained period to period from an opening balance.
  Periods strictly before the current one are read from frozen snapshots so
  history never drifts when a line or pattern is edited; the current and
  future periods are composed live.

KEY CONCEPTS:
  - Transfers move money between own accounts, so they never enter the
    headline income/expense totals. They surface only as per-account deltas.
  - Summary statistics: the lowest end balance in the horizon (earliest
    period wins a tie) and the next large expense after "now", where large
    is defined by a caller-supplied materiality policy rather than a number
    baked into the engine.

DESIGN PRINCIPLES:
  - Pure with respect to state: reads snapshots, writes nothing. Safe to
    recompute on every request.
  - The caller supplies "now"; the projector never consults the wall clock.

SEE ALSO:
  - archive.go: Produces the frozen periods consumed here
  - compose.go: Live expansion for current and future periods
*/
package budget

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// DefaultHorizonMonths is the horizon used when a caller does not ask for a
// specific range: the current month plus eleven.
const DefaultHorizonMonths = 12

// =============================================================================
// MATERIALITY POLICY - What counts as a large expense
// =============================================================================

// LargeExpensePolicy decides which expense occurrences are worth flagging.
// The threshold is the median absolute expense amount in the horizon scaled
// by MedianMultiple, floored at MinimumAmount so a horizon of small expenses
// does not flag groceries.
type LargeExpensePolicy struct {
	MinimumAmount  Amount
	MedianMultiple float64
}

// DefaultLargeExpensePolicy flags expenses above three times the median,
// never below 1000 kroner.
func DefaultLargeExpensePolicy() LargeExpensePolicy {
	return LargeExpensePolicy{MinimumAmount: 100_000, MedianMultiple: 3}
}

func (p LargeExpensePolicy) threshold(medianAbs Amount) Amount {
	scaled := Amount(p.MedianMultiple * float64(medianAbs))
	if scaled < p.MinimumAmount {
		return p.MinimumAmount
	}
	return scaled
}

// =============================================================================
// PROJECTION TYPES
// =============================================================================

type ProjectionRequest struct {
	Budget         Budget
	First          Period
	Last           Period
	OpeningBalance Amount
	Now            Date
	LargeExpense   LargeExpensePolicy
}

// PeriodProjection is one month of the forecast. Frozen reports whether the
// amounts came from an archived snapshot instead of live composition.
type PeriodProjection struct {
	Period          Period
	ExpectedIncome  Amount
	ExpectedExpense Amount
	StartBalance    Amount
	EndBalance      Amount
	AccountDeltas   map[AccountID]Amount
	Frozen          bool
}

type LowestPoint struct {
	Period     Period
	EndBalance Amount
}

type LargeExpense struct {
	Date     Date
	Amount   Amount
	Category string
}

type Projection struct {
	BudgetID         BudgetID
	Periods          []PeriodProjection
	LowestPoint      *LowestPoint
	NextLargeExpense *LargeExpense
}

// =============================================================================
// PROJECTOR
// =============================================================================

type Projector struct {
	Snapshots SnapshotStore
	Expander  *Expander
}

func NewProjector(snapshots SnapshotStore, expander *Expander) *Projector {
	return &Projector{Snapshots: snapshots, Expander: expander}
}

// Project computes the forecast for an inclusive period range. The balance
// chains left to right: each period starts where the previous one ended.
func (pr *Projector) Project(ctx context.Context, req ProjectionRequest) (*Projection, error) {
	if !req.First.IsValid() || !req.Last.IsValid() {
		return nil, fmt.Errorf("%w: horizon %s..%s", ErrInvalidPeriod, req.First, req.Last)
	}
	if req.Last.Before(req.First) {
		return nil, fmt.Errorf("%w: horizon ends %s before it starts %s", ErrInvalidPeriod, req.Last, req.First)
	}

	policy := req.LargeExpense
	if policy == (LargeExpensePolicy{}) {
		policy = DefaultLargeExpensePolicy()
	}

	current := PeriodOf(req.Now)
	balance := req.OpeningBalance
	projection := &Projection{BudgetID: req.Budget.ID}
	var expenses []expenseOccurrence

	for _, period := range PeriodsBetween(req.First, req.Last) {
		var pp PeriodProjection
		var err error
		if period.Before(current) {
			pp, err = pr.frozenPeriod(ctx, req.Budget, period, &expenses)
		} else {
			pp, err = pr.livePeriod(req.Budget, period, &expenses)
		}
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", period, err)
		}

		pp.StartBalance = balance
		pp.EndBalance = balance.Add(pp.ExpectedIncome).Add(pp.ExpectedExpense)
		balance = pp.EndBalance
		projection.Periods = append(projection.Periods, pp)
	}

	projection.LowestPoint = lowestPoint(projection.Periods)
	projection.NextLargeExpense = nextLargeExpense(expenses, req.Now, policy)
	return projection, nil
}

// frozenPeriod reads an archived snapshot. A missing snapshot falls back to
// live composition so a never-archived budget still gets a full forecast.
func (pr *Projector) frozenPeriod(ctx context.Context, b Budget, period Period, expenses *[]expenseOccurrence) (PeriodProjection, error) {
	archived, err := pr.Snapshots.GetArchivedPeriod(ctx, b.ID, period)
	if errors.Is(err, ErrSnapshotNotFound) {
		return pr.livePeriod(b, period, expenses)
	}
	if err != nil {
		return PeriodProjection{}, err
	}

	pp := PeriodProjection{Period: period, AccountDeltas: make(map[AccountID]Amount), Frozen: true}
	for _, line := range archived.Lines {
		accumulate(&pp, line.Direction, line.Category, transferAccounts(b, line), line.Occurrences, expenses)
	}
	return pp, nil
}

func (pr *Projector) livePeriod(b Budget, period Period, expenses *[]expenseOccurrence) (PeriodProjection, error) {
	pp := PeriodProjection{Period: period, AccountDeltas: make(map[AccountID]Amount)}
	for _, line := range b.Lines {
		occurrences, err := pr.Expander.Compose(line, period.Window())
		if err != nil {
			return PeriodProjection{}, fmt.Errorf("compose line %s: %w", line.ID, err)
		}
		accumulate(&pp, line.Direction, line.Category, line.Accounts, occurrences, expenses)
	}
	return pp, nil
}

// accumulate folds one line's occurrences into the period totals. Transfers
// stay out of the headline and only shift the two accounts they touch.
func accumulate(pp *PeriodProjection, direction Direction, category string, accounts []AccountID, occurrences []Occurrence, expenses *[]expenseOccurrence) {
	for _, occ := range occurrences {
		switch direction {
		case DirectionIncome:
			pp.ExpectedIncome = pp.ExpectedIncome.Add(occ.Amount)
		case DirectionExpense:
			pp.ExpectedExpense = pp.ExpectedExpense.Add(occ.Amount)
			*expenses = append(*expenses, expenseOccurrence{
				date:     occ.EffectiveDate(),
				amount:   occ.Amount,
				category: category,
			})
		case DirectionTransfer:
			if len(accounts) == 2 {
				pp.AccountDeltas[accounts[0]] = pp.AccountDeltas[accounts[0]].Add(occ.Amount.Neg())
				pp.AccountDeltas[accounts[1]] = pp.AccountDeltas[accounts[1]].Add(occ.Amount)
			}
		}
	}
}

// transferAccounts recovers the from/to pair for a frozen transfer line from
// the matching active line. Snapshots freeze money, not account routing; a
// line deleted since archival simply contributes no deltas.
func transferAccounts(b Budget, line ArchivedLine) []AccountID {
	if line.Direction != DirectionTransfer {
		return nil
	}
	for _, active := range b.Lines {
		if active.Direction == line.Direction && active.Category == line.Category {
			return active.Accounts
		}
	}
	return nil
}

// =============================================================================
// SUMMARY STATISTICS
// =============================================================================

type expenseOccurrence struct {
	date     Date
	amount   Amount
	category string
}

func lowestPoint(periods []PeriodProjection) *LowestPoint {
	if len(periods) == 0 {
		return nil
	}
	lowest := LowestPoint{Period: periods[0].Period, EndBalance: periods[0].EndBalance}
	for _, pp := range periods[1:] {
		if pp.EndBalance < lowest.EndBalance {
			lowest = LowestPoint{Period: pp.Period, EndBalance: pp.EndBalance}
		}
	}
	return &lowest
}

func nextLargeExpense(expenses []expenseOccurrence, now Date, policy LargeExpensePolicy) *LargeExpense {
	threshold := policy.threshold(medianAbsolute(expenses))

	var next *LargeExpense
	for _, e := range expenses {
		if !e.date.After(now) {
			continue
		}
		if e.amount.Abs() <= threshold {
			continue
		}
		if next == nil || e.date.Before(next.Date) {
			next = &LargeExpense{Date: e.date, Amount: e.amount, Category: e.category}
		}
	}
	return next
}

func medianAbsolute(expenses []expenseOccurrence) Amount {
	if len(expenses) == 0 {
		return 0
	}
	abs := make([]Amount, len(expenses))
	for i, e := range expenses {
		abs[i] = e.amount.Abs()
	}
	sort.Slice(abs, func(i, j int) bool { return abs[i] < abs[j] })

	mid := len(abs) / 2
	if len(abs)%2 == 1 {
		return abs[mid]
	}
	return (abs[mid-1] + abs[mid]) / 2
}

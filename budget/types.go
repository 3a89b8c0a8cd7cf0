/*
Package budget provides the recurrence-and-forecast engine for personal
budgeting.

PURPOSE:
  This package turns abstract, possibly-recurring expected cash movements
  ("rent, 8000 on the 1st of every month, shifted to the next bank day")
  into concrete dated amounts, aggregates them into period-by-period balance
  projections, and freezes completed periods into immutable snapshots.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A signed quantity in the smallest currency unit
  - AmountPattern: A recurring-or-once amount rule with its own validity window
  - Occurrence: One concrete expected amount, date- or period-anchored
  - BudgetLine: The income/expense/transfer expectation that owns patterns
  - ArchivedLine: The frozen, immutable record of a completed period

DESIGN PRINCIPLES:
  1. Purity: Expansion and projection are side-effect-free and window-bounded
  2. Immutability: Archived records are written once and never mutated
  3. Type Safety: Strong typing for IDs prevents mixing budget/line/pattern IDs
  4. Idempotency: Archival relies on a storage uniqueness constraint, not luck

USAGE:
  pattern := budget.AmountPattern{
      Amount:    -800000,
      StartDate: budget.NewDate(2026, time.January, 1),
      Recurrence: budget.DateRecurring{
          Interval: 1,
          Unit:     budget.UnitMonthly,
          Monthly:  budget.MonthlyFixedDay{Day: 1},
          Adjust:   budget.AdjustNext,
          KeepInMonth: true,
      },
  }
  occs, err := expander.Expand(pattern, window)

SEE ALSO:
  - recurrence.go: The closed recurrence union and its validation
  - expand.go: Pattern expansion over a window
  - project.go: Forecast projection across periods
  - archive.go: Idempotent period archival
*/
package budget

import (
	"fmt"
	"time"
)

// =============================================================================
// AMOUNT - Signed quantity in the smallest currency unit
// =============================================================================

// Amount is money in the smallest currency unit (e.g. øre, cents). Signed:
// income patterns carry positive amounts, expense patterns negative ones.
type Amount int64

func (a Amount) Add(b Amount) Amount { return a + b }
func (a Amount) Neg() Amount         { return -a }
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}
func (a Amount) IsNegative() bool { return a < 0 }
func (a Amount) IsPositive() bool { return a > 0 }
func (a Amount) IsZero() bool     { return a == 0 }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type BudgetID string
type LineID string
type PatternID string
type AccountID string
type ArchiveID string

// =============================================================================
// DIRECTION - What a budget line models
// =============================================================================

type Direction string

const (
	DirectionIncome   Direction = "income"
	DirectionExpense  Direction = "expense"
	DirectionTransfer Direction = "transfer"
)

func (d Direction) IsValid() bool {
	switch d {
	case DirectionIncome, DirectionExpense, DirectionTransfer:
		return true
	}
	return false
}

// =============================================================================
// OCCURRENCE - One concrete expected amount
// =============================================================================

// Occurrence is the expansion output. Date is set for date-anchored
// occurrences and nil for period-anchored ones, which belong to the period
// they were generated for. Period is always populated.
type Occurrence struct {
	Date      *Date
	Period    Period
	Amount    Amount
	PatternID PatternID
}

// IsDateAnchored reports whether the occurrence carries a concrete date.
func (o Occurrence) IsDateAnchored() bool { return o.Date != nil }

// EffectiveDate returns the occurrence date, or the first day of its period
// for period-anchored occurrences. Used for ordering and statistics.
func (o Occurrence) EffectiveDate() Date {
	if o.Date != nil {
		return *o.Date
	}
	return o.Period.Start()
}

// =============================================================================
// AMOUNT PATTERN - A recurring-or-once amount rule
// =============================================================================

// AmountPattern belongs to exactly one budget line. Its validity range is
// [StartDate, EndDate], with nil EndDate meaning unbounded.
type AmountPattern struct {
	ID         PatternID
	Amount     Amount
	StartDate  Date
	EndDate    *Date
	Recurrence Recurrence

	// AccountSubset restricts the pattern to part of the line's account
	// pool; nil inherits the whole pool.
	AccountSubset []AccountID

	// NoDedup keeps every generated occurrence even when adjusted dates
	// coincide, to model intentionally accumulating same-day amounts.
	NoDedup bool
}

// Validate checks the pattern's invariants. Called once at construction;
// expansion assumes a valid pattern.
func (p AmountPattern) Validate() error {
	if p.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidPattern)
	}
	if p.Recurrence == nil {
		return fmt.Errorf("%w: recurrence is required", ErrInvalidPattern)
	}
	if err := p.Recurrence.Validate(); err != nil {
		return err
	}
	if p.EndDate != nil {
		if p.EndDate.Before(p.StartDate) {
			return fmt.Errorf("%w: end date %s before start date %s", ErrInvalidPattern, p.EndDate, p.StartDate)
		}
		if !p.Recurrence.Repeats() {
			return fmt.Errorf("%w: %s recurrence must not carry an end date", ErrInvalidPattern, p.Recurrence.Kind())
		}
	}
	return nil
}

// clip intersects a requested window with the pattern's own validity range.
// The second return value is false when they do not overlap.
func (p AmountPattern) clip(w Window) (Window, bool) {
	from := w.From
	if p.StartDate.After(from) {
		from = p.StartDate
	}
	to := w.To
	if p.EndDate != nil && p.EndDate.Before(to) {
		to = *p.EndDate
	}
	if from.After(to) {
		return Window{}, false
	}
	return Window{From: from, To: to}, true
}

// Intersects reports whether the pattern's validity range overlaps the window.
func (p AmountPattern) Intersects(w Window) bool {
	_, ok := p.clip(w)
	return ok
}

// =============================================================================
// BUDGET LINE - Owner of amount patterns
// =============================================================================

// BudgetLine is a named income/expense/transfer expectation. Patterns are
// ordered; overlapping ranges (seasonal variation) and sequential ranges
// (permanent changes) are both legal and never validated against each other.
type BudgetLine struct {
	ID       LineID
	BudgetID BudgetID

	// Category is the line's hierarchical category path, e.g. "home/rent".
	// Together with Direction it forms the line's archival identity.
	Category  string
	Direction Direction

	// Accounts is the line's account pool: one or more accounts for
	// income/expense, exactly [from, to] for transfers.
	Accounts []AccountID

	// Accumulate carries unused/overspent amounts into the next period.
	// Expense lines only.
	Accumulate bool

	Patterns []AmountPattern
}

func (l BudgetLine) Validate() error {
	if !l.Direction.IsValid() {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidLine, l.Direction)
	}
	if l.Category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidLine)
	}
	switch l.Direction {
	case DirectionTransfer:
		if len(l.Accounts) != 2 {
			return fmt.Errorf("%w: transfer line needs exactly two accounts, got %d", ErrInvalidLine, len(l.Accounts))
		}
		if l.Accounts[0] == l.Accounts[1] {
			return fmt.Errorf("%w: transfer accounts must be distinct", ErrInvalidLine)
		}
		if l.Accumulate {
			return fmt.Errorf("%w: accumulate applies to expense lines only", ErrInvalidLine)
		}
	default:
		if len(l.Accounts) < 1 {
			return fmt.Errorf("%w: %s line needs at least one account", ErrInvalidLine, l.Direction)
		}
		if l.Accumulate && l.Direction != DirectionExpense {
			return fmt.Errorf("%w: accumulate applies to expense lines only", ErrInvalidLine)
		}
	}
	pool := make(map[AccountID]bool, len(l.Accounts))
	for _, acc := range l.Accounts {
		pool[acc] = true
	}
	for i, p := range l.Patterns {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("pattern %d: %w", i, err)
		}
		for _, acc := range p.AccountSubset {
			if !pool[acc] {
				return fmt.Errorf("%w: pattern %d account subset references %q outside the line pool", ErrInvalidLine, i, acc)
			}
		}
	}
	return nil
}

// TransferFrom returns the source account of a transfer line.
func (l BudgetLine) TransferFrom() AccountID { return l.Accounts[0] }

// TransferTo returns the destination account of a transfer line.
func (l BudgetLine) TransferTo() AccountID { return l.Accounts[1] }

// =============================================================================
// BUDGET - Aggregate of lines
// =============================================================================

type Budget struct {
	ID        BudgetID
	Name      string
	Currency  string
	CreatedAt time.Time
	Lines     []BudgetLine
}

// =============================================================================
// ARCHIVED LINE - Immutable snapshot of one line for one period
// =============================================================================

// ArchivedLine freezes a budget line's identity fields and resolved
// occurrences for a completed period. Never mutated after creation;
// uniqueness on (budget, direction, category, period) is enforced by the
// store.
type ArchivedLine struct {
	ID          ArchiveID
	BudgetID    BudgetID
	Direction   Direction
	Category    string
	Accumulate  bool
	Period      Period
	Occurrences []Occurrence
	CreatedAt   time.Time
}

// ArchivedPeriod is the full frozen snapshot of one budget period.
type ArchivedPeriod struct {
	BudgetID BudgetID
	Period   Period
	Lines    []ArchivedLine
}

// Total sums all frozen occurrence amounts in the snapshot.
func (a *ArchivedPeriod) Total() Amount {
	var total Amount
	for _, line := range a.Lines {
		for _, occ := range line.Occurrences {
			total = total.Add(occ.Amount)
		}
	}
	return total
}

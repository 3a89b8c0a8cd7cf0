/*
store.go - Persistence interface for budgets, lines, patterns and archives

PURPOSE:
  Defines the interface between the engine and the database. Active budget
  data (budgets, lines, patterns) is mutable and forward-looking; archived
  lines are append-only and immutable.

KEY INTERFACES:
  Store:         Budget/line/pattern CRUD plus archive reads and writes
  SnapshotStore: The archive subset, all the projector needs for past periods
  TxStore:       Transactional operations (atomic multi-table writes)

IMMUTABILITY CONTRACT:
  Archived lines are written once via SaveArchivedLines and never updated
  or deleted. The uniqueness constraint on (budget, direction, category,
  period_year, period_month) is the source of truth for "already archived":
  a constraint hit surfaces as ErrSnapshotExists, which the archival
  service treats as success.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - budget/store/memory.go: In-memory for testing

SEE ALSO:
  - archive.go: Consumes TxStore for the read-compute-write sequence
  - project.go: Consumes SnapshotStore for frozen past periods
*/
package budget

import "context"

// =============================================================================
// STORE - Persistence for active budget data and frozen archives
// =============================================================================

// SnapshotStore reads and writes frozen period archives. Archived lines are
// append-only; there is no update or delete.
type SnapshotStore interface {
	// SaveArchivedLines persists a period's frozen lines atomically.
	// Returns an error wrapping ErrSnapshotExists when any line's
	// (budget, direction, category, period) identity is already archived.
	SaveArchivedLines(ctx context.Context, lines []ArchivedLine) error

	// GetArchivedPeriod returns the frozen snapshot for a budget period.
	// Returns ErrSnapshotNotFound when the period has not been archived.
	GetArchivedPeriod(ctx context.Context, budgetID BudgetID, period Period) (*ArchivedPeriod, error)

	// HasArchivedPeriod reports whether any line is archived for the period.
	HasArchivedPeriod(ctx context.Context, budgetID BudgetID, period Period) (bool, error)

	// ListArchivedPeriods returns the periods archived for a budget,
	// ordered oldest first.
	ListArchivedPeriods(ctx context.Context, budgetID BudgetID) ([]Period, error)
}

// Store is the full persistence surface: active budget data plus archives.
type Store interface {
	SnapshotStore

	// SaveBudget creates or updates a budget's own fields (not its lines).
	SaveBudget(ctx context.Context, b Budget) error

	// GetBudget returns a budget with its lines and patterns, ordered by
	// position. Returns ErrBudgetNotFound when missing.
	GetBudget(ctx context.Context, id BudgetID) (*Budget, error)

	// ListBudgets returns all budgets with their lines and patterns.
	ListBudgets(ctx context.Context) ([]Budget, error)

	// DeleteBudget removes a budget, its lines, patterns and archives.
	DeleteBudget(ctx context.Context, id BudgetID) error

	// SaveLine creates or updates a budget line together with its account
	// pool and patterns, replacing both wholesale.
	SaveLine(ctx context.Context, line BudgetLine) error

	// GetLine returns one line with its patterns.
	// Returns ErrLineNotFound when missing.
	GetLine(ctx context.Context, id LineID) (*BudgetLine, error)

	// DeleteLine removes a line and its patterns. Archives are untouched.
	DeleteLine(ctx context.Context, id LineID) error

	// SavePattern creates or updates an amount pattern on a line.
	SavePattern(ctx context.Context, lineID LineID, pattern AmountPattern) error

	// GetPattern returns one pattern. Returns ErrPatternNotFound when missing.
	GetPattern(ctx context.Context, id PatternID) (*AmountPattern, error)

	// DeletePattern removes a pattern. Archives are untouched.
	DeletePattern(ctx context.Context, id PatternID) error
}

// =============================================================================
// TRANSACTIONAL STORE - For atomic operations across multiple writes
// =============================================================================

// TxStore wraps Store with transaction support. The archival service uses
// it so a period's frozen lines land all-or-nothing.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}

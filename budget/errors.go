/*
errors.go - Centralized error types for the budget engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Outer layers (stores, API) wrap these errors with additional context.

ERROR CATEGORIES:
  1. Configuration errors - Invalid recurrence/pattern/line definitions,
     rejected at construction and never seen by expansion
  2. Not-found errors - Missing budgets, lines, patterns
  3. Archival errors - Uniqueness conflicts, which callers treat as success

USAGE:
  The archival race is not an error to callers:

    if errors.Is(err, budget.ErrSnapshotExists) {
        // re-read and return the existing snapshot
    }

SEE ALSO:
  - archive.go: Turns ErrSnapshotExists into an idempotent no-op
  - store/sqlite: Maps SQLite constraint violations onto these sentinels
*/
package budget

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSnapshotExists is returned when an archived line for the same
	// (budget, direction, category, period) already exists. Expected under
	// concurrent rollover triggers; archival treats it as success.
	ErrSnapshotExists = errors.New("period snapshot already exists")

	// ErrBudgetNotFound is returned when a referenced budget doesn't exist.
	ErrBudgetNotFound = errors.New("budget not found")

	// ErrLineNotFound is returned when a referenced budget line doesn't exist.
	ErrLineNotFound = errors.New("budget line not found")

	// ErrPatternNotFound is returned when a referenced pattern doesn't exist.
	ErrPatternNotFound = errors.New("amount pattern not found")

	// ErrSnapshotNotFound is returned when no archive exists for a period.
	ErrSnapshotNotFound = errors.New("period snapshot not found")

	// ErrInvalidRecurrence is returned when a recurrence variant is missing
	// a required sub-field or carries an out-of-range value.
	ErrInvalidRecurrence = errors.New("invalid recurrence")

	// ErrInvalidPattern is returned when an amount pattern violates its
	// range invariants.
	ErrInvalidPattern = errors.New("invalid amount pattern")

	// ErrInvalidLine is returned when a budget line is malformed.
	ErrInvalidLine = errors.New("invalid budget line")

	// ErrInvalidBudget is returned when a budget definition is malformed.
	ErrInvalidBudget = errors.New("invalid budget")

	// ErrInvalidWindow is returned when a requested range ends before it starts.
	ErrInvalidWindow = errors.New("invalid window: end before start")

	// ErrInvalidPeriod is returned when a period is malformed.
	ErrInvalidPeriod = errors.New("invalid period")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// SnapshotExistsError reports which frozen line caused an archival conflict.
type SnapshotExistsError struct {
	BudgetID  BudgetID
	Direction Direction
	Category  string
	Period    Period
}

func (e *SnapshotExistsError) Error() string {
	return fmt.Sprintf("snapshot already exists: budget %s %s/%s for %s",
		e.BudgetID, e.Direction, e.Category, e.Period)
}

func (e *SnapshotExistsError) Unwrap() error {
	return ErrSnapshotExists
}

// RecurrenceFieldError reports a missing or out-of-range recurrence sub-field.
type RecurrenceFieldError struct {
	Kind   RecurrenceKind
	Field  string
	Reason string
}

func (e *RecurrenceFieldError) Error() string {
	return fmt.Sprintf("%s recurrence: %s %s", e.Kind, e.Field, e.Reason)
}

func (e *RecurrenceFieldError) Unwrap() error {
	return ErrInvalidRecurrence
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRecurrence) ||
		errors.Is(err, ErrInvalidPattern) ||
		errors.Is(err, ErrInvalidLine) ||
		errors.Is(err, ErrInvalidBudget) ||
		errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBudgetNotFound) ||
		errors.Is(err, ErrLineNotFound) ||
		errors.Is(err, ErrPatternNotFound) ||
		errors.Is(err, ErrSnapshotNotFound)
}

// IsConflict returns true if the error is an archival uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSnapshotExists)
}

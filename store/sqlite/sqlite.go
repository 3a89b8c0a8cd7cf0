/*
Package sqlite provides the SQLite-backed implementation of budget.TxStore.

PURPOSE:
  Implements the full persistence surface (budget.Store, budget.SnapshotStore,
  budget.TxStore) using SQLite. In production, the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  budgets:               Budget headers
  budget_lines:          Income/expense/transfer expectations, ordered
  line_accounts:         Each line's account pool, ordered
  amount_patterns:       Recurrence rules as JSON, ordered within their line
  archived_lines:        Immutable frozen-period records
  archived_occurrences:  The resolved amounts inside each frozen record

IMMUTABILITY ENFORCEMENT:
  Archived lines are insert-only: no UPDATE or DELETE statements exist for
  them outside of DeleteBudget. The unique index on archived_lines
  (budget_id, direction, category, period_year, period_month) is the
  correctness anchor for concurrent archival: the first writer wins and
  later writers get a constraint violation, surfaced as
  budget.SnapshotExistsError.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety plus a single pooled connection.
  In production with PostgreSQL, database-level concurrency control
  handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/budget.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  archiver := budget.NewArchiver(store, expander)

MIGRATION:
  Versioned SQL migrations are embedded in the binary and applied with
  golang-migrate on New(). See migrate.go.

SEE ALSO:
  - budget/store.go: Interface definitions
  - budget/store/memory.go: In-memory implementation for testing
  - budget/archive.go: The archival sequence relying on the unique index
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/budget-engine/budget"
)

// Store implements budget.TxStore over a SQLite database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// querier is the shared surface of *sql.DB and *sql.Tx. Every statement
// helper takes one, so the same code runs inside and outside WithTx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens (or creates) the database at dbPath and applies pending
// migrations. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases visible across calls
	// and serializes writers ahead of SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// BUDGETS
// =============================================================================

// SaveBudget creates or updates a budget header. Lines are saved separately.
func (s *Store) SaveBudget(ctx context.Context, b budget.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveBudget(ctx, s.db, b)
}

func (s *Store) saveBudget(ctx context.Context, q querier, b budget.Budget) error {
	query := `
		INSERT INTO budgets (id, name, currency, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			currency = excluded.currency
	`

	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := q.ExecContext(ctx, query, b.ID, b.Name, b.Currency, createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// GetBudget returns a budget with its lines and patterns in stored order.
func (s *Store) GetBudget(ctx context.Context, id budget.BudgetID) (*budget.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getBudget(ctx, s.db, id)
}

func (s *Store) getBudget(ctx context.Context, q querier, id budget.BudgetID) (*budget.Budget, error) {
	var (
		b         budget.Budget
		createdAt string
	)
	err := q.QueryRowContext(ctx,
		"SELECT id, name, currency, created_at FROM budgets WHERE id = ?", id,
	).Scan(&b.ID, &b.Name, &b.Currency, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", budget.ErrBudgetNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	lines, err := s.linesForBudget(ctx, q, b.ID)
	if err != nil {
		return nil, err
	}
	b.Lines = lines
	return &b, nil
}

// ListBudgets returns all budgets with their lines, ordered by ID.
func (s *Store) ListBudgets(ctx context.Context) ([]budget.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listBudgets(ctx, s.db)
}

func (s *Store) listBudgets(ctx context.Context, q querier) ([]budget.Budget, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, currency, created_at FROM budgets ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	var budgets []budget.Budget
	for rows.Next() {
		var (
			b         budget.Budget
			createdAt string
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Currency, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Close before the follow-up queries: the pool has a single connection.
	rows.Close()

	for i := range budgets {
		lines, err := s.linesForBudget(ctx, q, budgets[i].ID)
		if err != nil {
			return nil, err
		}
		budgets[i].Lines = lines
	}
	return budgets, nil
}

// DeleteBudget removes a budget, its lines, patterns and archives.
func (s *Store) DeleteBudget(ctx context.Context, id budget.BudgetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.deleteBudget(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) deleteBudget(ctx context.Context, q querier, id budget.BudgetID) error {
	res, err := q.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", budget.ErrBudgetNotFound, id)
	}
	// Lines, accounts and patterns cascade from the budget row. Archives
	// carry no foreign key and go explicitly; their occurrences cascade.
	if _, err := q.ExecContext(ctx, "DELETE FROM archived_lines WHERE budget_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete archived lines: %w", err)
	}
	return nil
}

// =============================================================================
// BUDGET LINES
// =============================================================================

// SaveLine creates or updates a line, replacing its account pool and
// patterns wholesale.
func (s *Store) SaveLine(ctx context.Context, line budget.BudgetLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.saveLine(ctx, tx, line); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) saveLine(ctx context.Context, q querier, line budget.BudgetLine) error {
	if err := s.requireBudget(ctx, q, line.BudgetID); err != nil {
		return err
	}

	// New lines go to the end of the budget; updates keep their slot.
	query := `
		INSERT INTO budget_lines (id, budget_id, category, direction, accumulate, position)
		VALUES (?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM budget_lines WHERE budget_id = ?))
		ON CONFLICT(id) DO UPDATE SET
			budget_id = excluded.budget_id,
			category = excluded.category,
			direction = excluded.direction,
			accumulate = excluded.accumulate
	`
	if _, err := q.ExecContext(ctx, query,
		line.ID, line.BudgetID, line.Category, line.Direction, line.Accumulate,
		line.BudgetID); err != nil {
		return fmt.Errorf("failed to save line: %w", err)
	}

	if _, err := q.ExecContext(ctx, "DELETE FROM line_accounts WHERE line_id = ?", line.ID); err != nil {
		return fmt.Errorf("failed to clear line accounts: %w", err)
	}
	for i, acc := range line.Accounts {
		if _, err := q.ExecContext(ctx,
			"INSERT INTO line_accounts (line_id, account_id, position) VALUES (?, ?, ?)",
			line.ID, acc, i); err != nil {
			return fmt.Errorf("failed to save line account: %w", err)
		}
	}

	if _, err := q.ExecContext(ctx, "DELETE FROM amount_patterns WHERE line_id = ?", line.ID); err != nil {
		return fmt.Errorf("failed to clear patterns: %w", err)
	}
	for i, p := range line.Patterns {
		if err := s.writePattern(ctx, q, line.ID, p, i); err != nil {
			return err
		}
	}
	return nil
}

// GetLine returns one line with its account pool and patterns.
func (s *Store) GetLine(ctx context.Context, id budget.LineID) (*budget.BudgetLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getLine(ctx, s.db, id)
}

func (s *Store) getLine(ctx context.Context, q querier, id budget.LineID) (*budget.BudgetLine, error) {
	var l budget.BudgetLine
	err := q.QueryRowContext(ctx, `
		SELECT id, budget_id, category, direction, accumulate
		FROM budget_lines WHERE id = ?`, id,
	).Scan(&l.ID, &l.BudgetID, &l.Category, &l.Direction, &l.Accumulate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", budget.ErrLineNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load line: %w", err)
	}

	if l.Accounts, err = s.accountsForLine(ctx, q, id); err != nil {
		return nil, err
	}
	if l.Patterns, err = s.patternsForLine(ctx, q, id); err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteLine removes a line and its patterns. Archives are untouched.
func (s *Store) DeleteLine(ctx context.Context, id budget.LineID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteLine(ctx, s.db, id)
}

func (s *Store) deleteLine(ctx context.Context, q querier, id budget.LineID) error {
	res, err := q.ExecContext(ctx, "DELETE FROM budget_lines WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete line: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", budget.ErrLineNotFound, id)
	}
	return nil
}

func (s *Store) linesForBudget(ctx context.Context, q querier, budgetID budget.BudgetID) ([]budget.BudgetLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, budget_id, category, direction, accumulate
		FROM budget_lines
		WHERE budget_id = ?
		ORDER BY position ASC`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}

	var lines []budget.BudgetLine
	for rows.Next() {
		var l budget.BudgetLine
		if err := rows.Scan(&l.ID, &l.BudgetID, &l.Category, &l.Direction, &l.Accumulate); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range lines {
		if lines[i].Accounts, err = s.accountsForLine(ctx, q, lines[i].ID); err != nil {
			return nil, err
		}
		if lines[i].Patterns, err = s.patternsForLine(ctx, q, lines[i].ID); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func (s *Store) accountsForLine(ctx context.Context, q querier, lineID budget.LineID) ([]budget.AccountID, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT account_id FROM line_accounts WHERE line_id = ? ORDER BY position ASC", lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line accounts: %w", err)
	}
	defer rows.Close()

	var accounts []budget.AccountID
	for rows.Next() {
		var acc budget.AccountID
		if err := rows.Scan(&acc); err != nil {
			return nil, fmt.Errorf("failed to scan line account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// =============================================================================
// AMOUNT PATTERNS
// =============================================================================

// SavePattern creates or updates a pattern on a line, preserving pattern
// order. New patterns append at the end.
func (s *Store) SavePattern(ctx context.Context, lineID budget.LineID, pattern budget.AmountPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.savePattern(ctx, s.db, lineID, pattern)
}

func (s *Store) savePattern(ctx context.Context, q querier, lineID budget.LineID, pattern budget.AmountPattern) error {
	if err := s.requireLine(ctx, q, lineID); err != nil {
		return err
	}

	var position int
	err := q.QueryRowContext(ctx,
		"SELECT position FROM amount_patterns WHERE id = ?", pattern.ID).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		err = q.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(position) + 1, 0) FROM amount_patterns WHERE line_id = ?",
			lineID).Scan(&position)
	}
	if err != nil {
		return fmt.Errorf("failed to resolve pattern position: %w", err)
	}

	return s.writePattern(ctx, q, lineID, pattern, position)
}

func (s *Store) writePattern(ctx context.Context, q querier, lineID budget.LineID, p budget.AmountPattern, position int) error {
	recurrence, err := budget.EncodeRecurrence(p.Recurrence)
	if err != nil {
		return fmt.Errorf("pattern %s: %w", p.ID, err)
	}

	var endDate *string
	if p.EndDate != nil {
		d := p.EndDate.String()
		endDate = &d
	}
	var subset *string
	if len(p.AccountSubset) > 0 {
		raw, err := json.Marshal(p.AccountSubset)
		if err != nil {
			return fmt.Errorf("pattern %s account subset: %w", p.ID, err)
		}
		j := string(raw)
		subset = &j
	}

	query := `
		INSERT INTO amount_patterns
		(id, line_id, amount, start_date, end_date, recurrence_json, subset_json, no_dedup, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			line_id = excluded.line_id,
			amount = excluded.amount,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			recurrence_json = excluded.recurrence_json,
			subset_json = excluded.subset_json,
			no_dedup = excluded.no_dedup
	`
	if _, err := q.ExecContext(ctx, query,
		p.ID, lineID, int64(p.Amount), p.StartDate.String(), endDate,
		string(recurrence), subset, p.NoDedup, position); err != nil {
		return fmt.Errorf("failed to save pattern: %w", err)
	}
	return nil
}

// GetPattern returns one pattern with its recurrence decoded.
func (s *Store) GetPattern(ctx context.Context, id budget.PatternID) (*budget.AmountPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getPattern(ctx, s.db, id)
}

func (s *Store) getPattern(ctx context.Context, q querier, id budget.PatternID) (*budget.AmountPattern, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, amount, start_date, end_date, recurrence_json, subset_json, no_dedup
		FROM amount_patterns WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query pattern: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", budget.ErrPatternNotFound, id)
	}
	p, err := scanPattern(rows)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePattern removes a pattern. Archives are untouched.
func (s *Store) DeletePattern(ctx context.Context, id budget.PatternID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deletePattern(ctx, s.db, id)
}

func (s *Store) deletePattern(ctx context.Context, q querier, id budget.PatternID) error {
	res, err := q.ExecContext(ctx, "DELETE FROM amount_patterns WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete pattern: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", budget.ErrPatternNotFound, id)
	}
	return nil
}

func (s *Store) patternsForLine(ctx context.Context, q querier, lineID budget.LineID) ([]budget.AmountPattern, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, amount, start_date, end_date, recurrence_json, subset_json, no_dedup
		FROM amount_patterns
		WHERE line_id = ?
		ORDER BY position ASC`, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	var patterns []budget.AmountPattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

func scanPattern(rows *sql.Rows) (budget.AmountPattern, error) {
	var (
		p          budget.AmountPattern
		startDate  string
		endDate    sql.NullString
		recurrence []byte
		subset     sql.NullString
	)
	if err := rows.Scan(&p.ID, &p.Amount, &startDate, &endDate, &recurrence, &subset, &p.NoDedup); err != nil {
		return p, fmt.Errorf("failed to scan pattern: %w", err)
	}

	p.StartDate, _ = budget.ParseDate(startDate)
	if endDate.Valid {
		d, _ := budget.ParseDate(endDate.String)
		p.EndDate = &d
	}

	rec, err := budget.DecodeRecurrence(recurrence)
	if err != nil {
		return p, fmt.Errorf("pattern %s: %w", p.ID, err)
	}
	p.Recurrence = rec

	if subset.Valid && subset.String != "" {
		if err := json.Unmarshal([]byte(subset.String), &p.AccountSubset); err != nil {
			return p, fmt.Errorf("pattern %s account subset: %w", p.ID, err)
		}
	}
	return p, nil
}

// =============================================================================
// ARCHIVED LINES (budget.SnapshotStore interface)
// =============================================================================

// SaveArchivedLines persists a period's frozen lines atomically. A
// uniqueness conflict on any line rolls the whole batch back and surfaces
// as budget.SnapshotExistsError.
func (s *Store) SaveArchivedLines(ctx context.Context, lines []budget.ArchivedLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.saveArchivedLines(ctx, tx, lines); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) saveArchivedLines(ctx context.Context, q querier, lines []budget.ArchivedLine) error {
	for _, line := range lines {
		if err := s.insertArchivedLine(ctx, q, line); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertArchivedLine(ctx context.Context, q querier, line budget.ArchivedLine) error {
	createdAt := line.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO archived_lines
		(id, budget_id, direction, category, accumulate, period_year, period_month, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		line.ID, line.BudgetID, line.Direction, line.Category, line.Accumulate,
		line.Period.Year, int(line.Period.Month), createdAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return &budget.SnapshotExistsError{
				BudgetID:  line.BudgetID,
				Direction: line.Direction,
				Category:  line.Category,
				Period:    line.Period,
			}
		}
		return fmt.Errorf("failed to save archived line: %w", err)
	}

	for i, occ := range line.Occurrences {
		var occDate *string
		if occ.Date != nil {
			d := occ.Date.String()
			occDate = &d
		}
		if _, err := q.ExecContext(ctx, `
			INSERT INTO archived_occurrences
			(archive_id, position, occurrence_date, period_year, period_month, amount, pattern_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			line.ID, i, occDate, occ.Period.Year, int(occ.Period.Month),
			int64(occ.Amount), occ.PatternID); err != nil {
			return fmt.Errorf("failed to save archived occurrence: %w", err)
		}
	}
	return nil
}

// GetArchivedPeriod returns the frozen snapshot for a budget period, lines
// ordered by category then direction.
func (s *Store) GetArchivedPeriod(ctx context.Context, budgetID budget.BudgetID, period budget.Period) (*budget.ArchivedPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getArchivedPeriod(ctx, s.db, budgetID, period)
}

func (s *Store) getArchivedPeriod(ctx context.Context, q querier, budgetID budget.BudgetID, period budget.Period) (*budget.ArchivedPeriod, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, budget_id, direction, category, accumulate, created_at
		FROM archived_lines
		WHERE budget_id = ? AND period_year = ? AND period_month = ?
		ORDER BY category ASC, direction ASC`,
		budgetID, period.Year, int(period.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to query archived lines: %w", err)
	}

	var lines []budget.ArchivedLine
	for rows.Next() {
		var (
			line      budget.ArchivedLine
			createdAt string
		)
		if err := rows.Scan(&line.ID, &line.BudgetID, &line.Direction, &line.Category,
			&line.Accumulate, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan archived line: %w", err)
		}
		line.Period = period
		line.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: budget %s period %s", budget.ErrSnapshotNotFound, budgetID, period)
	}

	for i := range lines {
		if lines[i].Occurrences, err = s.occurrencesForArchive(ctx, q, lines[i].ID); err != nil {
			return nil, err
		}
	}
	return &budget.ArchivedPeriod{BudgetID: budgetID, Period: period, Lines: lines}, nil
}

func (s *Store) occurrencesForArchive(ctx context.Context, q querier, id budget.ArchiveID) ([]budget.Occurrence, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT occurrence_date, period_year, period_month, amount, pattern_id
		FROM archived_occurrences
		WHERE archive_id = ?
		ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query archived occurrences: %w", err)
	}
	defer rows.Close()

	var occurrences []budget.Occurrence
	for rows.Next() {
		var (
			occ   budget.Occurrence
			date  sql.NullString
			year  int
			month int
		)
		if err := rows.Scan(&date, &year, &month, &occ.Amount, &occ.PatternID); err != nil {
			return nil, fmt.Errorf("failed to scan archived occurrence: %w", err)
		}
		occ.Period = budget.NewPeriod(year, time.Month(month))
		if date.Valid {
			d, _ := budget.ParseDate(date.String)
			occ.Date = &d
		}
		occurrences = append(occurrences, occ)
	}
	return occurrences, rows.Err()
}

// HasArchivedPeriod reports whether any line is archived for the period.
func (s *Store) HasArchivedPeriod(ctx context.Context, budgetID budget.BudgetID, period budget.Period) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.hasArchivedPeriod(ctx, s.db, budgetID, period)
}

func (s *Store) hasArchivedPeriod(ctx context.Context, q querier, budgetID budget.BudgetID, period budget.Period) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM archived_lines
		WHERE budget_id = ? AND period_year = ? AND period_month = ?`,
		budgetID, period.Year, int(period.Month)).Scan(&count)
	return count > 0, err
}

// ListArchivedPeriods returns the archived periods for a budget, oldest first.
func (s *Store) ListArchivedPeriods(ctx context.Context, budgetID budget.BudgetID) ([]budget.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listArchivedPeriods(ctx, s.db, budgetID)
}

func (s *Store) listArchivedPeriods(ctx context.Context, q querier, budgetID budget.BudgetID) ([]budget.Period, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT DISTINCT period_year, period_month
		FROM archived_lines
		WHERE budget_id = ?
		ORDER BY period_year ASC, period_month ASC`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query archived periods: %w", err)
	}
	defer rows.Close()

	var periods []budget.Period
	for rows.Next() {
		var year, month int
		if err := rows.Scan(&year, &month); err != nil {
			return nil, fmt.Errorf("failed to scan archived period: %w", err)
		}
		periods = append(periods, budget.NewPeriod(year, time.Month(month)))
	}
	return periods, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (budget.TxStore interface)
// =============================================================================

// WithTx executes fn within a single database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(budget.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&txStore{tx: tx, parent: s}); err != nil {
		return err
	}
	return tx.Commit()
}

// txStore routes every Store call through one open transaction. The
// parent's mutex is held by WithTx for the transaction's lifetime.
type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) SaveBudget(ctx context.Context, b budget.Budget) error {
	return ts.parent.saveBudget(ctx, ts.tx, b)
}

func (ts *txStore) GetBudget(ctx context.Context, id budget.BudgetID) (*budget.Budget, error) {
	return ts.parent.getBudget(ctx, ts.tx, id)
}

func (ts *txStore) ListBudgets(ctx context.Context) ([]budget.Budget, error) {
	return ts.parent.listBudgets(ctx, ts.tx)
}

func (ts *txStore) DeleteBudget(ctx context.Context, id budget.BudgetID) error {
	return ts.parent.deleteBudget(ctx, ts.tx, id)
}

func (ts *txStore) SaveLine(ctx context.Context, line budget.BudgetLine) error {
	return ts.parent.saveLine(ctx, ts.tx, line)
}

func (ts *txStore) GetLine(ctx context.Context, id budget.LineID) (*budget.BudgetLine, error) {
	return ts.parent.getLine(ctx, ts.tx, id)
}

func (ts *txStore) DeleteLine(ctx context.Context, id budget.LineID) error {
	return ts.parent.deleteLine(ctx, ts.tx, id)
}

func (ts *txStore) SavePattern(ctx context.Context, lineID budget.LineID, pattern budget.AmountPattern) error {
	return ts.parent.savePattern(ctx, ts.tx, lineID, pattern)
}

func (ts *txStore) GetPattern(ctx context.Context, id budget.PatternID) (*budget.AmountPattern, error) {
	return ts.parent.getPattern(ctx, ts.tx, id)
}

func (ts *txStore) DeletePattern(ctx context.Context, id budget.PatternID) error {
	return ts.parent.deletePattern(ctx, ts.tx, id)
}

func (ts *txStore) SaveArchivedLines(ctx context.Context, lines []budget.ArchivedLine) error {
	return ts.parent.saveArchivedLines(ctx, ts.tx, lines)
}

func (ts *txStore) GetArchivedPeriod(ctx context.Context, budgetID budget.BudgetID, period budget.Period) (*budget.ArchivedPeriod, error) {
	return ts.parent.getArchivedPeriod(ctx, ts.tx, budgetID, period)
}

func (ts *txStore) HasArchivedPeriod(ctx context.Context, budgetID budget.BudgetID, period budget.Period) (bool, error) {
	return ts.parent.hasArchivedPeriod(ctx, ts.tx, budgetID, period)
}

func (ts *txStore) ListArchivedPeriods(ctx context.Context, budgetID budget.BudgetID) ([]budget.Period, error) {
	return ts.parent.listArchivedPeriods(ctx, ts.tx, budgetID)
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) requireBudget(ctx context.Context, q querier, id budget.BudgetID) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM budgets WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", budget.ErrBudgetNotFound, id)
	}
	return err
}

func (s *Store) requireLine(ctx context.Context, q querier, id budget.LineID) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM budget_lines WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", budget.ErrLineNotFound, id)
	}
	return err
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

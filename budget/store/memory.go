// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	budgets      map[budget.BudgetID]budget.Budget
	lines        map[budget.BudgetID][]budget.BudgetLine
	lineIndex    map[budget.LineID]budget.BudgetID
	patternIndex map[budget.PatternID]budget.LineID
	archived     map[archiveKey]budget.ArchivedLine
}

type archiveKey struct {
	BudgetID  budget.BudgetID
	Direction budget.Direction
	Category  string
	Period    budget.Period
}

func NewMemory() *Memory {
	return &Memory{
		budgets:      make(map[budget.BudgetID]budget.Budget),
		lines:        make(map[budget.BudgetID][]budget.BudgetLine),
		lineIndex:    make(map[budget.LineID]budget.BudgetID),
		patternIndex: make(map[budget.PatternID]budget.LineID),
		archived:     make(map[archiveKey]budget.ArchivedLine),
	}
}

// ===== BUDGETS =====

// SaveBudget upserts the budget header. Lines are saved separately.
func (m *Memory) SaveBudget(_ context.Context, b budget.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveBudgetLocked(b)
}

func (m *Memory) GetBudget(_ context.Context, id budget.BudgetID) (*budget.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getBudgetLocked(id)
}

func (m *Memory) ListBudgets(_ context.Context) ([]budget.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listBudgetsLocked()
}

func (m *Memory) DeleteBudget(_ context.Context, id budget.BudgetID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteBudgetLocked(id)
}

func (m *Memory) saveBudgetLocked(b budget.Budget) error {
	header := b
	header.Lines = nil
	m.budgets[b.ID] = header
	return nil
}

func (m *Memory) getBudgetLocked(id budget.BudgetID) (*budget.Budget, error) {
	header, ok := m.budgets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", budget.ErrBudgetNotFound, id)
	}
	b := header
	for _, line := range m.lines[id] {
		b.Lines = append(b.Lines, copyLine(line))
	}
	return &b, nil
}

func (m *Memory) listBudgetsLocked() ([]budget.Budget, error) {
	result := make([]budget.Budget, 0, len(m.budgets))
	for id := range m.budgets {
		b, err := m.getBudgetLocked(id)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) deleteBudgetLocked(id budget.BudgetID) error {
	if _, ok := m.budgets[id]; !ok {
		return fmt.Errorf("%w: %s", budget.ErrBudgetNotFound, id)
	}
	for _, line := range m.lines[id] {
		for _, p := range line.Patterns {
			delete(m.patternIndex, p.ID)
		}
		delete(m.lineIndex, line.ID)
	}
	delete(m.lines, id)
	delete(m.budgets, id)
	for k := range m.archived {
		if k.BudgetID == id {
			delete(m.archived, k)
		}
	}
	return nil
}

// ===== BUDGET LINES =====

func (m *Memory) SaveLine(_ context.Context, line budget.BudgetLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLineLocked(line)
}

func (m *Memory) GetLine(_ context.Context, id budget.LineID) (*budget.BudgetLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLineLocked(id)
}

func (m *Memory) DeleteLine(_ context.Context, id budget.LineID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLineLocked(id)
}

func (m *Memory) saveLineLocked(line budget.BudgetLine) error {
	if _, ok := m.budgets[line.BudgetID]; !ok {
		return fmt.Errorf("%w: %s", budget.ErrBudgetNotFound, line.BudgetID)
	}

	// A line moving between budgets leaves no copy behind.
	if prev, ok := m.lineIndex[line.ID]; ok && prev != line.BudgetID {
		if err := m.deleteLineLocked(line.ID); err != nil {
			return err
		}
	}

	stored := copyLine(line)
	lines := m.lines[line.BudgetID]
	replaced := false
	for i := range lines {
		if lines[i].ID == line.ID {
			for _, p := range lines[i].Patterns {
				delete(m.patternIndex, p.ID)
			}
			lines[i] = stored
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, stored)
	}
	m.lines[line.BudgetID] = lines
	m.lineIndex[line.ID] = line.BudgetID
	for _, p := range stored.Patterns {
		m.patternIndex[p.ID] = line.ID
	}
	return nil
}

func (m *Memory) getLineLocked(id budget.LineID) (*budget.BudgetLine, error) {
	budgetID, ok := m.lineIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", budget.ErrLineNotFound, id)
	}
	for _, line := range m.lines[budgetID] {
		if line.ID == id {
			out := copyLine(line)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", budget.ErrLineNotFound, id)
}

func (m *Memory) deleteLineLocked(id budget.LineID) error {
	budgetID, ok := m.lineIndex[id]
	if !ok {
		return fmt.Errorf("%w: %s", budget.ErrLineNotFound, id)
	}
	lines := m.lines[budgetID]
	for i := range lines {
		if lines[i].ID == id {
			for _, p := range lines[i].Patterns {
				delete(m.patternIndex, p.ID)
			}
			m.lines[budgetID] = append(lines[:i], lines[i+1:]...)
			break
		}
	}
	delete(m.lineIndex, id)
	return nil
}

// ===== AMOUNT PATTERNS =====

// SavePattern upserts a pattern on a line, preserving pattern order.
func (m *Memory) SavePattern(_ context.Context, lineID budget.LineID, pattern budget.AmountPattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.savePatternLocked(lineID, pattern)
}

func (m *Memory) GetPattern(_ context.Context, id budget.PatternID) (*budget.AmountPattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getPatternLocked(id)
}

func (m *Memory) DeletePattern(_ context.Context, id budget.PatternID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletePatternLocked(id)
}

func (m *Memory) savePatternLocked(lineID budget.LineID, pattern budget.AmountPattern) error {
	budgetID, ok := m.lineIndex[lineID]
	if !ok {
		return fmt.Errorf("%w: %s", budget.ErrLineNotFound, lineID)
	}

	stored := copyPattern(pattern)
	lines := m.lines[budgetID]
	for i := range lines {
		if lines[i].ID != lineID {
			continue
		}
		replaced := false
		for j := range lines[i].Patterns {
			if lines[i].Patterns[j].ID == pattern.ID {
				lines[i].Patterns[j] = stored
				replaced = true
				break
			}
		}
		if !replaced {
			lines[i].Patterns = append(lines[i].Patterns, stored)
		}
		m.lines[budgetID] = lines
		m.patternIndex[pattern.ID] = lineID
		return nil
	}
	return fmt.Errorf("%w: %s", budget.ErrLineNotFound, lineID)
}

func (m *Memory) getPatternLocked(id budget.PatternID) (*budget.AmountPattern, error) {
	lineID, ok := m.patternIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", budget.ErrPatternNotFound, id)
	}
	line, err := m.getLineLocked(lineID)
	if err != nil {
		return nil, err
	}
	for _, p := range line.Patterns {
		if p.ID == id {
			out := copyPattern(p)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", budget.ErrPatternNotFound, id)
}

func (m *Memory) deletePatternLocked(id budget.PatternID) error {
	lineID, ok := m.patternIndex[id]
	if !ok {
		return fmt.Errorf("%w: %s", budget.ErrPatternNotFound, id)
	}
	budgetID := m.lineIndex[lineID]
	lines := m.lines[budgetID]
	for i := range lines {
		if lines[i].ID != lineID {
			continue
		}
		for j := range lines[i].Patterns {
			if lines[i].Patterns[j].ID == id {
				lines[i].Patterns = append(lines[i].Patterns[:j], lines[i].Patterns[j+1:]...)
				break
			}
		}
	}
	delete(m.patternIndex, id)
	return nil
}

// ===== ARCHIVED SNAPSHOTS =====

// SaveArchivedLines writes a set of frozen lines atomically. Any key
// conflict fails the whole batch before anything is written.
func (m *Memory) SaveArchivedLines(_ context.Context, lines []budget.ArchivedLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveArchivedLinesLocked(lines)
}

func (m *Memory) GetArchivedPeriod(_ context.Context, budgetID budget.BudgetID, period budget.Period) (*budget.ArchivedPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getArchivedPeriodLocked(budgetID, period)
}

func (m *Memory) HasArchivedPeriod(_ context.Context, budgetID budget.BudgetID, period budget.Period) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasArchivedPeriodLocked(budgetID, period)
}

func (m *Memory) ListArchivedPeriods(_ context.Context, budgetID budget.BudgetID) ([]budget.Period, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listArchivedPeriodsLocked(budgetID)
}

func (m *Memory) saveArchivedLinesLocked(lines []budget.ArchivedLine) error {
	// Check all keys first (atomic check)
	for _, line := range lines {
		k := archiveKeyOf(line)
		if _, exists := m.archived[k]; exists {
			return &budget.SnapshotExistsError{
				BudgetID:  line.BudgetID,
				Direction: line.Direction,
				Category:  line.Category,
				Period:    line.Period,
			}
		}
	}

	// Write all (atomic write)
	for _, line := range lines {
		m.archived[archiveKeyOf(line)] = copyArchivedLine(line)
	}
	return nil
}

func (m *Memory) getArchivedPeriodLocked(budgetID budget.BudgetID, period budget.Period) (*budget.ArchivedPeriod, error) {
	var lines []budget.ArchivedLine
	for k, line := range m.archived {
		if k.BudgetID == budgetID && k.Period == period {
			lines = append(lines, copyArchivedLine(line))
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: budget %s period %s", budget.ErrSnapshotNotFound, budgetID, period)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Category != lines[j].Category {
			return lines[i].Category < lines[j].Category
		}
		return lines[i].Direction < lines[j].Direction
	})
	return &budget.ArchivedPeriod{BudgetID: budgetID, Period: period, Lines: lines}, nil
}

func (m *Memory) hasArchivedPeriodLocked(budgetID budget.BudgetID, period budget.Period) (bool, error) {
	for k := range m.archived {
		if k.BudgetID == budgetID && k.Period == period {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) listArchivedPeriodsLocked(budgetID budget.BudgetID) ([]budget.Period, error) {
	seen := make(map[budget.Period]bool)
	for k := range m.archived {
		if k.BudgetID == budgetID {
			seen[k.Period] = true
		}
	}
	periods := make([]budget.Period, 0, len(seen))
	for p := range seen {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Year != periods[j].Year {
			return periods[i].Year < periods[j].Year
		}
		return periods[i].Month < periods[j].Month
	})
	return periods, nil
}

func archiveKeyOf(line budget.ArchivedLine) archiveKey {
	return archiveKey{
		BudgetID:  line.BudgetID,
		Direction: line.Direction,
		Category:  line.Category,
		Period:    line.Period,
	}
}

// ===== COPY HELPERS =====

// Stored values are copied on both write and read so callers can never
// mutate store state through shared slices or pointers.

func copyLine(line budget.BudgetLine) budget.BudgetLine {
	out := line
	out.Accounts = append([]budget.AccountID(nil), line.Accounts...)
	out.Patterns = make([]budget.AmountPattern, len(line.Patterns))
	for i, p := range line.Patterns {
		out.Patterns[i] = copyPattern(p)
	}
	return out
}

func copyPattern(p budget.AmountPattern) budget.AmountPattern {
	out := p
	if p.EndDate != nil {
		end := *p.EndDate
		out.EndDate = &end
	}
	out.AccountSubset = append([]budget.AccountID(nil), p.AccountSubset...)
	return out
}

func copyArchivedLine(line budget.ArchivedLine) budget.ArchivedLine {
	out := line
	out.Occurrences = make([]budget.Occurrence, len(line.Occurrences))
	for i, occ := range line.Occurrences {
		out.Occurrences[i] = occ
		if occ.Date != nil {
			d := *occ.Date
			out.Occurrences[i].Date = &d
		}
	}
	return out
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(budget.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()

	if err := fn(&txMemoryView{parent: tm.Memory}); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

func (tm *TxMemory) snapshot() memorySnapshot {
	s := memorySnapshot{
		budgets:      make(map[budget.BudgetID]budget.Budget, len(tm.budgets)),
		lines:        make(map[budget.BudgetID][]budget.BudgetLine, len(tm.lines)),
		lineIndex:    make(map[budget.LineID]budget.BudgetID, len(tm.lineIndex)),
		patternIndex: make(map[budget.PatternID]budget.LineID, len(tm.patternIndex)),
		archived:     make(map[archiveKey]budget.ArchivedLine, len(tm.archived)),
	}
	for k, v := range tm.budgets {
		s.budgets[k] = v
	}
	for k, v := range tm.lines {
		lines := make([]budget.BudgetLine, len(v))
		for i, line := range v {
			lines[i] = copyLine(line)
		}
		s.lines[k] = lines
	}
	for k, v := range tm.lineIndex {
		s.lineIndex[k] = v
	}
	for k, v := range tm.patternIndex {
		s.patternIndex[k] = v
	}
	for k, v := range tm.archived {
		s.archived[k] = copyArchivedLine(v)
	}
	return s
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.budgets = s.budgets
	tm.lines = s.lines
	tm.lineIndex = s.lineIndex
	tm.patternIndex = s.patternIndex
	tm.archived = s.archived
}

type memorySnapshot struct {
	budgets      map[budget.BudgetID]budget.Budget
	lines        map[budget.BudgetID][]budget.BudgetLine
	lineIndex    map[budget.LineID]budget.BudgetID
	patternIndex map[budget.PatternID]budget.LineID
	archived     map[archiveKey]budget.ArchivedLine
}

// txMemoryView runs store operations against the parent without taking the
// lock WithTx already holds.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) SaveBudget(_ context.Context, b budget.Budget) error {
	return tv.parent.saveBudgetLocked(b)
}

func (tv *txMemoryView) GetBudget(_ context.Context, id budget.BudgetID) (*budget.Budget, error) {
	return tv.parent.getBudgetLocked(id)
}

func (tv *txMemoryView) ListBudgets(_ context.Context) ([]budget.Budget, error) {
	return tv.parent.listBudgetsLocked()
}

func (tv *txMemoryView) DeleteBudget(_ context.Context, id budget.BudgetID) error {
	return tv.parent.deleteBudgetLocked(id)
}

func (tv *txMemoryView) SaveLine(_ context.Context, line budget.BudgetLine) error {
	return tv.parent.saveLineLocked(line)
}

func (tv *txMemoryView) GetLine(_ context.Context, id budget.LineID) (*budget.BudgetLine, error) {
	return tv.parent.getLineLocked(id)
}

func (tv *txMemoryView) DeleteLine(_ context.Context, id budget.LineID) error {
	return tv.parent.deleteLineLocked(id)
}

func (tv *txMemoryView) SavePattern(_ context.Context, lineID budget.LineID, pattern budget.AmountPattern) error {
	return tv.parent.savePatternLocked(lineID, pattern)
}

func (tv *txMemoryView) GetPattern(_ context.Context, id budget.PatternID) (*budget.AmountPattern, error) {
	return tv.parent.getPatternLocked(id)
}

func (tv *txMemoryView) DeletePattern(_ context.Context, id budget.PatternID) error {
	return tv.parent.deletePatternLocked(id)
}

func (tv *txMemoryView) SaveArchivedLines(_ context.Context, lines []budget.ArchivedLine) error {
	return tv.parent.saveArchivedLinesLocked(lines)
}

func (tv *txMemoryView) GetArchivedPeriod(_ context.Context, budgetID budget.BudgetID, period budget.Period) (*budget.ArchivedPeriod, error) {
	return tv.parent.getArchivedPeriodLocked(budgetID, period)
}

func (tv *txMemoryView) HasArchivedPeriod(_ context.Context, budgetID budget.BudgetID, period budget.Period) (bool, error) {
	return tv.parent.hasArchivedPeriodLocked(budgetID, period)
}

func (tv *txMemoryView) ListArchivedPeriods(_ context.Context, budgetID budget.BudgetID) ([]budget.Period, error) {
	return tv.parent.listArchivedPeriodsLocked(budgetID)
}

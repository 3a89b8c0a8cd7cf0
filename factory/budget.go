/*
Package factory provides JSON to Go budget conversion.

PURPOSE:
  Converts JSON budget definitions into budget.Budget, budget.BudgetLine and
  budget.AmountPattern values. This enables budget configuration without code
  changes - users define lines and recurrences in JSON, and the factory
  creates validated domain structs.

WHY JSON?
  - The HTTP API accepts and returns budgets in this shape
  - Demo fixtures and seed data live as JSON literals
  - Version control for budget definitions
  - The recurrence field names match the storage codec, so a stored
    recurrence document is also a valid factory document

JSON SCHEMA:
  {
    "id": "household",
    "name": "Household",
    "currency": "DKK",
    "lines": [
      {
        "category": "income/salary",
        "direction": "income",
        "accounts": ["acc-main"],
        "patterns": [
          {
            "amount_decimal": "32000.00",
            "start_date": "2026-01-01",
            "recurrence": {
              "kind": "date_recurring",
              "unit": "monthly",
              "monthly": {"mode": "bank_day", "k": 1, "from_end": true}
            }
          }
        ]
      }
    ]
  }

KEY FEATURES:
  - Validates against the domain invariants before anything is stored
  - Sets sensible defaults (interval 1, currency DKK, fixed day taken from
    the start date, missing recurrence means once)
  - Amounts accepted as integer minor units or as exact decimal strings;
    decimal parsing never goes through a float
  - Round-trips budgets back to JSON for API responses

USAGE:
  factory := NewBudgetFactory()

  // From JSON string
  b, err := factory.ParseBudget(jsonString)

  // From decoded DTOs (the API decodes the request body itself)
  line, err := factory.LineFromJSON(budgetID, lineJSON)

  // Back out for a response
  dto := factory.ToJSON(b)

SEE ALSO:
  - budget/types.go: Domain type definitions and their Validate methods
  - budget/recurrence.go: Recurrence union and its storage codec
  - api/handlers.go: HTTP layer built on these DTOs
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// BudgetJSON is the JSON representation of a budget.
type BudgetJSON struct {
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name"`
	Currency  string     `json:"currency,omitempty"` // Default DKK
	CreatedAt string     `json:"created_at,omitempty"`
	Lines     []LineJSON `json:"lines,omitempty"`
}

// LineJSON is the JSON representation of a budget line.
type LineJSON struct {
	ID         string        `json:"id,omitempty"`
	Category   string        `json:"category"`
	Direction  string        `json:"direction"`            // income, expense, transfer
	Accounts   []string      `json:"accounts"`             // Transfer lines: exactly [from, to]
	Accumulate bool          `json:"accumulate,omitempty"` // Expense lines only
	Patterns   []PatternJSON `json:"patterns,omitempty"`
}

// PatternJSON is the JSON representation of an amount pattern. Amounts are
// signed: income positive, expenses negative.
type PatternJSON struct {
	ID            string          `json:"id,omitempty"`
	Amount        int64           `json:"amount,omitempty"`         // Minor units (øre, cents)
	AmountDecimal string          `json:"amount_decimal,omitempty"` // "-9500.00" form; wins over amount
	StartDate     string          `json:"start_date"`               // 2006-01-02
	EndDate       string          `json:"end_date,omitempty"`
	Recurrence    *RecurrenceJSON `json:"recurrence,omitempty"` // Default: once
	AccountSubset []string        `json:"account_subset,omitempty"`
	NoDedup       bool            `json:"no_dedup,omitempty"`
}

// RecurrenceJSON mirrors the storage codec's field names so recurrence
// documents are interchangeable between the API and the store.
type RecurrenceJSON struct {
	Kind        string       `json:"kind"`               // once, date_recurring, period_once, period_recurring
	Interval    int          `json:"interval,omitempty"` // Default 1
	Unit        string       `json:"unit,omitempty"`     // daily/weekly/monthly/yearly; monthly/yearly for period kinds
	Monthly     *MonthlyJSON `json:"monthly,omitempty"`  // Default for monthly units: fixed_day from start_date
	Adjust      string       `json:"adjust,omitempty"`   // none, next, previous
	KeepInMonth bool         `json:"keep_in_month,omitempty"`
	Months      []int        `json:"months,omitempty"` // period_recurring yearly: qualifying months 1-12
}

// MonthlyJSON selects which day of a qualifying month an occurrence lands on.
type MonthlyJSON struct {
	Mode    string `json:"mode"`              // fixed_day, relative_weekday, bank_day
	Day     int    `json:"day,omitempty"`     // fixed_day; defaults to start_date's day
	Ordinal int    `json:"ordinal,omitempty"` // relative_weekday: 1-4, or -1 for last
	Weekday string `json:"weekday,omitempty"` // relative_weekday: "monday".."sunday"
	K       int    `json:"k,omitempty"`       // bank_day; defaults to 1
	FromEnd bool   `json:"from_end,omitempty"`
}

// =============================================================================
// BUDGET FACTORY
// =============================================================================

// BudgetFactory converts JSON budgets to validated domain structs.
type BudgetFactory struct{}

// NewBudgetFactory creates a new budget factory.
func NewBudgetFactory() *BudgetFactory {
	return &BudgetFactory{}
}

// ParseBudget parses a JSON string into a validated Budget.
func (f *BudgetFactory) ParseBudget(jsonStr string) (budget.Budget, error) {
	var bj BudgetJSON
	if err := json.Unmarshal([]byte(jsonStr), &bj); err != nil {
		return budget.Budget{}, fmt.Errorf("%w: %v", budget.ErrInvalidBudget, err)
	}
	return f.BudgetFromJSON(bj)
}

// BudgetFromJSON converts BudgetJSON to a validated Budget.
func (f *BudgetFactory) BudgetFromJSON(bj BudgetJSON) (budget.Budget, error) {
	if strings.TrimSpace(bj.Name) == "" {
		return budget.Budget{}, fmt.Errorf("%w: name is required", budget.ErrInvalidBudget)
	}

	b := budget.Budget{
		ID:       budget.BudgetID(bj.ID),
		Name:     bj.Name,
		Currency: bj.Currency,
	}
	if b.Currency == "" {
		b.Currency = "DKK"
	}

	seen := make(map[string]bool, len(bj.Lines))
	for i, lj := range bj.Lines {
		line, err := f.LineFromJSON(b.ID, lj)
		if err != nil {
			return budget.Budget{}, fmt.Errorf("line %d: %w", i, err)
		}
		// Direction plus category is the line's archival identity and must
		// be unique within a budget.
		key := string(line.Direction) + ":" + line.Category
		if seen[key] {
			return budget.Budget{}, fmt.Errorf("%w: duplicate %s line for category %q", budget.ErrInvalidBudget, line.Direction, line.Category)
		}
		seen[key] = true
		b.Lines = append(b.Lines, line)
	}
	return b, nil
}

// LineFromJSON converts LineJSON to a validated BudgetLine owned by budgetID.
func (f *BudgetFactory) LineFromJSON(budgetID budget.BudgetID, lj LineJSON) (budget.BudgetLine, error) {
	line := budget.BudgetLine{
		ID:         budget.LineID(lj.ID),
		BudgetID:   budgetID,
		Category:   strings.TrimSpace(lj.Category),
		Direction:  budget.Direction(strings.ToLower(strings.TrimSpace(lj.Direction))),
		Accumulate: lj.Accumulate,
	}
	for _, acc := range lj.Accounts {
		line.Accounts = append(line.Accounts, budget.AccountID(acc))
	}
	for i, pj := range lj.Patterns {
		p, err := f.PatternFromJSON(pj)
		if err != nil {
			return budget.BudgetLine{}, fmt.Errorf("pattern %d: %w", i, err)
		}
		line.Patterns = append(line.Patterns, p)
	}

	if err := line.Validate(); err != nil {
		return budget.BudgetLine{}, err
	}
	return line, nil
}

// PatternFromJSON converts PatternJSON to a validated AmountPattern.
func (f *BudgetFactory) PatternFromJSON(pj PatternJSON) (budget.AmountPattern, error) {
	start, err := budget.ParseDate(pj.StartDate)
	if err != nil {
		return budget.AmountPattern{}, fmt.Errorf("%w: start_date: %v", budget.ErrInvalidPattern, err)
	}

	amount, err := parseAmount(pj)
	if err != nil {
		return budget.AmountPattern{}, err
	}

	recurrence, err := recurrenceFromJSON(pj.Recurrence, start)
	if err != nil {
		return budget.AmountPattern{}, err
	}

	p := budget.AmountPattern{
		ID:         budget.PatternID(pj.ID),
		Amount:     amount,
		StartDate:  start,
		Recurrence: recurrence,
		NoDedup:    pj.NoDedup,
	}
	if pj.EndDate != "" {
		end, err := budget.ParseDate(pj.EndDate)
		if err != nil {
			return budget.AmountPattern{}, fmt.Errorf("%w: end_date: %v", budget.ErrInvalidPattern, err)
		}
		p.EndDate = &end
	}
	for _, acc := range pj.AccountSubset {
		p.AccountSubset = append(p.AccountSubset, budget.AccountID(acc))
	}

	if err := p.Validate(); err != nil {
		return budget.AmountPattern{}, err
	}
	return p, nil
}

// parseAmount resolves the two amount encodings. The decimal string wins so
// clients can send human-readable amounts without computing minor units.
func parseAmount(pj PatternJSON) (budget.Amount, error) {
	if pj.AmountDecimal == "" {
		return budget.Amount(pj.Amount), nil
	}
	d, err := decimal.NewFromString(pj.AmountDecimal)
	if err != nil {
		return 0, fmt.Errorf("%w: amount_decimal %q: %v", budget.ErrInvalidPattern, pj.AmountDecimal, err)
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: amount_decimal %q has more than two decimal places", budget.ErrInvalidPattern, pj.AmountDecimal)
	}
	return budget.Amount(minor.IntPart()), nil
}

// =============================================================================
// RECURRENCE PARSING
// =============================================================================

func recurrenceFromJSON(rj *RecurrenceJSON, start budget.Date) (budget.Recurrence, error) {
	if rj == nil {
		return budget.Once{}, nil
	}

	var r budget.Recurrence
	switch budget.RecurrenceKind(rj.Kind) {
	case budget.KindOnce:
		r = budget.Once{}

	case budget.KindPeriodOnce:
		r = budget.PeriodOnce{}

	case budget.KindDateRecurring:
		dr := budget.DateRecurring{
			Interval:    defaultInterval(rj.Interval),
			Unit:        budget.RecurrenceUnit(rj.Unit),
			Adjust:      budget.AdjustPolicy(rj.Adjust),
			KeepInMonth: rj.KeepInMonth,
		}
		switch dr.Unit {
		case budget.UnitMonthly, budget.UnitYearly:
			mode, err := monthlyFromJSON(rj.Monthly, start)
			if err != nil {
				return nil, err
			}
			dr.Monthly = mode
		default:
			if rj.Monthly != nil {
				return nil, &budget.RecurrenceFieldError{
					Kind: budget.KindDateRecurring, Field: "monthly",
					Reason: fmt.Sprintf("not allowed for %s unit", dr.Unit),
				}
			}
		}
		r = dr

	case budget.KindPeriodRecurring:
		pr := budget.PeriodRecurring{
			Interval: defaultInterval(rj.Interval),
			Unit:     budget.PeriodUnit(rj.Unit),
		}
		for _, m := range rj.Months {
			pr.Months = append(pr.Months, time.Month(m))
		}
		r = pr

	default:
		return nil, fmt.Errorf("%w: unknown kind %q", budget.ErrInvalidRecurrence, rj.Kind)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func monthlyFromJSON(mj *MonthlyJSON, start budget.Date) (budget.MonthlyMode, error) {
	// Omitted monthly mode falls back to the start date's calendar day.
	if mj == nil {
		return budget.MonthlyFixedDay{Day: start.Day()}, nil
	}

	switch mj.Mode {
	case "fixed_day":
		day := mj.Day
		if day == 0 {
			day = start.Day()
		}
		return budget.MonthlyFixedDay{Day: day}, nil

	case "relative_weekday":
		wd, err := parseWeekday(mj.Weekday)
		if err != nil {
			return nil, err
		}
		return budget.MonthlyRelativeWeekday{
			Ordinal: budget.WeekOrdinal(mj.Ordinal),
			Weekday: wd,
		}, nil

	case "bank_day":
		k := mj.K
		if k == 0 {
			k = 1
		}
		return budget.MonthlyBankDay{K: k, FromEnd: mj.FromEnd}, nil

	default:
		return nil, fmt.Errorf("%w: unknown monthly mode %q", budget.ErrInvalidRecurrence, mj.Mode)
	}
}

func defaultInterval(interval int) int {
	if interval == 0 {
		return 1
	}
	return interval
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return time.Sunday, fmt.Errorf("%w: unknown weekday %q", budget.ErrInvalidRecurrence, s)
	}
}

// =============================================================================
// RENDERING BACK TO JSON
// =============================================================================

// ToJSON converts a Budget to its JSON representation.
func (f *BudgetFactory) ToJSON(b budget.Budget) BudgetJSON {
	bj := BudgetJSON{
		ID:       string(b.ID),
		Name:     b.Name,
		Currency: b.Currency,
	}
	if !b.CreatedAt.IsZero() {
		bj.CreatedAt = b.CreatedAt.UTC().Format(time.RFC3339)
	}
	for _, line := range b.Lines {
		bj.Lines = append(bj.Lines, f.LineToJSON(line))
	}
	return bj
}

// LineToJSON converts a BudgetLine to its JSON representation.
func (f *BudgetFactory) LineToJSON(line budget.BudgetLine) LineJSON {
	lj := LineJSON{
		ID:         string(line.ID),
		Category:   line.Category,
		Direction:  string(line.Direction),
		Accumulate: line.Accumulate,
	}
	for _, acc := range line.Accounts {
		lj.Accounts = append(lj.Accounts, string(acc))
	}
	for _, p := range line.Patterns {
		lj.Patterns = append(lj.Patterns, f.PatternToJSON(p))
	}
	return lj
}

// PatternToJSON converts an AmountPattern to its JSON representation, with
// the amount rendered both as minor units and as a decimal string.
func (f *BudgetFactory) PatternToJSON(p budget.AmountPattern) PatternJSON {
	pj := PatternJSON{
		ID:            string(p.ID),
		Amount:        int64(p.Amount),
		AmountDecimal: decimal.New(int64(p.Amount), -2).StringFixed(2),
		StartDate:     p.StartDate.String(),
		Recurrence:    recurrenceToJSON(p.Recurrence),
		NoDedup:       p.NoDedup,
	}
	if p.EndDate != nil {
		pj.EndDate = p.EndDate.String()
	}
	for _, acc := range p.AccountSubset {
		pj.AccountSubset = append(pj.AccountSubset, string(acc))
	}
	return pj
}

func recurrenceToJSON(r budget.Recurrence) *RecurrenceJSON {
	if r == nil {
		return nil
	}
	rj := &RecurrenceJSON{Kind: string(r.Kind())}
	switch v := r.(type) {
	case budget.Once, budget.PeriodOnce:
	case budget.DateRecurring:
		rj.Interval = v.Interval
		rj.Unit = string(v.Unit)
		rj.Adjust = string(v.Adjust)
		rj.KeepInMonth = v.KeepInMonth
		rj.Monthly = monthlyToJSON(v.Monthly)
	case budget.PeriodRecurring:
		rj.Interval = v.Interval
		rj.Unit = string(v.Unit)
		for _, m := range v.Months {
			rj.Months = append(rj.Months, int(m))
		}
	}
	return rj
}

func monthlyToJSON(m budget.MonthlyMode) *MonthlyJSON {
	switch v := m.(type) {
	case budget.MonthlyFixedDay:
		return &MonthlyJSON{Mode: "fixed_day", Day: v.Day}
	case budget.MonthlyRelativeWeekday:
		return &MonthlyJSON{
			Mode:    "relative_weekday",
			Ordinal: int(v.Ordinal),
			Weekday: strings.ToLower(v.Weekday.String()),
		}
	case budget.MonthlyBankDay:
		return &MonthlyJSON{Mode: "bank_day", K: v.K, FromEnd: v.FromEnd}
	default:
		return nil
	}
}

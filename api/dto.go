/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific rendering (decimal strings next to minor units)
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Every amount appears twice: "amount" as signed integer minor units (the
  canonical value) and "amount_decimal" as an exact two-decimal string for
  display. The decimal is rendered with shopspring/decimal so no float is
  ever involved.

TYPES:
  Budgets:
    Budget documents travel as factory.BudgetJSON / LineJSON / PatternJSON;
    the factory owns that schema.

  Occurrences:
    OccurrenceDTO

  Forecast:
    ForecastDTO, PeriodProjectionDTO, AccountDeltaDTO, LowestPointDTO,
    LargeExpenseDTO

  Archives:
    ArchiveRequest, ArchivedPeriodDTO, ArchivedLineDTO

  Calendar:
    HolidayDTO, BankDayDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

SEE ALSO:
  - handlers.go: Uses these types
  - factory/budget.go: BudgetJSON schema
*/
package api

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// OCCURRENCES
// =============================================================================

// OccurrenceDTO represents one expected money movement. Date-anchored
// occurrences carry "date"; period-anchored ones only "period".
type OccurrenceDTO struct {
	Date          string `json:"date,omitempty"`
	Period        string `json:"period"`
	EffectiveDate string `json:"effective_date"`
	Amount        int64  `json:"amount"`
	AmountDecimal string `json:"amount_decimal"`
	PatternID     string `json:"pattern_id,omitempty"`
}

// =============================================================================
// FORECAST
// =============================================================================

// ForecastDTO is the projected balance development over a period range.
type ForecastDTO struct {
	BudgetID         string                `json:"budget_id"`
	Periods          []PeriodProjectionDTO `json:"periods"`
	LowestPoint      *LowestPointDTO       `json:"lowest_point,omitempty"`
	NextLargeExpense *LargeExpenseDTO      `json:"next_large_expense,omitempty"`
	ArchivedPeriods  []string              `json:"archived_periods,omitempty"` // Periods frozen by this request
	GeneratedAt      string                `json:"generated_at"`
}

// PeriodProjectionDTO is one month of the forecast.
type PeriodProjectionDTO struct {
	Period                 string            `json:"period"`
	ExpectedIncome         int64             `json:"expected_income"`
	ExpectedIncomeDecimal  string            `json:"expected_income_decimal"`
	ExpectedExpense        int64             `json:"expected_expense"`
	ExpectedExpenseDecimal string            `json:"expected_expense_decimal"`
	StartBalance           int64             `json:"start_balance"`
	EndBalance             int64             `json:"end_balance"`
	EndBalanceDecimal      string            `json:"end_balance_decimal"`
	AccountDeltas          []AccountDeltaDTO `json:"account_deltas,omitempty"`
	Frozen                 bool              `json:"frozen"`
}

// AccountDeltaDTO is a transfer-driven balance change on one account.
type AccountDeltaDTO struct {
	AccountID    string `json:"account_id"`
	Delta        int64  `json:"delta"`
	DeltaDecimal string `json:"delta_decimal"`
}

// LowestPointDTO marks the forecast month with the lowest end balance.
type LowestPointDTO struct {
	Period            string `json:"period"`
	EndBalance        int64  `json:"end_balance"`
	EndBalanceDecimal string `json:"end_balance_decimal"`
}

// LargeExpenseDTO flags the next materially large expense after now.
type LargeExpenseDTO struct {
	Date          string `json:"date"`
	Amount        int64  `json:"amount"`
	AmountDecimal string `json:"amount_decimal"`
	Category      string `json:"category"`
}

// =============================================================================
// ARCHIVES
// =============================================================================

// ArchiveRequest names the period to freeze.
type ArchiveRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// ArchivedPeriodDTO is a frozen period snapshot.
type ArchivedPeriodDTO struct {
	BudgetID      string            `json:"budget_id"`
	Period        string            `json:"period"`
	Total         int64             `json:"total"`
	TotalDecimal  string            `json:"total_decimal"`
	Lines         []ArchivedLineDTO `json:"lines"`
	AlreadyExists bool              `json:"already_exists,omitempty"`
}

// ArchivedLineDTO is one frozen line identity with its occurrences.
type ArchivedLineDTO struct {
	ID          string          `json:"id"`
	Direction   string          `json:"direction"`
	Category    string          `json:"category"`
	Accumulate  bool            `json:"accumulate,omitempty"`
	Occurrences []OccurrenceDTO `json:"occurrences"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// HolidayDTO is a single bank holiday.
type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// BankDayDTO answers a bank-day lookup for one date.
type BankDayDTO struct {
	Date            string `json:"date"`
	BankDay         bool   `json:"bank_day"`
	NextBankDay     string `json:"next_bank_day"`
	PreviousBankDay string `json:"previous_bank_day"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

// dec renders minor units as an exact two-decimal string.
func dec(a budget.Amount) string {
	return decimal.New(int64(a), -2).StringFixed(2)
}

func toOccurrenceDTO(occ budget.Occurrence) OccurrenceDTO {
	dto := OccurrenceDTO{
		Period:        occ.Period.String(),
		EffectiveDate: occ.EffectiveDate().String(),
		Amount:        int64(occ.Amount),
		AmountDecimal: dec(occ.Amount),
		PatternID:     string(occ.PatternID),
	}
	if occ.Date != nil {
		dto.Date = occ.Date.String()
	}
	return dto
}

func toOccurrenceDTOs(occs []budget.Occurrence) []OccurrenceDTO {
	dtos := make([]OccurrenceDTO, len(occs))
	for i, occ := range occs {
		dtos[i] = toOccurrenceDTO(occ)
	}
	return dtos
}

func toForecastDTO(p *budget.Projection, generatedAt string) ForecastDTO {
	dto := ForecastDTO{
		BudgetID:    string(p.BudgetID),
		Periods:     make([]PeriodProjectionDTO, len(p.Periods)),
		GeneratedAt: generatedAt,
	}
	for i, pp := range p.Periods {
		dto.Periods[i] = toPeriodProjectionDTO(pp)
	}
	if p.LowestPoint != nil {
		dto.LowestPoint = &LowestPointDTO{
			Period:            p.LowestPoint.Period.String(),
			EndBalance:        int64(p.LowestPoint.EndBalance),
			EndBalanceDecimal: dec(p.LowestPoint.EndBalance),
		}
	}
	if p.NextLargeExpense != nil {
		dto.NextLargeExpense = &LargeExpenseDTO{
			Date:          p.NextLargeExpense.Date.String(),
			Amount:        int64(p.NextLargeExpense.Amount),
			AmountDecimal: dec(p.NextLargeExpense.Amount),
			Category:      p.NextLargeExpense.Category,
		}
	}
	return dto
}

func toPeriodProjectionDTO(pp budget.PeriodProjection) PeriodProjectionDTO {
	dto := PeriodProjectionDTO{
		Period:                 pp.Period.String(),
		ExpectedIncome:         int64(pp.ExpectedIncome),
		ExpectedIncomeDecimal:  dec(pp.ExpectedIncome),
		ExpectedExpense:        int64(pp.ExpectedExpense),
		ExpectedExpenseDecimal: dec(pp.ExpectedExpense),
		StartBalance:           int64(pp.StartBalance),
		EndBalance:             int64(pp.EndBalance),
		EndBalanceDecimal:      dec(pp.EndBalance),
		Frozen:                 pp.Frozen,
	}
	// Deterministic order for clients and tests.
	accounts := make([]budget.AccountID, 0, len(pp.AccountDeltas))
	for acc := range pp.AccountDeltas {
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })
	for _, acc := range accounts {
		delta := pp.AccountDeltas[acc]
		dto.AccountDeltas = append(dto.AccountDeltas, AccountDeltaDTO{
			AccountID:    string(acc),
			Delta:        int64(delta),
			DeltaDecimal: dec(delta),
		})
	}
	return dto
}

func toArchivedPeriodDTO(ap *budget.ArchivedPeriod, alreadyExists bool) ArchivedPeriodDTO {
	total := ap.Total()
	dto := ArchivedPeriodDTO{
		BudgetID:      string(ap.BudgetID),
		Period:        ap.Period.String(),
		Total:         int64(total),
		TotalDecimal:  dec(total),
		Lines:         make([]ArchivedLineDTO, len(ap.Lines)),
		AlreadyExists: alreadyExists,
	}
	for i, line := range ap.Lines {
		dto.Lines[i] = ArchivedLineDTO{
			ID:          string(line.ID),
			Direction:   string(line.Direction),
			Category:    line.Category,
			Accumulate:  line.Accumulate,
			Occurrences: toOccurrenceDTOs(line.Occurrences),
		}
	}
	return dto
}

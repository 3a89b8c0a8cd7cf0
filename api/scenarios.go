/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built budgets that populate the database with realistic
	data for testing and demos. Each scenario creates a budget with lines
	and patterns that demonstrate specific features.

AVAILABLE SCENARIOS:

	household:             Salary, rent, transfers to savings, Danish
	                       bank-day and weekend adjustment rules
	freelancer:            Irregular income, b-skat months, quarterly VAT
	paycheck-to-paycheck:  Tight margins, lowest-point and large-expense
	                       warnings in the forecast

HOW SCENARIOS WORK:
 1. Delete the scenario budget if a previous load left one behind
 2. Build the budget document (same JSON schema as the API accepts)
 3. Convert via factory (validation included)
 4. Save budget and lines in one transaction

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "household"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create document function: xxxBudgetJSON()
 3. Add case to LoadScenario handler

NOTE:

	Scenario budgets use fixed IDs, so reloading replaces them in place.
	Other budgets are untouched.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
  - factory/budget.go: Budget JSON definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "household",
		Name:        "Household",
		Description: "Two-account household: salary on the last bank day, rent pushed off weekends, savings transfer, yearly insurance",
	},
	{
		ID:          "freelancer",
		Name:        "Freelancer",
		Description: "Business account with b-skat months, quarterly VAT and a monthly owner draw",
	},
	{
		ID:          "paycheck-to-paycheck",
		Name:        "Paycheck to Paycheck",
		Description: "Tight margins where a one-off car repair drives the balance to its lowest point",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario loads a predefined scenario budget.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var doc factory.BudgetJSON
	switch req.ScenarioID {
	case "household":
		doc = householdBudgetJSON()
	case "freelancer":
		doc = freelancerBudgetJSON()
	case "paycheck-to-paycheck":
		doc = paycheckToPaycheckBudgetJSON()
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err := h.loadScenarioBudget(r.Context(), doc); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "loaded",
		"scenario":  req.ScenarioID,
		"budget_id": doc.ID,
	})
}

// DemoScenario loads the household scenario. Shortcut for first runs.
func (h *Handler) DemoScenario(w http.ResponseWriter, r *http.Request) {
	doc := householdBudgetJSON()
	if err := h.loadScenarioBudget(r.Context(), doc); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "loaded",
		"scenario":  "household",
		"budget_id": doc.ID,
	})
}

// loadScenarioBudget replaces the scenario budget, archives included.
func (h *Handler) loadScenarioBudget(ctx context.Context, doc factory.BudgetJSON) error {
	if err := h.Store.DeleteBudget(ctx, budget.BudgetID(doc.ID)); err != nil && !budget.IsNotFound(err) {
		return err
	}

	b, err := h.Factory.BudgetFromJSON(doc)
	if err != nil {
		return err
	}
	return h.saveBudgetTree(ctx, b)
}

// =============================================================================
// SCENARIO DOCUMENTS
// =============================================================================

// householdBudgetJSON is a two-account Danish household. Salary lands on
// the last bank day of the month, rent is due on the 1st but never earlier
// and never in the previous month, and the savings transfer moves money
// between own accounts without touching the headline totals.
func householdBudgetJSON() factory.BudgetJSON {
	return factory.BudgetJSON{
		ID:       "scenario-household",
		Name:     "Household",
		Currency: "DKK",
		Lines: []factory.LineJSON{
			{
				ID:        "hh-salary",
				Category:  "income/salary",
				Direction: "income",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "hh-salary-monthly",
					AmountDecimal: "38000.00",
					StartDate:     "2026-01-01",
					Recurrence: &factory.RecurrenceJSON{
						Kind: "date_recurring",
						Unit: "monthly",
						Monthly: &factory.MonthlyJSON{
							Mode:    "bank_day",
							K:       1,
							FromEnd: true,
						},
					},
				}},
			},
			{
				ID:        "hh-rent",
				Category:  "home/rent",
				Direction: "expense",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "hh-rent-monthly",
					AmountDecimal: "-9500.00",
					StartDate:     "2026-01-01",
					Recurrence: &factory.RecurrenceJSON{
						Kind:        "date_recurring",
						Unit:        "monthly",
						Monthly:     &factory.MonthlyJSON{Mode: "fixed_day", Day: 1},
						Adjust:      "next",
						KeepInMonth: true,
					},
				}},
			},
			{
				ID:        "hh-groceries",
				Category:  "food/groceries",
				Direction: "expense",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "hh-groceries-monthly",
					AmountDecimal: "-4800.00",
					StartDate:     "2026-01-01",
					Recurrence:    &factory.RecurrenceJSON{Kind: "period_recurring", Unit: "monthly"},
				}},
			},
			{
				ID:        "hh-utilities",
				Category:  "home/utilities",
				Direction: "expense",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "hh-utilities-quarterly",
					AmountDecimal: "-2700.00",
					StartDate:     "2026-02-01",
					Recurrence:    &factory.RecurrenceJSON{Kind: "period_recurring", Unit: "monthly", Interval: 3},
				}},
			},
			{
				ID:        "hh-insurance",
				Category:  "insurance/home",
				Direction: "expense",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "hh-insurance-biannual",
					AmountDecimal: "-3100.00",
					StartDate:     "2026-01-01",
					Recurrence: &factory.RecurrenceJSON{
						Kind:   "period_recurring",
						Unit:   "yearly",
						Months: []int{1, 7},
					},
				}},
			},
			{
				ID:        "hh-transport",
				Category:  "transport/commute",
				Direction: "expense",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "hh-transport-monthly",
					AmountDecimal: "-750.00",
					StartDate:     "2026-01-01",
					Recurrence:    &factory.RecurrenceJSON{Kind: "period_recurring", Unit: "monthly"},
				}},
			},
			{
				ID:        "hh-savings",
				Category:  "savings/monthly",
				Direction: "transfer",
				Accounts:  []string{"acc-main", "acc-savings"},
				Patterns: []factory.PatternJSON{{
					ID:            "hh-savings-monthly",
					AmountDecimal: "2500.00",
					StartDate:     "2026-01-01",
					Recurrence:    &factory.RecurrenceJSON{Kind: "period_recurring", Unit: "monthly"},
				}},
			},
			{
				ID:        "hh-vacation",
				Category:  "leisure/vacation",
				Direction: "expense",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "hh-vacation-once",
					AmountDecimal: "-12000.00",
					StartDate:     "2026-07-06",
				}},
			},
		},
	}
}

// freelancerBudgetJSON models a sole proprietor. Invoices are banked on
// the 25th or the bank day before, b-skat falls in its ten qualifying
// months, VAT settles quarterly anchored at March, and the owner draw is
// a transfer to the personal account.
func freelancerBudgetJSON() factory.BudgetJSON {
	return factory.BudgetJSON{
		ID:       "scenario-freelancer",
		Name:     "Freelancer",
		Currency: "DKK",
		Lines: []factory.LineJSON{
			{
				ID:        "fl-invoices",
				Category:  "income/invoices",
				Direction: "income",
				Accounts:  []string{"acc-business"},
				Patterns: []factory.PatternJSON{{
					ID:            "fl-invoices-monthly",
					AmountDecimal: "42000.00",
					StartDate:     "2026-01-01",
					Recurrence: &factory.RecurrenceJSON{
						Kind:    "date_recurring",
						Unit:    "monthly",
						Monthly: &factory.MonthlyJSON{Mode: "fixed_day", Day: 25},
						Adjust:  "previous",
					},
				}},
			},
			{
				ID:        "fl-bskat",
				Category:  "tax/b-skat",
				Direction: "expense",
				Accounts:  []string{"acc-business"},
				Patterns: []factory.PatternJSON{{
					ID:            "fl-bskat-rates",
					AmountDecimal: "-11200.00",
					StartDate:     "2026-01-01",
					Recurrence: &factory.RecurrenceJSON{
						Kind:   "period_recurring",
						Unit:   "yearly",
						Months: []int{1, 2, 3, 4, 5, 7, 8, 9, 10, 11},
					},
				}},
			},
			{
				ID:        "fl-moms",
				Category:  "tax/moms",
				Direction: "expense",
				Accounts:  []string{"acc-business"},
				Patterns: []factory.PatternJSON{{
					ID:            "fl-moms-quarterly",
					AmountDecimal: "-18500.00",
					StartDate:     "2026-03-01",
					Recurrence:    &factory.RecurrenceJSON{Kind: "period_recurring", Unit: "monthly", Interval: 3},
				}},
			},
			{
				ID:        "fl-pension",
				Category:  "pension/private",
				Direction: "expense",
				Accounts:  []string{"acc-business"},
				Patterns: []factory.PatternJSON{{
					ID:            "fl-pension-monthly",
					AmountDecimal: "-4000.00",
					StartDate:     "2026-01-01",
					Recurrence:    &factory.RecurrenceJSON{Kind: "period_recurring", Unit: "monthly"},
				}},
			},
			{
				ID:        "fl-owner-draw",
				Category:  "transfer/owner-draw",
				Direction: "transfer",
				Accounts:  []string{"acc-business", "acc-personal"},
				Patterns: []factory.PatternJSON{{
					ID:            "fl-owner-draw-monthly",
					AmountDecimal: "28000.00",
					StartDate:     "2026-01-01",
					Recurrence:    &factory.RecurrenceJSON{Kind: "period_recurring", Unit: "monthly"},
				}},
			},
			{
				ID:        "fl-equipment",
				Category:  "equipment/laptop",
				Direction: "expense",
				Accounts:  []string{"acc-business"},
				Patterns: []factory.PatternJSON{{
					ID:            "fl-equipment-once",
					AmountDecimal: "-16500.00",
					StartDate:     "2026-04-10",
				}},
			},
		},
	}
}

// paycheckToPaycheckBudgetJSON nets a thin surplus each month. Rent is
// large next to the median expense, and the once car repair turns May
// into a deficit month.
func paycheckToPaycheckBudgetJSON() factory.BudgetJSON {
	return factory.BudgetJSON{
		ID:       "scenario-tight",
		Name:     "Paycheck to Paycheck",
		Currency: "DKK",
		Lines: []factory.LineJSON{
			{
				ID:        "pp-wages",
				Category:  "income/wages",
				Direction: "income",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "pp-wages-monthly",
					AmountDecimal: "22000.00",
					StartDate:     "2026-01-01",
					Recurrence: &factory.RecurrenceJSON{
						Kind: "date_recurring",
						Unit: "monthly",
						Monthly: &factory.MonthlyJSON{
							Mode:    "bank_day",
							K:       1,
							FromEnd: true,
						},
					},
				}},
			},
			{
				ID:        "pp-rent",
				Category:  "home/rent",
				Direction: "expense",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "pp-rent-monthly",
					AmountDecimal: "-7800.00",
					StartDate:     "2026-01-01",
					Recurrence: &factory.RecurrenceJSON{
						Kind:        "date_recurring",
						Unit:        "monthly",
						Monthly:     &factory.MonthlyJSON{Mode: "fixed_day", Day: 1},
						Adjust:      "next",
						KeepInMonth: true,
					},
				}},
			},
			{
				ID:        "pp-utilities",
				Category:  "home/utilities",
				Direction: "expense",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "pp-utilities-monthly",
					AmountDecimal: "-950.00",
					StartDate:     "2026-01-01",
					Recurrence:    &factory.RecurrenceJSON{Kind: "period_recurring", Unit: "monthly"},
				}},
			},
			{
				ID:        "pp-groceries",
				Category:  "food/groceries",
				Direction: "expense",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "pp-groceries-monthly",
					AmountDecimal: "-3200.00",
					StartDate:     "2026-01-01",
					Recurrence:    &factory.RecurrenceJSON{Kind: "period_recurring", Unit: "monthly"},
				}},
			},
			{
				ID:        "pp-phone",
				Category:  "subscriptions/phone",
				Direction: "expense",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "pp-phone-monthly",
					AmountDecimal: "-249.00",
					StartDate:     "2026-01-01",
					Recurrence:    &factory.RecurrenceJSON{Kind: "period_recurring", Unit: "monthly"},
				}},
			},
			{
				ID:        "pp-transport",
				Category:  "transport/commute",
				Direction: "expense",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "pp-transport-monthly",
					AmountDecimal: "-550.00",
					StartDate:     "2026-01-01",
					Recurrence:    &factory.RecurrenceJSON{Kind: "period_recurring", Unit: "monthly"},
				}},
			},
			{
				ID:        "pp-loan",
				Category:  "debt/consumer-loan",
				Direction: "expense",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "pp-loan-monthly",
					AmountDecimal: "-1800.00",
					StartDate:     "2026-01-01",
					Recurrence: &factory.RecurrenceJSON{
						Kind:    "date_recurring",
						Unit:    "monthly",
						Monthly: &factory.MonthlyJSON{Mode: "fixed_day", Day: 1},
						Adjust:  "next",
					},
				}},
			},
			{
				ID:        "pp-car-repair",
				Category:  "car/repair",
				Direction: "expense",
				Accounts:  []string{"acc-main"},
				Patterns: []factory.PatternJSON{{
					ID:            "pp-car-repair-once",
					AmountDecimal: "-8500.00",
					StartDate:     "2026-05-20",
				}},
			},
		},
	}
}

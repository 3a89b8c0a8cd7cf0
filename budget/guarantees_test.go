/*
guarantees_test.go - Executable documentation of the engine's guarantees

PURPOSE:
  Each test here states one behavioral guarantee the rest of the system
  leans on: window-bounded expansion, the first-of-month and end-of-month
  payday scenarios, and the quarterly period-anchored cadence. They overlap
  the unit tests on purpose; these are written to be read.
*/
package budget_test

import (
	"testing"
	"time"

	"github.com/warp/budget-engine/budget"
)

// Note: date and window helpers are defined in expand_test.go

func TestGuarantee_ExpansionStaysInsideClippedWindow(t *testing.T) {
	// GIVEN: Patterns of every kind, including adjustments that push dates
	//        across month edges
	// WHEN: Expanding over assorted windows
	// THEN: No occurrence ever lands outside the window clipped to the
	//       pattern's own range

	patterns := []budget.AmountPattern{
		{
			ID: "daily", Amount: -10_00,
			StartDate:  date(2026, time.January, 3),
			Recurrence: budget.DateRecurring{Interval: 1, Unit: budget.UnitDaily, Adjust: budget.AdjustNext},
		},
		{
			ID: "day31-next", Amount: -20_00,
			StartDate: date(2026, time.January, 1),
			Recurrence: budget.DateRecurring{
				Interval: 1, Unit: budget.UnitMonthly,
				Monthly: budget.MonthlyFixedDay{Day: 31},
				Adjust:  budget.AdjustNext,
			},
		},
		{
			ID: "day1-previous", Amount: -30_00,
			StartDate: date(2025, time.June, 1),
			EndDate:   datePtr(date(2026, time.September, 30)),
			Recurrence: budget.DateRecurring{
				Interval: 1, Unit: budget.UnitMonthly,
				Monthly: budget.MonthlyFixedDay{Day: 1},
				Adjust:  budget.AdjustPrevious,
			},
		},
		{
			ID: "second-bank-day", Amount: -40_00,
			StartDate: date(2026, time.January, 1),
			Recurrence: budget.DateRecurring{
				Interval: 1, Unit: budget.UnitMonthly,
				Monthly: budget.MonthlyBankDay{K: 2},
			},
		},
		{
			ID: "quarterly", Amount: -50_00,
			StartDate: date(2026, time.January, 1),
			Recurrence: budget.PeriodRecurring{
				Interval: 1, Unit: budget.PeriodUnitYearly,
				Months: []time.Month{time.March, time.June, time.September, time.December},
			},
		},
	}

	windows := []budget.Window{
		window(date(2026, time.January, 1), date(2026, time.January, 31)),
		window(date(2026, time.January, 15), date(2026, time.February, 15)),
		window(date(2025, time.December, 1), date(2026, time.December, 31)),
		window(date(2026, time.June, 1), date(2026, time.June, 1)),
	}

	expander := danishExpander()
	for _, p := range patterns {
		for _, w := range windows {
			occurrences, err := expander.Expand(p, w)
			if err != nil {
				t.Fatalf("%s over %s: %v", p.ID, w, err)
			}
			for _, occ := range occurrences {
				if occ.Date != nil {
					d := *occ.Date
					if d.Before(w.From) || d.After(w.To) {
						t.Errorf("%s over %s: occurrence %s outside the window", p.ID, w, d)
					}
					if d.Before(p.StartDate) {
						t.Errorf("%s over %s: occurrence %s before the pattern start", p.ID, w, d)
					}
					if p.EndDate != nil && d.After(*p.EndDate) {
						t.Errorf("%s over %s: occurrence %s after the pattern end", p.ID, w, d)
					}
					continue
				}
				if occ.Period.Before(budget.PeriodOf(w.From)) || occ.Period.After(budget.PeriodOf(w.To)) {
					t.Errorf("%s over %s: period occurrence %s outside the window", p.ID, w, occ.Period)
				}
			}
		}
	}
}

// firstOfMonthPayment is the classic "rent on the 1st, adjusted forward but
// kept in the month" configuration.
func firstOfMonthPayment() budget.AmountPattern {
	return budget.AmountPattern{
		ID:        "rent",
		Amount:    8_000_00,
		StartDate: date(2026, time.January, 1),
		Recurrence: budget.DateRecurring{
			Interval:    1,
			Unit:        budget.UnitMonthly,
			Monthly:     budget.MonthlyFixedDay{Day: 1},
			Adjust:      budget.AdjustNext,
			KeepInMonth: true,
		},
	}
}

func TestGuarantee_FirstOfMonth_January2026StaysPut(t *testing.T) {
	// January 1st 2026 is a Thursday. With weekends as the only non-bank
	// days it needs no adjustment at all.
	occurrences := mustExpand(t, weekendExpander(), firstOfMonthPayment(),
		window(date(2026, time.January, 1), date(2026, time.January, 31)))

	assertDates(t, occurrences, date(2026, time.January, 1))
	if occurrences[0].Amount != 8_000_00 {
		t.Errorf("expected amount 800000, got %d", occurrences[0].Amount)
	}
}

func TestGuarantee_FirstOfMonth_February2026MovesToMonday(t *testing.T) {
	// February 1st 2026 is a Sunday; the payment slides to Monday the 2nd,
	// still inside February.
	occurrences := mustExpand(t, weekendExpander(), firstOfMonthPayment(),
		window(date(2026, time.February, 1), date(2026, time.February, 28)))

	assertDates(t, occurrences, date(2026, time.February, 2))
}

func TestGuarantee_EndOfMonth_ReversesToStayInJanuary(t *testing.T) {
	// GIVEN: A payment on the 31st, adjusted forward, kept in the month
	// WHEN: January 31st 2026 falls on a Saturday
	// THEN: Forward adjustment would land on February 2nd, so the search
	//       reverses and pays on Friday January 30th instead

	p := budget.AmountPattern{
		ID:        "payout",
		Amount:    8_000_00,
		StartDate: date(2026, time.January, 31),
		Recurrence: budget.DateRecurring{
			Interval:    1,
			Unit:        budget.UnitMonthly,
			Monthly:     budget.MonthlyFixedDay{Day: 31},
			Adjust:      budget.AdjustNext,
			KeepInMonth: true,
		},
	}

	occurrences := mustExpand(t, weekendExpander(), p,
		window(date(2026, time.January, 1), date(2026, time.January, 31)))

	assertDates(t, occurrences, date(2026, time.January, 30))
}

func TestGuarantee_QuarterMonths_FourPeriodOccurrencesAcrossAYear(t *testing.T) {
	// GIVEN: A yearly period-anchored pattern for March, June, September and
	//        December
	// WHEN: Expanding any 12-month window
	// THEN: Exactly four occurrences, all period-anchored, none dated

	p := budget.AmountPattern{
		ID:        "insurance",
		Amount:    -1_900_00,
		StartDate: date(2025, time.January, 1),
		Recurrence: budget.PeriodRecurring{
			Interval: 1,
			Unit:     budget.PeriodUnitYearly,
			Months:   []time.Month{time.March, time.June, time.September, time.December},
		},
	}

	occurrences := mustExpand(t, weekendExpander(), p,
		window(date(2026, time.January, 1), date(2026, time.December, 31)))

	if len(occurrences) != 4 {
		t.Fatalf("expected exactly 4 occurrences, got %d", len(occurrences))
	}
	want := []budget.Period{
		budget.NewPeriod(2026, time.March),
		budget.NewPeriod(2026, time.June),
		budget.NewPeriod(2026, time.September),
		budget.NewPeriod(2026, time.December),
	}
	for i, occ := range occurrences {
		if occ.Date != nil {
			t.Errorf("occurrence %d: expected no date, got %s", i, *occ.Date)
		}
		if occ.Period != want[i] {
			t.Errorf("occurrence %d: expected %s, got %s", i, want[i], occ.Period)
		}
	}
}

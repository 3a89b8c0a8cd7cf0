package budget_test

import (
	"testing"
	"time"

	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// TEST HELPERS
// =============================================================================
// Shared by the other _test.go files in this package.

func date(y int, m time.Month, d int) budget.Date {
	return budget.NewDate(y, m, d)
}

func window(from, to budget.Date) budget.Window {
	return budget.NewWindow(from, to)
}

// weekendExpander treats every weekday as a bank day.
func weekendExpander() *budget.Expander {
	return budget.NewExpander(budget.EmptyCalendar{})
}

// danishExpander knows the Danish holidays.
func danishExpander() *budget.Expander {
	return budget.NewExpander(budget.NewDanishCalendar())
}

func mustExpand(t *testing.T, e *budget.Expander, p budget.AmountPattern, w budget.Window) []budget.Occurrence {
	t.Helper()
	occurrences, err := e.Expand(p, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return occurrences
}

func occurrenceDates(occurrences []budget.Occurrence) []budget.Date {
	dates := make([]budget.Date, 0, len(occurrences))
	for _, occ := range occurrences {
		if occ.Date != nil {
			dates = append(dates, *occ.Date)
		}
	}
	return dates
}

func assertDates(t *testing.T, occurrences []budget.Occurrence, want ...budget.Date) {
	t.Helper()
	got := occurrenceDates(occurrences)
	if len(got) != len(occurrences) {
		t.Fatalf("expected only date-anchored occurrences, got %d of %d", len(got), len(occurrences))
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d occurrences, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("occurrence %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

// =============================================================================
// SINGLE-SHOT KINDS
// =============================================================================

func TestExpand_Once_EmitsOnStartDate(t *testing.T) {
	// GIVEN: A one-shot pattern with start date inside the window
	// WHEN: Expanding
	// THEN: Exactly one occurrence, dated on the start date

	p := budget.AmountPattern{
		ID:         "p1",
		Amount:     -45_00,
		StartDate:  date(2026, time.March, 10),
		Recurrence: budget.Once{},
	}

	occurrences := mustExpand(t, weekendExpander(), p, window(date(2026, time.March, 1), date(2026, time.March, 31)))
	assertDates(t, occurrences, date(2026, time.March, 10))

	if occurrences[0].Amount != -45_00 {
		t.Errorf("expected amount -4500, got %d", occurrences[0].Amount)
	}
	if occurrences[0].PatternID != "p1" {
		t.Errorf("expected pattern id p1, got %s", occurrences[0].PatternID)
	}
}

func TestExpand_Once_OutsideWindowEmitsNothing(t *testing.T) {
	p := budget.AmountPattern{
		ID:         "p1",
		Amount:     -45_00,
		StartDate:  date(2026, time.March, 10),
		Recurrence: budget.Once{},
	}

	occurrences := mustExpand(t, weekendExpander(), p, window(date(2026, time.April, 1), date(2026, time.April, 30)))
	if len(occurrences) != 0 {
		t.Fatalf("expected no occurrences, got %d", len(occurrences))
	}
}

func TestExpand_PeriodOnce_EmitsPeriodAnchored(t *testing.T) {
	// GIVEN: A period-anchored one-shot in March 2026
	// WHEN: Expanding a window containing the start date
	// THEN: One occurrence with no date, tied to 2026-03

	p := budget.AmountPattern{
		ID:         "p1",
		Amount:     -300_00,
		StartDate:  date(2026, time.March, 10),
		Recurrence: budget.PeriodOnce{},
	}

	occurrences := mustExpand(t, weekendExpander(), p, window(date(2026, time.March, 1), date(2026, time.March, 31)))
	if len(occurrences) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(occurrences))
	}
	if occurrences[0].Date != nil {
		t.Errorf("expected period-anchored occurrence, got date %s", *occurrences[0].Date)
	}
	if occurrences[0].Period != budget.NewPeriod(2026, time.March) {
		t.Errorf("expected period 2026-03, got %s", occurrences[0].Period)
	}
}

// =============================================================================
// DAILY / WEEKLY STEPPING
// =============================================================================

func TestExpand_Daily_StepsByIntervalAndClipsToWindow(t *testing.T) {
	// GIVEN: Every 3rd day from 2026-01-01
	// WHEN: Expanding 2026-01-05 .. 2026-01-15
	// THEN: Only the aligned dates inside the window appear

	p := budget.AmountPattern{
		ID:        "p1",
		Amount:    -20_00,
		StartDate: date(2026, time.January, 1),
		Recurrence: budget.DateRecurring{
			Interval: 3,
			Unit:     budget.UnitDaily,
		},
	}

	occurrences := mustExpand(t, weekendExpander(), p, window(date(2026, time.January, 5), date(2026, time.January, 15)))
	assertDates(t, occurrences,
		date(2026, time.January, 7),
		date(2026, time.January, 10),
		date(2026, time.January, 13),
	)
}

func TestExpand_Weekly_PreservesStartWeekday(t *testing.T) {
	// GIVEN: Every 2nd week from Monday 2026-01-05
	// WHEN: Expanding January through 1 March 2026
	// THEN: Every occurrence lands on a Monday, 14 days apart

	p := budget.AmountPattern{
		ID:        "p1",
		Amount:    -150_00,
		StartDate: date(2026, time.January, 5),
		Recurrence: budget.DateRecurring{
			Interval: 2,
			Unit:     budget.UnitWeekly,
		},
	}

	occurrences := mustExpand(t, weekendExpander(), p, window(date(2026, time.January, 1), date(2026, time.March, 1)))
	assertDates(t, occurrences,
		date(2026, time.January, 5),
		date(2026, time.January, 19),
		date(2026, time.February, 2),
		date(2026, time.February, 16),
	)
	for _, d := range occurrenceDates(occurrences) {
		if d.Weekday() != time.Monday {
			t.Errorf("expected Monday, got %s on %s", d.Weekday(), d)
		}
	}
}

// =============================================================================
// MONTHLY SUB-MODES
// =============================================================================

func TestExpand_MonthlyFixedDay_ClampsToShortMonths(t *testing.T) {
	// GIVEN: Day 31 of every month, no adjustment
	// WHEN: Expanding January through April 2026
	// THEN: February clamps to the 28th, April to the 30th

	p := budget.AmountPattern{
		ID:        "p1",
		Amount:    -999_00,
		StartDate: date(2026, time.January, 1),
		Recurrence: budget.DateRecurring{
			Interval: 1,
			Unit:     budget.UnitMonthly,
			Monthly:  budget.MonthlyFixedDay{Day: 31},
		},
	}

	occurrences := mustExpand(t, weekendExpander(), p, window(date(2026, time.January, 1), date(2026, time.April, 30)))
	assertDates(t, occurrences,
		date(2026, time.January, 31),
		date(2026, time.February, 28),
		date(2026, time.March, 31),
		date(2026, time.April, 30),
	)
}

func TestExpand_MonthlyRelativeWeekday_ThirdTuesday(t *testing.T) {
	p := budget.AmountPattern{
		ID:        "p1",
		Amount:    -80_00,
		StartDate: date(2026, time.January, 1),
		Recurrence: budget.DateRecurring{
			Interval: 1,
			Unit:     budget.UnitMonthly,
			Monthly:  budget.MonthlyRelativeWeekday{Ordinal: budget.OrdinalThird, Weekday: time.Tuesday},
		},
	}

	occurrences := mustExpand(t, weekendExpander(), p, window(date(2026, time.January, 1), date(2026, time.March, 31)))
	assertDates(t, occurrences,
		date(2026, time.January, 20),
		date(2026, time.February, 17),
		date(2026, time.March, 17),
	)
}

func TestExpand_MonthlyRelativeWeekday_LastFriday(t *testing.T) {
	p := budget.AmountPattern{
		ID:        "p1",
		Amount:    -60_00,
		StartDate: date(2026, time.January, 1),
		Recurrence: budget.DateRecurring{
			Interval: 1,
			Unit:     budget.UnitMonthly,
			Monthly:  budget.MonthlyRelativeWeekday{Ordinal: budget.OrdinalLast, Weekday: time.Friday},
		},
	}

	occurrences := mustExpand(t, weekendExpander(), p, window(date(2026, time.January, 1), date(2026, time.February, 28)))
	assertDates(t, occurrences,
		date(2026, time.January, 30),
		date(2026, time.February, 27),
	)
}

func TestExpand_MonthlyBankDay_CountsFromStart(t *testing.T) {
	// GIVEN: The 3rd bank day of each month, Danish calendar
	// WHEN: Expanding January 2026 (the 1st is a holiday, 3rd/4th a weekend)
	// THEN: Bank days are 2, 5, 6, ... so the 3rd is January 6

	p := budget.AmountPattern{
		ID:        "p1",
		Amount:    -40_00,
		StartDate: date(2026, time.January, 1),
		Recurrence: budget.DateRecurring{
			Interval: 1,
			Unit:     budget.UnitMonthly,
			Monthly:  budget.MonthlyBankDay{K: 3},
		},
	}

	occurrences := mustExpand(t, danishExpander(), p, window(date(2026, time.January, 1), date(2026, time.January, 31)))
	assertDates(t, occurrences, date(2026, time.January, 6))
}

func TestExpand_MonthlyBankDay_CountsFromEnd(t *testing.T) {
	// GIVEN: The last bank day of each month
	// WHEN: Expanding January 2026 (the 31st is a Saturday)
	// THEN: The last bank day is Friday January 30

	p := budget.AmountPattern{
		ID:        "p1",
		Amount:    350_00,
		StartDate: date(2026, time.January, 1),
		Recurrence: budget.DateRecurring{
			Interval: 1,
			Unit:     budget.UnitMonthly,
			Monthly:  budget.MonthlyBankDay{K: 1, FromEnd: true},
		},
	}

	occurrences := mustExpand(t, danishExpander(), p, window(date(2026, time.January, 1), date(2026, time.January, 31)))
	assertDates(t, occurrences, date(2026, time.January, 30))
}

func TestExpand_Yearly_RepeatsOnStartMonth(t *testing.T) {
	// GIVEN: Every year on March 15 from 2025
	// WHEN: Expanding 2025 through 2027
	// THEN: Three occurrences, one per year

	p := budget.AmountPattern{
		ID:        "p1",
		Amount:    -1200_00,
		StartDate: date(2025, time.March, 15),
		Recurrence: budget.DateRecurring{
			Interval: 1,
			Unit:     budget.UnitYearly,
			Monthly:  budget.MonthlyFixedDay{Day: 15},
		},
	}

	occurrences := mustExpand(t, weekendExpander(), p, window(date(2025, time.January, 1), date(2027, time.December, 31)))
	assertDates(t, occurrences,
		date(2025, time.March, 15),
		date(2026, time.March, 15),
		date(2027, time.March, 15),
	)
}

// =============================================================================
// ADJUSTMENT INTERPLAY
// =============================================================================

func TestExpand_Dedup_CollapsesAdjustedCollisions(t *testing.T) {
	// GIVEN: A daily pattern over a weekend, adjusted forward
	// WHEN: Saturday, Sunday and Monday all land on the same Monday
	// THEN: Deduplication keeps the first occurrence only

	p := budget.AmountPattern{
		ID:        "p1",
		Amount:    -10_00,
		StartDate: date(2026, time.January, 3),
		EndDate:   datePtr(date(2026, time.January, 5)),
		Recurrence: budget.DateRecurring{
			Interval: 1,
			Unit:     budget.UnitDaily,
			Adjust:   budget.AdjustNext,
		},
	}

	occurrences := mustExpand(t, danishExpander(), p, window(date(2026, time.January, 1), date(2026, time.January, 10)))
	assertDates(t, occurrences, date(2026, time.January, 5))
}

func TestExpand_NoDedup_KeepsAdjustedCollisions(t *testing.T) {
	// GIVEN: The same weekend pattern with deduplication disabled
	// THEN: All three occurrences survive on the same Monday

	p := budget.AmountPattern{
		ID:        "p1",
		Amount:    -10_00,
		StartDate: date(2026, time.January, 3),
		EndDate:   datePtr(date(2026, time.January, 5)),
		NoDedup:   true,
		Recurrence: budget.DateRecurring{
			Interval: 1,
			Unit:     budget.UnitDaily,
			Adjust:   budget.AdjustNext,
		},
	}

	occurrences := mustExpand(t, danishExpander(), p, window(date(2026, time.January, 1), date(2026, time.January, 10)))
	assertDates(t, occurrences,
		date(2026, time.January, 5),
		date(2026, time.January, 5),
		date(2026, time.January, 5),
	)
}

func TestExpand_AdjustedDateCrossesWindowBoundaryOnce(t *testing.T) {
	// GIVEN: Day 31, adjusted forward without keep-in-month, so January's
	//        occurrence slides to February 2
	// WHEN: Expanding the January window and the February window separately
	// THEN: The occurrence appears in February only, exactly once

	p := budget.AmountPattern{
		ID:        "p1",
		Amount:    -75_00,
		StartDate: date(2026, time.January, 1),
		Recurrence: budget.DateRecurring{
			Interval: 1,
			Unit:     budget.UnitMonthly,
			Monthly:  budget.MonthlyFixedDay{Day: 31},
			Adjust:   budget.AdjustNext,
		},
	}

	january := mustExpand(t, danishExpander(), p, window(date(2026, time.January, 1), date(2026, time.January, 31)))
	if len(january) != 0 {
		t.Fatalf("expected no January occurrences, got %v", occurrenceDates(january))
	}

	february := mustExpand(t, danishExpander(), p, window(date(2026, time.February, 1), date(2026, time.February, 28)))
	assertDates(t, february, date(2026, time.February, 2))
}

// =============================================================================
// PERIOD-RECURRING
// =============================================================================

func TestExpand_PeriodRecurringMonthly_StepsByInterval(t *testing.T) {
	// GIVEN: A period-anchored amount every 2nd month from January 2026
	// WHEN: Expanding January through June
	// THEN: January, March and May periods, all without dates

	p := budget.AmountPattern{
		ID:        "p1",
		Amount:    -500_00,
		StartDate: date(2026, time.January, 10),
		Recurrence: budget.PeriodRecurring{
			Interval: 2,
			Unit:     budget.PeriodUnitMonthly,
		},
	}

	occurrences := mustExpand(t, weekendExpander(), p, window(date(2026, time.January, 1), date(2026, time.June, 30)))
	wantPeriods := []budget.Period{
		budget.NewPeriod(2026, time.January),
		budget.NewPeriod(2026, time.March),
		budget.NewPeriod(2026, time.May),
	}
	if len(occurrences) != len(wantPeriods) {
		t.Fatalf("expected %d occurrences, got %d", len(wantPeriods), len(occurrences))
	}
	for i, occ := range occurrences {
		if occ.Date != nil {
			t.Errorf("occurrence %d: expected no date, got %s", i, *occ.Date)
		}
		if occ.Period != wantPeriods[i] {
			t.Errorf("occurrence %d: expected period %s, got %s", i, wantPeriods[i], occ.Period)
		}
	}
}

// =============================================================================
// WINDOW HANDLING
// =============================================================================

func TestExpand_InvalidWindowRejected(t *testing.T) {
	p := budget.AmountPattern{
		ID:         "p1",
		Amount:     -10_00,
		StartDate:  date(2026, time.January, 1),
		Recurrence: budget.Once{},
	}

	_, err := weekendExpander().Expand(p, window(date(2026, time.February, 1), date(2026, time.January, 1)))
	if !budget.IsClientError(err) {
		t.Fatalf("expected a client error for a reversed window, got %v", err)
	}
}

func TestExpand_PatternRangeClipsWindow(t *testing.T) {
	// GIVEN: A daily pattern that ends 2026-01-10
	// WHEN: Expanding a window reaching past the end date
	// THEN: Nothing after the pattern's own range appears

	p := budget.AmountPattern{
		ID:        "p1",
		Amount:    -10_00,
		StartDate: date(2026, time.January, 8),
		EndDate:   datePtr(date(2026, time.January, 10)),
		Recurrence: budget.DateRecurring{
			Interval: 1,
			Unit:     budget.UnitDaily,
		},
	}

	occurrences := mustExpand(t, weekendExpander(), p, window(date(2026, time.January, 1), date(2026, time.January, 31)))
	assertDates(t, occurrences,
		date(2026, time.January, 8),
		date(2026, time.January, 9),
		date(2026, time.January, 10),
	)
}

func datePtr(d budget.Date) *budget.Date { return &d }

package budget_test

import (
	"testing"
	"time"

	"github.com/warp/budget-engine/budget"
)

// Note: date and window helpers are defined in expand_test.go

func weekendAdjuster() *budget.Adjuster {
	return budget.NewAdjuster(budget.EmptyCalendar{})
}

func danishAdjuster() *budget.Adjuster {
	return budget.NewAdjuster(budget.NewDanishCalendar())
}

// blockedMonth marks every day of one month as a holiday, so the month
// contains no bank day at all.
type blockedMonth struct {
	year  int
	month time.Month
}

func (b blockedMonth) HolidaysForYear(int) []budget.Holiday { return nil }

func (b blockedMonth) IsHoliday(d budget.Date) bool {
	return d.Year() == b.year && d.Month() == b.month
}

func TestAdjust_None_LeavesDateUnchanged(t *testing.T) {
	// A Saturday stays a Saturday when no policy is applied.
	got := danishAdjuster().Adjust(date(2026, time.January, 31), budget.AdjustNone, false)
	if !got.Equal(date(2026, time.January, 31)) {
		t.Errorf("expected 2026-01-31 unchanged, got %s", got)
	}
}

func TestAdjust_Next_WalksOverWeekend(t *testing.T) {
	// GIVEN: Sunday 2026-02-01
	// WHEN: Adjusting forward
	// THEN: Monday 2026-02-02

	got := weekendAdjuster().Adjust(date(2026, time.February, 1), budget.AdjustNext, false)
	if !got.Equal(date(2026, time.February, 2)) {
		t.Errorf("expected 2026-02-02, got %s", got)
	}
}

func TestAdjust_Previous_WalksBackAcrossMonth(t *testing.T) {
	// GIVEN: Sunday 2026-02-01, no keep-in-month
	// WHEN: Adjusting backward
	// THEN: Friday 2026-01-30, crossing into January

	got := weekendAdjuster().Adjust(date(2026, time.February, 1), budget.AdjustPrevious, false)
	if !got.Equal(date(2026, time.January, 30)) {
		t.Errorf("expected 2026-01-30, got %s", got)
	}
}

func TestAdjust_Next_WalksOverHolidayRun(t *testing.T) {
	// GIVEN: Saturday 2026-04-04, in the middle of the Easter stretch
	//        (Maundy Thursday April 2 through Easter Monday April 6)
	// WHEN: Adjusting forward with the Danish calendar
	// THEN: Tuesday 2026-04-07, the first bank day after the run

	got := danishAdjuster().Adjust(date(2026, time.April, 4), budget.AdjustNext, false)
	if !got.Equal(date(2026, time.April, 7)) {
		t.Errorf("expected 2026-04-07, got %s", got)
	}

	// Backward from the same date clears the run on Wednesday April 1.
	got = danishAdjuster().Adjust(date(2026, time.April, 4), budget.AdjustPrevious, false)
	if !got.Equal(date(2026, time.April, 1)) {
		t.Errorf("expected 2026-04-01, got %s", got)
	}
}

func TestAdjust_KeepInMonth_ReversesFromOriginalCandidate(t *testing.T) {
	// GIVEN: Saturday 2026-01-31; forward adjustment leaves January
	// WHEN: keep_in_month is set
	// THEN: The search reverses from the 31st and lands on Friday the 30th

	got := weekendAdjuster().Adjust(date(2026, time.January, 31), budget.AdjustNext, true)
	if !got.Equal(date(2026, time.January, 30)) {
		t.Errorf("expected 2026-01-30, got %s", got)
	}
}

func TestAdjust_KeepInMonth_NoReversalWhenSameMonth(t *testing.T) {
	// Sunday 2026-02-01 adjusts forward to the 2nd, still in February, so
	// keep_in_month does not change anything.
	got := weekendAdjuster().Adjust(date(2026, time.February, 1), budget.AdjustNext, true)
	if !got.Equal(date(2026, time.February, 2)) {
		t.Errorf("expected 2026-02-02, got %s", got)
	}
}

func TestAdjust_KeepInMonth_FallsBackWhenMonthHasNoBankDay(t *testing.T) {
	// GIVEN: A month where every day is a holiday
	// WHEN: Adjusting forward with keep_in_month
	// THEN: The in-month search fails and the month-crossing date is kept

	adjuster := budget.NewAdjuster(blockedMonth{year: 2026, month: time.January})

	got := adjuster.Adjust(date(2026, time.January, 15), budget.AdjustNext, true)
	if !got.Equal(date(2026, time.February, 2)) {
		t.Errorf("expected fallback to 2026-02-02, got %s", got)
	}
}

package budget_test

import (
	"testing"
	"time"

	"github.com/warp/budget-engine/budget"
)

// Note: date and window helpers are defined in expand_test.go

func TestEasterSunday_KnownYears(t *testing.T) {
	cases := []struct {
		year int
		want budget.Date
	}{
		{2008, date(2008, time.March, 23)},
		{2024, date(2024, time.March, 31)},
		{2025, date(2025, time.April, 20)},
		{2026, date(2026, time.April, 5)},
		{2038, date(2038, time.April, 25)},
	}

	for _, tc := range cases {
		got := budget.EasterSunday(tc.year)
		if !got.Equal(tc.want) {
			t.Errorf("Easter %d: expected %s, got %s", tc.year, tc.want, got)
		}
		if got.Weekday() != time.Sunday {
			t.Errorf("Easter %d: %s is not a Sunday", tc.year, got)
		}
	}
}

func TestDanishHolidays_2026_DerivedFromEaster(t *testing.T) {
	// GIVEN: Easter Sunday 2026 is April 5
	// WHEN: Listing the year's holidays
	// THEN: The four fixed dates plus the six Easter-relative ones

	calendar := budget.NewDanishCalendar()
	holidays := calendar.HolidaysForYear(2026)

	want := []budget.Date{
		date(2026, time.January, 1),   // New Year
		date(2026, time.April, 2),     // Maundy Thursday, Easter - 3
		date(2026, time.April, 3),     // Good Friday, Easter - 2
		date(2026, time.April, 6),     // Easter Monday, Easter + 1
		date(2026, time.May, 14),      // Ascension, Easter + 39
		date(2026, time.May, 24),      // Whit Sunday, Easter + 49
		date(2026, time.May, 25),      // Whit Monday, Easter + 50
		date(2026, time.June, 5),      // Constitution Day
		date(2026, time.December, 25), // Christmas Day
		date(2026, time.December, 26), // Second Christmas Day
	}

	if len(holidays) != len(want) {
		t.Fatalf("expected %d holidays, got %d", len(want), len(holidays))
	}
	for i, h := range holidays {
		if !h.Date.Equal(want[i]) {
			t.Errorf("holiday %d: expected %s, got %s (%s)", i, want[i], h.Date, h.Name)
		}
		if h.Name == "" {
			t.Errorf("holiday %d: missing name", i)
		}
	}
}

func TestHolidaysForYear_StableAcrossCalls(t *testing.T) {
	calendar := budget.NewDanishCalendar()

	first := calendar.HolidaysForYear(2027)
	second := calendar.HolidaysForYear(2027)

	if len(first) != len(second) {
		t.Fatalf("expected stable holiday count, got %d then %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Date.Equal(second[i].Date) {
			t.Errorf("holiday %d changed between calls: %s vs %s", i, first[i].Date, second[i].Date)
		}
	}
}

func TestIsBankDay_WeekendsAreNeverBankDays(t *testing.T) {
	// GIVEN: Every single day of 2026
	// THEN: Saturdays and Sundays are never bank days, with or without a
	//       holiday calendar

	danish := budget.NewDanishCalendar()
	for d := date(2026, time.January, 1); !d.After(date(2026, time.December, 31)); d = d.AddDays(1) {
		if !d.IsWeekend() {
			continue
		}
		if d.IsBankDay(danish) {
			t.Errorf("%s (%s) reported as bank day", d, d.Weekday())
		}
		if d.IsBankDay(budget.EmptyCalendar{}) {
			t.Errorf("%s (%s) reported as bank day without holidays", d, d.Weekday())
		}
	}
}

func TestIsBankDay_WeekdayHolidaysAreNotBankDays(t *testing.T) {
	calendar := budget.NewDanishCalendar()

	// Constitution Day 2026 falls on a Friday.
	if date(2026, time.June, 5).IsBankDay(calendar) {
		t.Error("expected Constitution Day 2026 to not be a bank day")
	}
	// Good Friday 2026.
	if date(2026, time.April, 3).IsBankDay(calendar) {
		t.Error("expected Good Friday 2026 to not be a bank day")
	}
	// A plain Wednesday.
	if !date(2026, time.June, 10).IsBankDay(calendar) {
		t.Error("expected a plain Wednesday to be a bank day")
	}
}

package budget

import (
	"sort"
	"sync"
	"time"
)

// =============================================================================
// HOLIDAY CALENDAR - Computed bank holidays
// =============================================================================

// Holiday is a single bank holiday.
type Holiday struct {
	Date Date
	Name string
}

// HolidayCalendar answers which dates are bank holidays. Implementations
// must be deterministic: the same year always yields the same set.
type HolidayCalendar interface {
	// HolidaysForYear returns all holidays in a year, ordered by date.
	HolidaysForYear(year int) []Holiday

	// IsHoliday checks if a date is a bank holiday.
	IsHoliday(date Date) bool
}

// DanishCalendar computes the Danish bank-holiday set: the Easter-derived
// holidays plus New Year's Day, Constitution Day and the two Christmas days.
// Computed years are cached; the zero value is not usable, use NewDanishCalendar.
type DanishCalendar struct {
	mu    sync.RWMutex
	years map[int]map[Date]string
}

func NewDanishCalendar() *DanishCalendar {
	return &DanishCalendar{years: make(map[int]map[Date]string)}
}

func (c *DanishCalendar) HolidaysForYear(year int) []Holiday {
	set := c.yearSet(year)
	holidays := make([]Holiday, 0, len(set))
	for date, name := range set {
		holidays = append(holidays, Holiday{Date: date, Name: name})
	}
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays
}

func (c *DanishCalendar) IsHoliday(date Date) bool {
	normalized := NewDate(date.Year(), date.Month(), date.Day())
	_, ok := c.yearSet(date.Year())[normalized]
	return ok
}

func (c *DanishCalendar) yearSet(year int) map[Date]string {
	c.mu.RLock()
	set, ok := c.years[year]
	c.mu.RUnlock()
	if ok {
		return set
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if set, ok = c.years[year]; ok {
		return set
	}
	set = make(map[Date]string)
	for _, h := range computeDanishHolidays(year) {
		set[h.Date] = h.Name
	}
	c.years[year] = set
	return set
}

func computeDanishHolidays(year int) []Holiday {
	easter := EasterSunday(year)
	return []Holiday{
		{Date: NewDate(year, time.January, 1), Name: "New Year's Day"},
		{Date: easter.AddDays(-3), Name: "Maundy Thursday"},
		{Date: easter.AddDays(-2), Name: "Good Friday"},
		{Date: easter.AddDays(1), Name: "Easter Monday"},
		{Date: easter.AddDays(39), Name: "Ascension Day"},
		{Date: easter.AddDays(49), Name: "Whit Sunday"},
		{Date: easter.AddDays(50), Name: "Whit Monday"},
		{Date: NewDate(year, time.June, 5), Name: "Constitution Day"},
		{Date: NewDate(year, time.December, 25), Name: "Christmas Day"},
		{Date: NewDate(year, time.December, 26), Name: "Second Christmas Day"},
	}
}

// EasterSunday computes Easter Sunday for a Gregorian-calendar year using
// the anonymous Gregorian computus.
func EasterSunday(year int) Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return NewDate(year, time.Month(month), day)
}

// EmptyCalendar is a calendar with no holidays: only weekends are non-bank
// days. Useful for tests and for callers that disable the holiday set.
type EmptyCalendar struct{}

func (EmptyCalendar) HolidaysForYear(year int) []Holiday { return nil }
func (EmptyCalendar) IsHoliday(date Date) bool           { return false }

// IsBankDay checks if a date is a bank day: a weekday that is not a holiday
// in the given calendar.
func (d Date) IsBankDay(calendar HolidayCalendar) bool {
	if d.IsWeekend() {
		return false
	}
	if calendar != nil && calendar.IsHoliday(d) {
		return false
	}
	return true
}

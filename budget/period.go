package budget

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - The budgeting month
// =============================================================================

// Period identifies one budgeting month. Projection chains balances period
// to period; archival freezes exactly one period at a time.
type Period struct {
	Year  int
	Month time.Month
}

func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// PeriodOf returns the period containing the given date.
func PeriodOf(d Date) Period {
	return Period{Year: d.Year(), Month: d.Month()}
}

// CurrentPeriod returns the period containing today.
func CurrentPeriod() Period { return PeriodOf(Today()) }

// Start returns the first day of the period.
func (p Period) Start() Date { return StartOfMonth(p.Year, p.Month) }

// End returns the last day of the period.
func (p Period) End() Date { return EndOfMonth(p.Year, p.Month) }

// Window returns the period as an inclusive date range.
func (p Period) Window() Window { return Window{From: p.Start(), To: p.End()} }

// Contains returns true if the date falls inside the period.
func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

// Next returns the following period.
func (p Period) Next() Period {
	d := p.Start().AddMonths(1)
	return PeriodOf(d)
}

// Previous returns the preceding period.
func (p Period) Previous() Period {
	d := p.Start().AddMonths(-1)
	return PeriodOf(d)
}

// AddMonths steps the period forward (or backward) n months.
func (p Period) AddMonths(n int) Period {
	return PeriodOf(p.Start().AddMonths(n))
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

func (p Period) Equal(other Period) bool {
	return p.Year == other.Year && p.Month == other.Month
}

func (p Period) After(other Period) bool {
	return other.Before(p)
}

// MonthsUntil returns the number of period steps from p to other.
// Negative when other is earlier.
func (p Period) MonthsUntil(other Period) int {
	return (other.Year-p.Year)*12 + int(other.Month) - int(p.Month)
}

// IsValid reports whether the month field is a real month.
func (p Period) IsValid() bool {
	return p.Month >= time.January && p.Month <= time.December
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// PeriodsBetween returns every period from first to last inclusive.
// Returns nil when last is before first.
func PeriodsBetween(first, last Period) []Period {
	if last.Before(first) {
		return nil
	}
	var periods []Period
	for p := first; !p.After(last); p = p.Next() {
		periods = append(periods, p)
	}
	return periods
}

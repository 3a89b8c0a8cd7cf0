package budget

// =============================================================================
// BANK-DAY ADJUSTER - Shifts candidate dates onto bank days
// =============================================================================

// AdjustPolicy selects how a non-bank-day candidate is shifted.
type AdjustPolicy string

const (
	// AdjustNone leaves the candidate unchanged. Used when the recurrence
	// kind already guarantees a bank day, e.g. "Kth bank day".
	AdjustNone AdjustPolicy = "none"

	// AdjustNext walks forward one day at a time until a bank day.
	AdjustNext AdjustPolicy = "next"

	// AdjustPrevious walks backward one day at a time until a bank day.
	AdjustPrevious AdjustPolicy = "previous"
)

func (p AdjustPolicy) IsValid() bool {
	switch p {
	case AdjustNone, AdjustNext, AdjustPrevious:
		return true
	}
	return false
}

// Adjuster applies a bank-day adjustment policy against a holiday calendar.
// It is deterministic and side-effect-free: the same pattern always expands
// to identical dates.
type Adjuster struct {
	Calendar HolidayCalendar
}

func NewAdjuster(calendar HolidayCalendar) *Adjuster {
	return &Adjuster{Calendar: calendar}
}

// Adjust shifts a candidate date onto a bank day per policy.
//
// With keepInMonth set, a shift that leaves the candidate's month reverses
// direction from the original candidate and searches for a bank day inside
// the month instead. If the month contains no bank day at all, the
// month-crossing date from the first walk is returned unchanged.
func (a *Adjuster) Adjust(date Date, policy AdjustPolicy, keepInMonth bool) Date {
	var step int
	switch policy {
	case AdjustNext:
		step = 1
	case AdjustPrevious:
		step = -1
	default:
		return date
	}

	adjusted := a.walk(date, step)
	if !keepInMonth || PeriodOf(adjusted).Equal(PeriodOf(date)) {
		return adjusted
	}

	if reversed, ok := a.walkInMonth(date, -step); ok {
		return reversed
	}
	return adjusted
}

func (a *Adjuster) walk(date Date, step int) Date {
	for !date.IsBankDay(a.Calendar) {
		date = date.AddDays(step)
	}
	return date
}

func (a *Adjuster) walkInMonth(date Date, step int) (Date, bool) {
	period := PeriodOf(date)
	for period.Contains(date) {
		if date.IsBankDay(a.Calendar) {
			return date, true
		}
		date = date.AddDays(step)
	}
	return Date{}, false
}

package budget

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// RECURRENCE - Closed sum type, one case per recurrence kind
// =============================================================================

type RecurrenceKind string

const (
	KindOnce            RecurrenceKind = "once"
	KindDateRecurring   RecurrenceKind = "date_recurring"
	KindPeriodOnce      RecurrenceKind = "period_once"
	KindPeriodRecurring RecurrenceKind = "period_recurring"
)

// Recurrence is the tagged union over the four recurrence kinds. Required
// sub-fields are validated once at construction; expansion assumes a valid
// value and never re-checks.
type Recurrence interface {
	Kind() RecurrenceKind

	// Validate checks required sub-fields and value ranges.
	Validate() error

	// Repeats reports whether the kind can produce more than one occurrence.
	// Non-repeating kinds must not carry a pattern end date.
	Repeats() bool

	isRecurrence()
}

// =============================================================================
// ONCE - Single date-anchored occurrence at the pattern's start date
// =============================================================================

type Once struct{}

func (Once) Kind() RecurrenceKind { return KindOnce }
func (Once) Validate() error      { return nil }
func (Once) Repeats() bool        { return false }
func (Once) isRecurrence()        {}

// =============================================================================
// PERIOD ONCE - Single period-anchored occurrence in the start date's month
// =============================================================================

type PeriodOnce struct{}

func (PeriodOnce) Kind() RecurrenceKind { return KindPeriodOnce }
func (PeriodOnce) Validate() error      { return nil }
func (PeriodOnce) Repeats() bool        { return false }
func (PeriodOnce) isRecurrence()        {}

// =============================================================================
// DATE RECURRING - Interval stepping with optional bank-day adjustment
// =============================================================================

type RecurrenceUnit string

const (
	UnitDaily   RecurrenceUnit = "daily"
	UnitWeekly  RecurrenceUnit = "weekly"
	UnitMonthly RecurrenceUnit = "monthly"
	UnitYearly  RecurrenceUnit = "yearly"
)

func (u RecurrenceUnit) IsValid() bool {
	switch u {
	case UnitDaily, UnitWeekly, UnitMonthly, UnitYearly:
		return true
	}
	return false
}

// DateRecurring generates date-anchored candidates by stepping Interval
// units from the pattern's start date. Monthly and yearly units carry a
// sub-mode describing which day inside each qualifying month.
type DateRecurring struct {
	Interval int
	Unit     RecurrenceUnit

	// Monthly is required for monthly/yearly units, absent otherwise.
	Monthly MonthlyMode

	// Adjust is the bank-day adjustment policy. Empty means none.
	Adjust      AdjustPolicy
	KeepInMonth bool
}

func (r DateRecurring) Kind() RecurrenceKind { return KindDateRecurring }
func (r DateRecurring) Repeats() bool        { return true }
func (r DateRecurring) isRecurrence()        {}

func (r DateRecurring) Validate() error {
	if r.Interval < 1 {
		return &RecurrenceFieldError{Kind: KindDateRecurring, Field: "interval", Reason: "must be >= 1"}
	}
	if !r.Unit.IsValid() {
		return &RecurrenceFieldError{Kind: KindDateRecurring, Field: "unit", Reason: fmt.Sprintf("unknown value %q", r.Unit)}
	}
	if r.Adjust != "" && !r.Adjust.IsValid() {
		return &RecurrenceFieldError{Kind: KindDateRecurring, Field: "adjust", Reason: fmt.Sprintf("unknown policy %q", r.Adjust)}
	}
	switch r.Unit {
	case UnitMonthly, UnitYearly:
		if r.Monthly == nil {
			return &RecurrenceFieldError{Kind: KindDateRecurring, Field: "monthly", Reason: "sub-mode is required for monthly/yearly units"}
		}
		if err := r.Monthly.Validate(); err != nil {
			return err
		}
		if _, ok := r.Monthly.(MonthlyBankDay); ok && r.policy() != AdjustNone {
			return &RecurrenceFieldError{Kind: KindDateRecurring, Field: "adjust", Reason: "bank-day sub-mode already yields bank days; policy must be none"}
		}
	default:
		if r.Monthly != nil {
			return &RecurrenceFieldError{Kind: KindDateRecurring, Field: "monthly", Reason: "sub-mode only applies to monthly/yearly units"}
		}
	}
	return nil
}

func (r DateRecurring) policy() AdjustPolicy {
	if r.Adjust == "" {
		return AdjustNone
	}
	return r.Adjust
}

// =============================================================================
// MONTHLY SUB-MODES - Which day inside a qualifying month
// =============================================================================

// MonthlyMode picks the candidate day within a qualifying month.
type MonthlyMode interface {
	Validate() error
	monthlyMode()
}

// MonthlyFixedDay is the same day-of-month every qualifying month, clamped
// to the last valid day when the month is shorter.
type MonthlyFixedDay struct {
	Day int
}

func (m MonthlyFixedDay) monthlyMode() {}
func (m MonthlyFixedDay) Validate() error {
	if m.Day < 1 || m.Day > 31 {
		return &RecurrenceFieldError{Kind: KindDateRecurring, Field: "day", Reason: "must be between 1 and 31"}
	}
	return nil
}

// WeekOrdinal counts weekday occurrences within a month: 1st through 4th,
// or the last one.
type WeekOrdinal int

const (
	OrdinalFirst  WeekOrdinal = 1
	OrdinalSecond WeekOrdinal = 2
	OrdinalThird  WeekOrdinal = 3
	OrdinalFourth WeekOrdinal = 4
	OrdinalLast   WeekOrdinal = -1
)

func (o WeekOrdinal) IsValid() bool {
	return o == OrdinalLast || (o >= OrdinalFirst && o <= OrdinalFourth)
}

// MonthlyRelativeWeekday is the Kth (or last) given weekday of each
// qualifying month.
type MonthlyRelativeWeekday struct {
	Ordinal WeekOrdinal
	Weekday time.Weekday
}

func (m MonthlyRelativeWeekday) monthlyMode() {}
func (m MonthlyRelativeWeekday) Validate() error {
	if !m.Ordinal.IsValid() {
		return &RecurrenceFieldError{Kind: KindDateRecurring, Field: "ordinal", Reason: "must be 1..4 or last"}
	}
	if m.Weekday < time.Sunday || m.Weekday > time.Saturday {
		return &RecurrenceFieldError{Kind: KindDateRecurring, Field: "weekday", Reason: "unknown weekday"}
	}
	return nil
}

// MonthlyBankDay is the Kth bank day of each qualifying month, counted from
// the month start, or from the month end when FromEnd is set. The result is
// a bank day by construction, so no adjustment policy applies.
type MonthlyBankDay struct {
	K       int
	FromEnd bool
}

func (m MonthlyBankDay) monthlyMode() {}
func (m MonthlyBankDay) Validate() error {
	if m.K < 1 {
		return &RecurrenceFieldError{Kind: KindDateRecurring, Field: "k", Reason: "must be >= 1"}
	}
	return nil
}

// =============================================================================
// PERIOD RECURRING - Period-anchored interval stepping
// =============================================================================

type PeriodUnit string

const (
	PeriodUnitMonthly PeriodUnit = "monthly"
	PeriodUnitYearly  PeriodUnit = "yearly"
)

func (u PeriodUnit) IsValid() bool {
	return u == PeriodUnitMonthly || u == PeriodUnitYearly
}

// PeriodRecurring generates period-anchored occurrences: every Nth month,
// or every Nth year filtered to an explicit set of qualifying months.
type PeriodRecurring struct {
	Interval int
	Unit     PeriodUnit

	// Months is the qualifying month set for the yearly unit.
	Months []time.Month
}

func (r PeriodRecurring) Kind() RecurrenceKind { return KindPeriodRecurring }
func (r PeriodRecurring) Repeats() bool        { return true }
func (r PeriodRecurring) isRecurrence()        {}

func (r PeriodRecurring) Validate() error {
	if r.Interval < 1 {
		return &RecurrenceFieldError{Kind: KindPeriodRecurring, Field: "interval", Reason: "must be >= 1"}
	}
	if !r.Unit.IsValid() {
		return &RecurrenceFieldError{Kind: KindPeriodRecurring, Field: "unit", Reason: fmt.Sprintf("unknown value %q", r.Unit)}
	}
	switch r.Unit {
	case PeriodUnitYearly:
		if len(r.Months) == 0 {
			return &RecurrenceFieldError{Kind: KindPeriodRecurring, Field: "months", Reason: "yearly unit requires a qualifying month set"}
		}
		seen := make(map[time.Month]bool, len(r.Months))
		for _, m := range r.Months {
			if m < time.January || m > time.December {
				return &RecurrenceFieldError{Kind: KindPeriodRecurring, Field: "months", Reason: fmt.Sprintf("month %d out of range", m)}
			}
			if seen[m] {
				return &RecurrenceFieldError{Kind: KindPeriodRecurring, Field: "months", Reason: fmt.Sprintf("duplicate month %d", m)}
			}
			seen[m] = true
		}
	default:
		if len(r.Months) > 0 {
			return &RecurrenceFieldError{Kind: KindPeriodRecurring, Field: "months", Reason: "month set only applies to the yearly unit"}
		}
	}
	return nil
}

// =============================================================================
// JSON CODEC - Wire and storage form of the union
// =============================================================================

type recurrenceJSON struct {
	Kind        RecurrenceKind   `json:"kind"`
	Interval    int              `json:"interval,omitempty"`
	Unit        string           `json:"unit,omitempty"`
	Monthly     *monthlyModeJSON `json:"monthly,omitempty"`
	Adjust      AdjustPolicy     `json:"adjust,omitempty"`
	KeepInMonth bool             `json:"keep_in_month,omitempty"`
	Months      []int            `json:"months,omitempty"`
}

type monthlyModeJSON struct {
	Mode    string `json:"mode"`
	Day     int    `json:"day,omitempty"`
	Ordinal int    `json:"ordinal,omitempty"`
	Weekday string `json:"weekday,omitempty"`
	K       int    `json:"k,omitempty"`
	FromEnd bool   `json:"from_end,omitempty"`
}

const (
	modeFixedDay        = "fixed_day"
	modeRelativeWeekday = "relative_weekday"
	modeBankDay         = "bank_day"
)

// EncodeRecurrence serializes a recurrence to its JSON form.
func EncodeRecurrence(r Recurrence) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil recurrence", ErrInvalidRecurrence)
	}
	out := recurrenceJSON{Kind: r.Kind()}
	switch v := r.(type) {
	case Once, PeriodOnce:
	case DateRecurring:
		out.Interval = v.Interval
		out.Unit = string(v.Unit)
		out.Adjust = v.Adjust
		out.KeepInMonth = v.KeepInMonth
		if v.Monthly != nil {
			mode, err := encodeMonthlyMode(v.Monthly)
			if err != nil {
				return nil, err
			}
			out.Monthly = mode
		}
	case PeriodRecurring:
		out.Interval = v.Interval
		out.Unit = string(v.Unit)
		for _, m := range v.Months {
			out.Months = append(out.Months, int(m))
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidRecurrence, r.Kind())
	}
	return json.Marshal(out)
}

func encodeMonthlyMode(m MonthlyMode) (*monthlyModeJSON, error) {
	switch v := m.(type) {
	case MonthlyFixedDay:
		return &monthlyModeJSON{Mode: modeFixedDay, Day: v.Day}, nil
	case MonthlyRelativeWeekday:
		return &monthlyModeJSON{Mode: modeRelativeWeekday, Ordinal: int(v.Ordinal), Weekday: weekdayName(v.Weekday)}, nil
	case MonthlyBankDay:
		return &monthlyModeJSON{Mode: modeBankDay, K: v.K, FromEnd: v.FromEnd}, nil
	default:
		return nil, fmt.Errorf("%w: unknown monthly sub-mode %T", ErrInvalidRecurrence, m)
	}
}

// DecodeRecurrence parses and validates the JSON form of a recurrence.
func DecodeRecurrence(data []byte) (Recurrence, error) {
	var raw recurrenceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
	}

	var r Recurrence
	switch raw.Kind {
	case KindOnce:
		r = Once{}
	case KindPeriodOnce:
		r = PeriodOnce{}
	case KindDateRecurring:
		dr := DateRecurring{
			Interval:    raw.Interval,
			Unit:        RecurrenceUnit(raw.Unit),
			Adjust:      raw.Adjust,
			KeepInMonth: raw.KeepInMonth,
		}
		if raw.Monthly != nil {
			mode, err := decodeMonthlyMode(raw.Monthly)
			if err != nil {
				return nil, err
			}
			dr.Monthly = mode
		}
		r = dr
	case KindPeriodRecurring:
		pr := PeriodRecurring{
			Interval: raw.Interval,
			Unit:     PeriodUnit(raw.Unit),
		}
		for _, m := range raw.Months {
			pr.Months = append(pr.Months, time.Month(m))
		}
		r = pr
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidRecurrence, raw.Kind)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func decodeMonthlyMode(raw *monthlyModeJSON) (MonthlyMode, error) {
	switch raw.Mode {
	case modeFixedDay:
		return MonthlyFixedDay{Day: raw.Day}, nil
	case modeRelativeWeekday:
		wd, err := parseWeekday(raw.Weekday)
		if err != nil {
			return nil, err
		}
		return MonthlyRelativeWeekday{Ordinal: WeekOrdinal(raw.Ordinal), Weekday: wd}, nil
	case modeBankDay:
		return MonthlyBankDay{K: raw.K, FromEnd: raw.FromEnd}, nil
	default:
		return nil, fmt.Errorf("%w: unknown monthly sub-mode %q", ErrInvalidRecurrence, raw.Mode)
	}
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidRecurrence, s)
	}
	return wd, nil
}

func weekdayName(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}

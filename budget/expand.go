/*
expand.go - Recurrence expansion over an explicit window

PURPOSE:
  Turns one amount pattern into its concrete occurrences within a date
  range. Expansion is pure and strictly window-bounded: the engine never
  generates beyond the caller-supplied range, whatever the pattern's
  cardinality, so every entry point terminates trivially.

EXPANSION PIPELINE (date-anchored kinds):
  1. Clip the requested window to the pattern's validity range
  2. Generate candidate anchor dates by stepping interval/unit
  3. Pass each candidate through the bank-day adjuster
  4. Keep final dates inside the clipped window
  5. Collapse same-date occurrences unless the pattern opts out

SEE ALSO:
  - recurrence.go: The kinds and sub-modes expanded here
  - adjust.go: Bank-day adjustment applied to candidates
  - compose.go: Concatenates expansions across a line's patterns
*/
package budget

import (
	"fmt"
	"sort"
	"time"
)

// adjustDriftDays bounds how far a bank-day walk can move a candidate.
// Candidates are generated over a window widened by this much and filtered
// on their final dates, so a shifted date near a window edge lands in
// exactly one adjacent window.
const adjustDriftDays = 31

// Expander expands amount patterns into occurrences. Stateless apart from
// the holiday calendar; safe for concurrent use.
type Expander struct {
	Adjuster *Adjuster
}

func NewExpander(calendar HolidayCalendar) *Expander {
	return &Expander{Adjuster: NewAdjuster(calendar)}
}

// Expand returns the pattern's occurrences within the window, clipped to
// the intersection of the window and the pattern's validity range.
// Patterns are validated at construction; Expand assumes a valid pattern.
func (e *Expander) Expand(p AmountPattern, w Window) ([]Occurrence, error) {
	if !w.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWindow, w)
	}
	if p.Recurrence == nil {
		return nil, fmt.Errorf("%w: recurrence is required", ErrInvalidPattern)
	}

	effective, ok := p.clip(w)
	if !ok {
		return nil, nil
	}

	switch r := p.Recurrence.(type) {
	case Once:
		if !effective.Contains(p.StartDate) {
			return nil, nil
		}
		date := p.StartDate
		return []Occurrence{{Date: &date, Period: PeriodOf(date), Amount: p.Amount, PatternID: p.ID}}, nil

	case PeriodOnce:
		if !effective.Contains(p.StartDate) {
			return nil, nil
		}
		return []Occurrence{{Period: PeriodOf(p.StartDate), Amount: p.Amount, PatternID: p.ID}}, nil

	case DateRecurring:
		return e.expandDateRecurring(p, r, effective), nil

	case PeriodRecurring:
		return expandPeriodRecurring(p, r, effective), nil

	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidRecurrence, p.Recurrence.Kind())
	}
}

// =============================================================================
// DATE-RECURRING EXPANSION
// =============================================================================

func (e *Expander) expandDateRecurring(p AmountPattern, r DateRecurring, effective Window) []Occurrence {
	policy := r.policy()

	gen := effective
	if policy != AdjustNone {
		widened := Window{
			From: effective.From.AddDays(-adjustDriftDays),
			To:   effective.To.AddDays(adjustDriftDays),
		}
		// Candidates still anchor inside the pattern's own range.
		gen, _ = p.clip(widened)
	}

	var candidates []Date
	switch r.Unit {
	case UnitDaily:
		candidates = stepCandidates(p.StartDate, r.Interval, gen)
	case UnitWeekly:
		candidates = stepCandidates(p.StartDate, 7*r.Interval, gen)
	case UnitMonthly:
		candidates = e.monthCandidates(p.StartDate, r.Interval, r.Monthly, gen)
	case UnitYearly:
		candidates = e.yearCandidates(p.StartDate, r.Interval, r.Monthly, gen)
	}

	occurrences := make([]Occurrence, 0, len(candidates))
	seen := make(map[Date]bool, len(candidates))
	for _, candidate := range candidates {
		final := e.Adjuster.Adjust(candidate, policy, r.KeepInMonth)
		if !effective.Contains(final) {
			continue
		}
		if !p.NoDedup {
			if seen[final] {
				continue
			}
			seen[final] = true
		}
		date := final
		occurrences = append(occurrences, Occurrence{
			Date:      &date,
			Period:    PeriodOf(date),
			Amount:    p.Amount,
			PatternID: p.ID,
		})
	}
	if len(occurrences) == 0 {
		return nil
	}
	return occurrences
}

// stepCandidates generates start + k*stepDays anchors inside the window,
// skipping the pre-window range arithmetically.
func stepCandidates(start Date, stepDays int, gen Window) []Date {
	first := start
	if delta := DaysBetween(start, gen.From); delta > 0 {
		k := (delta + stepDays - 1) / stepDays
		first = start.AddDays(k * stepDays)
	}

	var candidates []Date
	for d := first; d.BeforeOrEqual(gen.To); d = d.AddDays(stepDays) {
		candidates = append(candidates, d)
	}
	return candidates
}

// monthCandidates resolves the sub-mode day inside every Nth month from the
// start date's month.
func (e *Expander) monthCandidates(start Date, interval int, mode MonthlyMode, gen Window) []Date {
	startPeriod := PeriodOf(start)
	firstPeriod := startPeriod
	if steps := startPeriod.MonthsUntil(PeriodOf(gen.From)); steps > 0 {
		k := (steps + interval - 1) / interval
		firstPeriod = startPeriod.AddMonths(k * interval)
	}

	lastPeriod := PeriodOf(gen.To)
	var candidates []Date
	for period := firstPeriod; !period.After(lastPeriod); period = period.AddMonths(interval) {
		candidate, ok := e.dayInMonth(period, mode)
		if !ok || candidate.Before(start) || !gen.Contains(candidate) {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}

// yearCandidates resolves the sub-mode day inside the start date's month of
// every Nth year.
func (e *Expander) yearCandidates(start Date, interval int, mode MonthlyMode, gen Window) []Date {
	firstYear := start.Year()
	if ahead := gen.From.Year() - start.Year(); ahead > 0 {
		k := (ahead + interval - 1) / interval
		firstYear = start.Year() + k*interval
	}

	var candidates []Date
	for year := firstYear; year <= gen.To.Year(); year += interval {
		candidate, ok := e.dayInMonth(NewPeriod(year, start.Month()), mode)
		if !ok || candidate.Before(start) || !gen.Contains(candidate) {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}

// dayInMonth resolves a monthly sub-mode to a concrete day within the
// period. Returns false when the month has no such day (Kth bank day past
// the month's supply).
func (e *Expander) dayInMonth(period Period, mode MonthlyMode) (Date, bool) {
	switch m := mode.(type) {
	case MonthlyFixedDay:
		day := m.Day
		if last := DaysInMonth(period.Year, period.Month); day > last {
			day = last
		}
		return NewDate(period.Year, period.Month, day), true

	case MonthlyRelativeWeekday:
		return relativeWeekday(period, m), true

	case MonthlyBankDay:
		return e.kthBankDay(period, m)

	default:
		return Date{}, false
	}
}

func relativeWeekday(period Period, m MonthlyRelativeWeekday) Date {
	if m.Ordinal == OrdinalLast {
		last := period.End()
		back := (int(last.Weekday()) - int(m.Weekday) + 7) % 7
		return last.AddDays(-back)
	}
	first := period.Start()
	forward := (int(m.Weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDays(forward + 7*(int(m.Ordinal)-1))
}

// kthBankDay counts bank days forward from the month start, or backward
// from the month end when FromEnd is set.
func (e *Expander) kthBankDay(period Period, m MonthlyBankDay) (Date, bool) {
	step := 1
	d := period.Start()
	if m.FromEnd {
		step = -1
		d = period.End()
	}

	count := 0
	for period.Contains(d) {
		if d.IsBankDay(e.Adjuster.Calendar) {
			count++
			if count == m.K {
				return d, true
			}
		}
		d = d.AddDays(step)
	}
	return Date{}, false
}

// =============================================================================
// PERIOD-RECURRING EXPANSION
// =============================================================================

func expandPeriodRecurring(p AmountPattern, r PeriodRecurring, effective Window) []Occurrence {
	startPeriod := PeriodOf(p.StartDate)
	firstPeriod := PeriodOf(effective.From)
	lastPeriod := PeriodOf(effective.To)

	var periods []Period
	switch r.Unit {
	case PeriodUnitMonthly:
		first := startPeriod
		if steps := startPeriod.MonthsUntil(firstPeriod); steps > 0 {
			k := (steps + r.Interval - 1) / r.Interval
			first = startPeriod.AddMonths(k * r.Interval)
		}
		for period := first; !period.After(lastPeriod); period = period.AddMonths(r.Interval) {
			periods = append(periods, period)
		}

	case PeriodUnitYearly:
		months := sortedMonths(r.Months)
		firstYear := startPeriod.Year
		if ahead := firstPeriod.Year - startPeriod.Year; ahead > 0 {
			k := (ahead + r.Interval - 1) / r.Interval
			firstYear = startPeriod.Year + k*r.Interval
		}
		for year := firstYear; year <= lastPeriod.Year; year += r.Interval {
			for _, month := range months {
				period := NewPeriod(year, month)
				if period.Before(startPeriod) || period.Before(firstPeriod) {
					continue
				}
				if period.After(lastPeriod) {
					break
				}
				periods = append(periods, period)
			}
		}
	}

	if len(periods) == 0 {
		return nil
	}
	occurrences := make([]Occurrence, 0, len(periods))
	for _, period := range periods {
		occurrences = append(occurrences, Occurrence{
			Period:    period,
			Amount:    p.Amount,
			PatternID: p.ID,
		})
	}
	return occurrences
}

func sortedMonths(months []time.Month) []time.Month {
	out := append([]time.Month(nil), months...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

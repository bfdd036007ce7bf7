package scheduler

import (
	"math"
	"time"
)

// FarFutureDue is the sentinel due date for courses with no due period:
// effectively "never due", but still a representable, comparable instant.
var FarFutureDue = time.Date(9999, time.December, 31, 23, 58, 58, 999*int(time.Millisecond), time.UTC)

// Occurrence is one dated occurrence of a course offset: its window, the
// signed days remaining until the due date, and the recurrence cycle it
// belongs to (1-based; 0 when the curriculum does not repeat or the first
// cycle has not elapsed yet).
type Occurrence struct {
	StartDate   time.Time
	DueDate     time.Time
	DueDaysLeft int
	Cycle       int
}

// ComputeOccurrences reconstructs every occurrence of a course offset from
// the curriculum anchor and "today" alone; no cycle counter is persisted
// anywhere.
//
// The start month is the anchor month shifted by offsetMonths (with year
// carry), optionally snapped down to a quarter boundary. The due date is the
// last instant of the month duePeriodMonths-1 months after the start month.
// When the curriculum repeats and at least one full cycle has elapsed, every
// cycle from the first through the current one is returned, each shifted by
// a whole number of repeat cycles from the anchor.
func ComputeOccurrences(offsetMonths, duePeriodMonths int, anchor, today time.Time, repeatCycleMonths int, alignment string, loc *time.Location) []Occurrence {
	startPeriod := int(anchor.Month()) - 1 + offsetMonths
	startMonth := ((startPeriod % 12) + 12) % 12
	if alignment == "quarter" {
		startMonth = (startMonth / 3) * 3
	}
	startYear := anchor.Year() + floorDiv(startPeriod, 12)

	if repeatCycleMonths > 0 {
		cycleYears := float64(repeatCycleMonths) / 12
		elapsed := yearsBetween(anchor, today)
		if elapsed >= cycleYears {
			cycles := int(math.Ceil(elapsed / cycleYears))
			// An exact multiple means the next cycle starts today; include it.
			if math.Mod(elapsed, cycleYears) == 0 {
				cycles++
			}
			out := make([]Occurrence, 0, cycles)
			for i := 0; i < cycles; i++ {
				y, m := shiftMonths(startYear, startMonth, i*repeatCycleMonths)
				out = append(out, buildOccurrence(y, m, duePeriodMonths, today, i+1, loc))
			}
			return out
		}
	}
	return []Occurrence{buildOccurrence(startYear, startMonth, duePeriodMonths, today, 0, loc)}
}

func buildOccurrence(year, month0, duePeriodMonths int, today time.Time, cycle int, loc *time.Location) Occurrence {
	start := time.Date(year, time.Month(month0+1), 1, 0, 0, 0, 0, loc)
	due := FarFutureDue
	if duePeriodMonths > 0 {
		// Day zero of month+duePeriod is the last day of month+duePeriod-1.
		due = time.Date(year, time.Month(month0+1+duePeriodMonths), 0, 23, 59, 59, 999*int(time.Millisecond), loc)
	}
	return Occurrence{
		StartDate:   start,
		DueDate:     due,
		DueDaysLeft: DaysLeft(due, today),
		Cycle:       cycle,
	}
}

// DaysLeft is the ceiling of the fractional-day distance from today to t.
// Negative when t is in the past.
func DaysLeft(t, today time.Time) int {
	return int(math.Ceil(t.Sub(today).Hours() / 24))
}

// yearsBetween measures the elapsed time between two instants in fractional
// calendar years: whole months plus a fraction of the partial month.
func yearsBetween(from, to time.Time) float64 {
	return monthsBetween(from, to) / 12
}

func monthsBetween(from, to time.Time) float64 {
	whole := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	anchor := from.AddDate(0, whole, 0)
	var adjust float64
	if to.Before(anchor) {
		prev := from.AddDate(0, whole-1, 0)
		if d := anchor.Sub(prev); d > 0 {
			adjust = float64(to.Sub(anchor)) / float64(d)
		}
	} else {
		next := from.AddDate(0, whole+1, 0)
		if d := next.Sub(anchor); d > 0 {
			adjust = float64(to.Sub(anchor)) / float64(d)
		}
	}
	return float64(whole) + adjust
}

func shiftMonths(year, month0, add int) (int, int) {
	m := month0 + add
	return year + floorDiv(m, 12), ((m % 12) + 12) % 12
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

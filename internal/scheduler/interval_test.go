package scheduler

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeOccurrencesYearlyRepeat(t *testing.T) {
	anchor := date(2021, time.January, 1)
	today := date(2023, time.February, 1)

	occs := ComputeOccurrences(0, 3, anchor, today, 12, "", time.UTC)
	if len(occs) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(occs))
	}
	wantStarts := []time.Time{
		date(2021, time.January, 1),
		date(2022, time.January, 1),
		date(2023, time.January, 1),
	}
	for i, occ := range occs {
		if !occ.StartDate.Equal(wantStarts[i]) {
			t.Fatalf("occurrence %d start = %v, want %v", i, occ.StartDate, wantStarts[i])
		}
		if occ.Cycle != i+1 {
			t.Fatalf("occurrence %d cycle = %d, want %d", i, occ.Cycle, i+1)
		}
	}
}

func TestComputeOccurrencesExactCycleBoundary(t *testing.T) {
	anchor := date(2021, time.January, 1)
	today := date(2023, time.January, 1)

	// Exactly two years elapsed on a one-year cycle: the boundary day already
	// belongs to the third cycle.
	occs := ComputeOccurrences(0, 3, anchor, today, 12, "", time.UTC)
	if len(occs) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(occs))
	}
}

func TestComputeOccurrencesNoRepeat(t *testing.T) {
	anchor := date(2024, time.January, 15)
	today := date(2024, time.February, 1)

	occs := ComputeOccurrences(0, 3, anchor, today, 0, "", time.UTC)
	if len(occs) != 1 {
		t.Fatalf("got %d occurrences, want 1", len(occs))
	}
	occ := occs[0]
	if !occ.StartDate.Equal(date(2024, time.January, 1)) {
		t.Fatalf("start = %v, want 2024-01-01", occ.StartDate)
	}
	wantDue := time.Date(2024, time.March, 31, 23, 59, 59, 999*int(time.Millisecond), time.UTC)
	if !occ.DueDate.Equal(wantDue) {
		t.Fatalf("due = %v, want %v", occ.DueDate, wantDue)
	}
	if occ.Cycle != 0 {
		t.Fatalf("cycle = %d, want 0", occ.Cycle)
	}
}

func TestComputeOccurrencesOffsetCarriesYear(t *testing.T) {
	anchor := date(2023, time.November, 1)
	today := date(2024, time.March, 1)

	occs := ComputeOccurrences(3, 1, anchor, today, 0, "", time.UTC)
	if len(occs) != 1 {
		t.Fatalf("got %d occurrences, want 1", len(occs))
	}
	if !occs[0].StartDate.Equal(date(2024, time.February, 1)) {
		t.Fatalf("start = %v, want 2024-02-01", occs[0].StartDate)
	}
}

func TestComputeOccurrencesQuarterAlignment(t *testing.T) {
	anchor := date(2024, time.May, 20)
	today := date(2024, time.June, 1)

	// May snaps down to the April quarter boundary.
	occs := ComputeOccurrences(0, 3, anchor, today, 0, "quarter", time.UTC)
	if !occs[0].StartDate.Equal(date(2024, time.April, 1)) {
		t.Fatalf("start = %v, want 2024-04-01", occs[0].StartDate)
	}
}

func TestComputeOccurrencesNoDuePeriod(t *testing.T) {
	occs := ComputeOccurrences(0, 0, date(2024, time.January, 1), date(2024, time.February, 1), 0, "", time.UTC)
	if !occs[0].DueDate.Equal(FarFutureDue) {
		t.Fatalf("due = %v, want far-future sentinel", occs[0].DueDate)
	}
}

func TestDaysLeft(t *testing.T) {
	today := date(2024, time.March, 28)
	due := time.Date(2024, time.March, 31, 23, 59, 59, 999*int(time.Millisecond), time.UTC)

	if got := DaysLeft(due, today); got != 4 {
		t.Fatalf("DaysLeft(future due) = %d, want 4", got)
	}
	if got := DaysLeft(due, date(2024, time.April, 2)); got != -1 {
		t.Fatalf("DaysLeft(past due) = %d, want -1", got)
	}
	if got := DaysLeft(today, today); got != 0 {
		t.Fatalf("DaysLeft(same instant) = %d, want 0", got)
	}
}

func TestMonthsBetween(t *testing.T) {
	cases := []struct {
		name string
		from time.Time
		to   time.Time
		want float64
	}{
		{"whole_years", date(2021, time.January, 1), date(2023, time.January, 1), 24},
		{"one_month", date(2024, time.January, 1), date(2024, time.February, 1), 1},
		{"same_day", date(2024, time.January, 1), date(2024, time.January, 1), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := monthsBetween(tc.from, tc.to)
			if got != tc.want {
				t.Fatalf("monthsBetween = %v, want %v", got, tc.want)
			}
		})
	}

	// A partial month contributes a fraction strictly between the whole
	// month counts around it.
	got := monthsBetween(date(2024, time.January, 1), date(2024, time.February, 16))
	if got <= 1 || got >= 2 {
		t.Fatalf("monthsBetween(partial) = %v, want between 1 and 2", got)
	}
}

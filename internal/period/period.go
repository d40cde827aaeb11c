// Package period implements the budget period window arithmetic: mapping a
// period kind and a reference date to an inclusive [start, end] date range.
package period

import (
	"fmt"
	"time"
)

// Period is a recurring time window over which a budget limit applies.
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Annual  Period = "annual"
)

// Valid reports whether p is a recognized period.
func (p Period) Valid() bool {
	switch p {
	case Weekly, Monthly, Annual:
		return true
	}
	return false
}

// Window returns the inclusive [start, end] date range of the period
// containing ref. Weekly windows start on Monday; monthly and annual windows
// span the full calendar month and year. Time-of-day is discarded: both
// bounds are midnight in ref's location.
//
// An unrecognized period is a programming-contract violation and panics;
// user input is validated before it reaches this package.
func Window(p Period, ref time.Time) (start, end time.Time) {
	day := truncateToDay(ref)
	switch p {
	case Weekly:
		// Monday-start week. time.Weekday has Sunday == 0.
		offset := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 6)
	case Monthly:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		end = start.AddDate(0, 1, -1)
	case Annual:
		start = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
		end = time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, day.Location())
	default:
		panic(fmt.Sprintf("period: unknown period %q", p))
	}
	return start, end
}

// DaysRemaining returns the number of whole days from ref until the end of
// the period window containing it. Zero on the window's last day.
func DaysRemaining(p Period, ref time.Time) int {
	_, end := Window(p, ref)
	return int(end.Sub(truncateToDay(ref)).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

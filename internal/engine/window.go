// Package engine implements the temporal event aggregation engine. It
// resolves local-calendar windows into UTC instant ranges, clips stored
// intervals against them, accumulates minutes and detects logging streaks.
// Every window-dependent operation takes the current instant as an explicit
// parameter so results stay deterministic under test.
package engine

import (
	"strings"
	"time"
)

// Window is a half-open UTC instant range [Start, End). A zero Start stands
// for the minimum representable instant, the "all time" lower bound.
type Window struct {
	Start time.Time
	End   time.Time
}

// Date is a local calendar date with no attached instant or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// AddDays shifts the date by n calendar days, normalising across month and
// year boundaries.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// Midnight returns the date's local midnight in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Label returns the 3-letter lowercase weekday abbreviation used as a chart
// label, e.g. "mon".
func (d Date) Label() string {
	return strings.ToLower(d.Midnight(time.UTC).Weekday().String()[:3])
}

// DayWindow resolves a local calendar date to its UTC day window
// [local midnight, next local midnight).
func DayWindow(d Date, loc *time.Location) Window {
	return Window{
		Start: d.Midnight(loc).UTC(),
		End:   d.AddDays(1).Midnight(loc).UTC(),
	}
}

// TrailingWindow resolves a trailing span of days local days ending now:
// [local midnight of today-(days-1), now). days == 0 is the all-time
// sentinel.
func TrailingWindow(days int, now time.Time, loc *time.Location) Window {
	if days <= 0 {
		return Window{End: now.UTC()}
	}
	anchor := DateOf(now.In(loc)).AddDays(-(days - 1))
	return Window{Start: anchor.Midnight(loc).UTC(), End: now.UTC()}
}

// DatesEnding returns the n consecutive dates finishing with end, oldest
// first.
func DatesEnding(end Date, n int) []Date {
	dates := make([]Date, n)
	for i := range dates {
		dates[i] = end.AddDays(i - (n - 1))
	}
	return dates
}

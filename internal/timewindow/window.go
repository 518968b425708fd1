// Package timewindow computes the day boundaries every "today" query uses.
//
// A day is the half-open interval [local midnight, next local midnight) in
// the configured location. Lookups, companion cleanup and broadcast
// listings all go through Today so they agree on the same convention.
package timewindow

import "time"

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Day returns the window's calendar date as YYYY-MM-DD.
func (w Window) Day() string {
	return w.Start.Format(time.DateOnly)
}

// StartOfDay returns local midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Today returns the window for the day containing now.
func Today(now time.Time, loc *time.Location) Window {
	start := StartOfDay(now, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// DaysAgo returns local midnight n days before now's day.
func DaysAgo(now time.Time, n int, loc *time.Location) time.Time {
	return StartOfDay(now, loc).AddDate(0, 0, -n)
}

// Clock supplies the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// System is the wall clock.
func System() time.Time { return time.Now() }

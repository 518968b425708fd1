package policy

import (
	"fmt"
	"time"

	"report-bot/internal/timewindow"
)

// LateMinutes returns the signed number of minutes between dayStartHour:00
// and the arrival time. An empty arrival means "not late" and yields 0.
// Early arrivals come back negative; nothing is clamped.
//
// The arrival is either an RFC 3339 timestamp, converted into loc, or a
// bare "15:04" clock reading taken on now's day.
func LateMinutes(arrival string, dayStartHour int, now time.Time, loc *time.Location) (int, error) {
	if arrival == "" {
		return 0, nil
	}

	at, err := parseArrival(arrival, now, loc)
	if err != nil {
		return 0, err
	}
	start := timewindow.StartOfDay(at, loc).Add(time.Duration(dayStartHour) * time.Hour)
	return int(at.Sub(start) / time.Minute), nil
}

func parseArrival(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	clock, err := time.ParseInLocation("15:04", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse arrival %q: want RFC 3339 or HH:MM", s)
	}
	day := timewindow.StartOfDay(now, loc)
	return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), nil
}

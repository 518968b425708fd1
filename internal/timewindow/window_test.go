package timewindow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"report-bot/internal/timewindow"
)

func TestToday_SpansLocalMidnightToMidnight(t *testing.T) {
	loc := time.FixedZone("MMT", 6*3600+1800)
	now := time.Date(2026, 3, 10, 23, 59, 0, 0, loc)

	w := timewindow.Today(now, loc)

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, loc), w.Start)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, loc), w.End)
	assert.Equal(t, "2026-03-10", w.Day())
	assert.True(t, w.Contains(now))
	assert.True(t, w.Contains(w.Start))
	assert.False(t, w.Contains(w.End))
}

func TestToday_ConvertsIntoLocation(t *testing.T) {
	loc := time.FixedZone("MMT", 6*3600+1800)
	// 20:00 UTC is already 02:30 the next day in loc.
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-11", timewindow.Today(now, loc).Day())
}

func TestDaysAgo(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), timewindow.DaysAgo(now, 9, time.UTC))
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), timewindow.DaysAgo(now, 0, time.UTC))
}

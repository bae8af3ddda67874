package stealth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWeekdays(t *testing.T) {
	days := ParseWeekdays([]string{"Monday", "tue", " Friday ", "x", "funday"})
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Friday}, days)
}

func TestScheduleWithin(t *testing.T) {
	s := Schedule{
		Enabled:  true,
		Start:    9,
		End:      18,
		WorkDays: ParseWeekdays([]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}),
	}

	// 2026-10-19 is a Monday
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before opening", time.Date(2026, 10, 19, 8, 59, 0, 0, time.UTC), false},
		{"opening hour", time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), true},
		{"last hour", time.Date(2026, 10, 19, 17, 30, 0, 0, time.UTC), true},
		{"closing hour", time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC), false},
		{"saturday", time.Date(2026, 10, 24, 11, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Within(tt.at))
		})
	}
}

func TestScheduleDisabledIsAlwaysOpen(t *testing.T) {
	s := Schedule{Start: 9, End: 10}
	assert.True(t, s.Within(time.Date(2026, 10, 24, 3, 0, 0, 0, time.UTC)))
	assert.Zero(t, s.Until(time.Date(2026, 10, 24, 3, 0, 0, 0, time.UTC)))
}

func TestScheduleUntil(t *testing.T) {
	s := Schedule{
		Enabled:  true,
		Start:    9,
		End:      18,
		WorkDays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	}

	// Monday early morning opens the same day
	assert.Equal(t, 2*time.Hour, s.Until(time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)))
	// Friday evening waits for Monday
	assert.Equal(t, 63*time.Hour, s.Until(time.Date(2026, 10, 23, 18, 0, 0, 0, time.UTC)))
	// inside the window
	assert.Zero(t, s.Until(time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)))
}

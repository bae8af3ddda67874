package stealth

import (
	"strings"
	"time"
)

// Schedule is a weekly working window. Hours are local, End is exclusive.
type Schedule struct {
	Enabled  bool
	Start    int
	End      int
	WorkDays []time.Weekday
}

// ParseWeekdays converts names like "Monday" or "mon" into weekdays,
// silently skipping anything unrecognised.
func ParseWeekdays(names []string) []time.Weekday {
	days := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if len(name) < 3 {
			continue
		}
		for d := time.Sunday; d <= time.Saturday; d++ {
			if strings.HasPrefix(strings.ToLower(d.String()), name[:3]) {
				days = append(days, d)
				break
			}
		}
	}
	return days
}

// Within reports whether t falls inside the working window. A disabled
// schedule is always open.
func (s Schedule) Within(t time.Time) bool {
	if !s.Enabled {
		return true
	}
	return s.isWorkDay(t.Weekday()) && t.Hour() >= s.Start && t.Hour() < s.End
}

// Until returns how long to wait from t until the window next opens.
// It returns zero when t is already inside it, and zero when no working
// day is configured.
func (s Schedule) Until(t time.Time) time.Duration {
	if s.Within(t) || len(s.WorkDays) == 0 || s.End <= s.Start {
		return 0
	}

	for offset := 0; offset <= 7; offset++ {
		day := t.AddDate(0, 0, offset)
		if !s.isWorkDay(day.Weekday()) {
			continue
		}
		open := time.Date(day.Year(), day.Month(), day.Day(), s.Start, 0, 0, 0, t.Location())
		if open.After(t) {
			return open.Sub(t)
		}
	}
	return 0
}

func (s Schedule) isWorkDay(d time.Weekday) bool {
	for _, wd := range s.WorkDays {
		if wd == d {
			return true
		}
	}
	return false
}

// Package schedule expands trainer scheduling requests into concrete session dates.
package schedule

import (
	"time"
)

// SessionHour is the time of day every generated session is normalized to.
const SessionHour = 12

// Noon returns t's calendar date at SessionHour in t's location.
func Noon(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, SessionHour, 0, 0, 0, t.Location())
}

// SingleDate is the non-recurring case: one session on start's calendar date.
func SingleDate(start time.Time) []time.Time {
	return []time.Time{Noon(start)}
}

// RecurringDates returns every calendar date in [start, end] whose weekday is
// in weekdays, each normalized to noon, in increasing order.
// An inverted range or an empty weekday set yields an empty result.
func RecurringDates(start, end time.Time, weekdays []time.Weekday) []time.Time {
	dates := []time.Time{}
	if len(weekdays) == 0 {
		return dates
	}

	var wanted [7]bool
	hasDay := false
	for _, wd := range weekdays {
		if wd >= time.Sunday && wd <= time.Saturday {
			wanted[wd] = true
			hasDay = true
		}
	}
	if !hasDay {
		return dates
	}

	// Compare calendar dates only; time of day on the inputs is ignored.
	current := Noon(start)
	last := time.Date(end.Year(), end.Month(), end.Day(), SessionHour, 0, 0, 0, start.Location())
	for !current.After(last) {
		if wanted[current.Weekday()] {
			dates = append(dates, current)
		}
		y, m, d := current.Date()
		current = time.Date(y, m, d+1, SessionHour, 0, 0, 0, current.Location())
	}
	return dates
}

// Weekdays converts 0 (Sunday) .. 6 (Saturday) indices into time.Weekday values.
// It reports false if any index is out of range.
func Weekdays(indices []int) ([]time.Weekday, bool) {
	out := make([]time.Weekday, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i > 6 {
			return nil, false
		}
		out = append(out, time.Weekday(i))
	}
	return out, true
}

package service

import (
	"fmt"
	"time"
)

// WeekKey buckets a date into its ISO week, e.g. "2025-W02".
func WeekKey(d time.Time) string {
	year, week := d.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ISOWeekStart returns the Monday of the given ISO week.
func ISOWeekStart(year, week int) time.Time {
	// Jan 4 is always inside ISO week 1.
	t := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := t.AddDate(0, 0, 1-wd)
	return monday.AddDate(0, 0, (week-1)*7)
}

// ISOWeekRange returns the Monday and Sunday of the given ISO week.
func ISOWeekRange(year, week int) (time.Time, time.Time) {
	start := ISOWeekStart(year, week)
	return start, start.AddDate(0, 0, 6)
}

// MonthRange returns the first and last day of the given month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// TrailingWeekKeys lists the ISO week keys for the n weeks ending with the
// week containing now, oldest first.
func TrailingWeekKeys(now time.Time, n int) []string {
	if n < 1 {
		n = 1
	}
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, WeekKey(now.AddDate(0, 0, -7*i)))
	}
	return keys
}

// WorkingDays counts Monday-Friday calendar days in [from, to] inclusive.
// Holidays are an external exception list applied as a pre-filter; there is
// no built-in holiday calendar.
func WorkingDays(from, to time.Time, holidays []time.Time) int {
	if to.Before(from) {
		return 0
	}
	skip := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		skip[h.Format("2006-01-02")] = true
	}
	count := 0
	for d := truncateDay(from); !d.After(truncateDay(to)); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if skip[d.Format("2006-01-02")] {
			continue
		}
		count++
	}
	return count
}

func truncateDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

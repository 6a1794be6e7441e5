package domain

import (
	"strings"
	"time"
)

// Contains reports whether a YYYY-MM-DD date falls in the window ending
// today. Unparseable dates only pass WindowAny.
func (w DateWindow) Contains(date string, now time.Time) bool {
	if w == WindowAny {
		return true
	}
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), time.Local)
	if err != nil {
		return false
	}
	y, m, day := now.In(time.Local).Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, time.Local)
	switch w {
	case WindowToday:
		return d.Equal(today)
	case WindowWeek:
		return !d.Before(today.AddDate(0, 0, -7))
	case WindowMonth:
		return !d.Before(today.AddDate(0, -1, 0))
	default:
		return true
	}
}

func (w DateWindow) Valid() bool {
	switch w {
	case WindowAny, WindowToday, WindowWeek, WindowMonth:
		return true
	default:
		return false
	}
}

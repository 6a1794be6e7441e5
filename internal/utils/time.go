package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	layoutDate = "2006-01-02"
	layoutHM   = "15:04"
)

// Clock abstracts time.Now so stages can be tested at fixed instants.
type Clock func() time.Time

// Now returns c() or time.Now when c is nil.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// FormatDate formats time to YYYY-MM-DD in local timezone.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(layoutDate)
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// AddClock adds fractional hours to an "HH:MM" time, wrapping at midnight.
func AddClock(hm string, hours float64) string {
	t, err := time.Parse(layoutHM, strings.TrimSpace(hm))
	if err != nil {
		return hm
	}
	mins := t.Hour()*60 + t.Minute() + int(hours*60)
	mins %= 24 * 60
	return time.Date(2000, 1, 1, mins/60, mins%60, 0, 0, time.UTC).Format(layoutHM)
}

// FormatDuration renders fractional hours as "5h 30m".
func FormatDuration(hours float64) string {
	h := int(hours)
	m := int((hours - float64(h)) * 60)
	return fmt.Sprintf("%dh %dm", h, m)
}

package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of booking and lock dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date.  The result is midnight UTC
// of that date so Weekday() reflects the calendar date as written.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DateOf returns the calendar date of t as seen in loc, normalised to
// midnight UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseClock converts "HH:MM" (or "HH:MM:SS" as returned by MySQL TIME
// columns) into minutes after midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes after midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock rewrites a TIME value into HH:MM; unparseable input is
// returned unchanged.
func NormalizeClock(s string) string {
	m, err := ParseClock(s)
	if err != nil {
		return s
	}
	return FormatClock(m)
}

// At combines a calendar date with a wall clock time in loc and returns
// the UTC instant.
func At(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	mins, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(time.Duration(mins) * time.Minute).UTC(), nil
}

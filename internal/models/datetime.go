package models

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the wire format for every slot and appointment time.
const DateTimeLayout = "2006-01-02 15:04:05"

// HumanLayout is used in notification texts.
const HumanLayout = "Jan 2, 2006 at 3:04 PM"

var parseLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDateTime reads a clinic wall-clock time. The space separator is
// normalized to "T" first, and "YYYY-MM-DDTHH:MM" (a datetime-local form
// value) is accepted too. The result carries the clock fields in UTC and is
// never shifted by the process time zone.
func ParseDateTime(s string) (time.Time, error) {
	norm := strings.Replace(strings.TrimSpace(s), " ", "T", 1)
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, norm, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date_time %q, want YYYY-MM-DD HH:MM:SS", ErrValidation, s)
}

func FormatDateTime(t time.Time) string {
	return Wall(t).Format(DateTimeLayout)
}

// Wall keeps the clock fields of t and drops its location, truncated to the
// second.
func Wall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// WallNow is the current clinic wall-clock time in loc.
func WallNow(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return Wall(now.In(loc))
}

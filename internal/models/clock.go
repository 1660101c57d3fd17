package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is the canonical day-of-week label stored on slots and configs.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

var weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday accepts full or three-letter day names in any case.
func ParseWeekday(raw string) (Weekday, error) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	for _, day := range weekdays {
		full := strings.ToLower(string(day))
		if needle == full || needle == full[:3] {
			return day, nil
		}
	}
	return "", fmt.Errorf("unknown day of week %q", raw)
}

// Order returns 1 for Monday through 7 for Sunday, 0 for unknown values.
func (d Weekday) Order() int {
	for i, day := range weekdays {
		if day == d {
			return i + 1
		}
	}
	return 0
}

func (d Weekday) Valid() bool {
	return d.Order() > 0
}

// Std converts to the standard library weekday.
func (d Weekday) Std() time.Weekday {
	return time.Weekday(d.Order() % 7)
}

// EndOfDay is "24:00", accepted as the end of a window that runs to midnight.
const EndOfDay = 24 * 60

// ParseClock parses a 24h "HH:MM" value into minutes since midnight. "24:00"
// parses to EndOfDay.
func ParseClock(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "24:00" {
		return EndOfDay, nil
	}
	t, err := time.Parse("15:04", trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock re-renders a time so "9:00" and "09:00" compare equal.
func NormalizeClock(raw string) (string, error) {
	m, err := ParseClock(raw)
	if err != nil {
		return "", err
	}
	return FormatClock(m), nil
}

// Interval is a half-open [StartTime, EndTime) window within a day.
type Interval struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Bounds returns the interval in minutes since midnight.
func (i Interval) Bounds() (int, int, error) {
	start, err := ParseClock(i.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(i.EndTime)
	if err != nil {
		return 0, 0, err
	}
	if start >= end {
		return 0, 0, fmt.Errorf("interval start %s must be before end %s", i.StartTime, i.EndTime)
	}
	return start, end, nil
}

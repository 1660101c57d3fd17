package scheduler

import (
	"fmt"
	"sort"

	"github.com/noah-isme/timetable-api/internal/models"
)

// TimeKey identifies simultaneity: two meetings collide when their keys are equal.
type TimeKey struct {
	Day   models.Weekday
	Start string
	End   string
}

// NewTimeKey builds a key with canonical day and clock formatting.
func NewTimeKey(day models.Weekday, start, end string) TimeKey {
	if parsed, err := models.ParseWeekday(string(day)); err == nil {
		day = parsed
	}
	if v, err := models.NormalizeClock(start); err == nil {
		start = v
	}
	if v, err := models.NormalizeClock(end); err == nil {
		end = v
	}
	return TimeKey{Day: day, Start: start, End: end}
}

// KeyOf returns the time key of a persisted slot.
func KeyOf(slot models.ScheduleSlot) TimeKey {
	return NewTimeKey(slot.DayOfWeek, slot.StartTime, slot.EndTime)
}

func (k TimeKey) String() string {
	return fmt.Sprintf("%s %s-%s", k.Day, k.Start, k.End)
}

// Less orders keys by weekday, then start, then end.
func (k TimeKey) Less(other TimeKey) bool {
	if a, b := k.Day.Order(), other.Day.Order(); a != b {
		return a < b
	}
	if k.Start != other.Start {
		return k.Start < other.Start
	}
	return k.End < other.End
}

// SortChronological orders slots by time key and then id, giving the
// allocation pass a reproducible iteration order.
func SortChronological(slots []models.ScheduleSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		ki, kj := KeyOf(slots[i]), KeyOf(slots[j])
		if ki != kj {
			return ki.Less(kj)
		}
		return slots[i].ID < slots[j].ID
	})
}

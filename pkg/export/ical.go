package export

import (
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// CalendarEntry is one weekly meeting.
type CalendarEntry struct {
	UID         string
	Summary     string
	Location    string
	Description string
	Weekday     time.Weekday
	StartTime   string
	EndTime     string
}

// CalendarOptions anchors the weekly recurrence.
type CalendarOptions struct {
	From     time.Time
	Weeks    int
	Location *time.Location
}

// CalendarRenderer produces iCalendar documents.
type CalendarRenderer struct{}

// NewCalendarRenderer constructs a calendar renderer.
func NewCalendarRenderer() *CalendarRenderer {
	return &CalendarRenderer{}
}

// Render emits one recurring VEVENT per entry, starting on the first matching
// weekday on or after opts.From.
func (r *CalendarRenderer) Render(entries []CalendarEntry, opts CalendarOptions) ([]byte, error) {
	if opts.Weeks <= 0 {
		return nil, errors.New("calendar weeks must be positive")
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	from := opts.From.In(loc)
	anchor := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//timetable-api//student schedule//EN")

	stamp := time.Now().UTC()
	for _, entry := range entries {
		start, err := at(anchor, entry.Weekday, entry.StartTime)
		if err != nil {
			return nil, fmt.Errorf("event %s start: %w", entry.UID, err)
		}
		end, err := at(anchor, entry.Weekday, entry.EndTime)
		if err != nil {
			return nil, fmt.Errorf("event %s end: %w", entry.UID, err)
		}
		event := cal.AddEvent(entry.UID)
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(entry.Summary)
		if entry.Location != "" {
			event.SetLocation(entry.Location)
		}
		if entry.Description != "" {
			event.SetDescription(entry.Description)
		}
		event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", opts.Weeks))
	}
	return []byte(cal.Serialize()), nil
}

func at(anchor time.Time, day time.Weekday, clock string) (time.Time, error) {
	hour, minute := 24, 0
	if clock != "24:00" {
		parsed, err := time.Parse("15:04", clock)
		if err != nil {
			return time.Time{}, err
		}
		hour, minute = parsed.Hour(), parsed.Minute()
	}
	offset := (int(day) - int(anchor.Weekday()) + 7) % 7
	date := anchor.AddDate(0, 0, offset)
	// time.Date rolls hour 24 over to midnight of the next day.
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, anchor.Location()), nil
}

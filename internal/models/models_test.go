package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday(" tue ")
	require.NoError(t, err)
	assert.Equal(t, Tuesday, day)

	day, err = ParseWeekday("SUNDAY")
	require.NoError(t, err)
	assert.Equal(t, 7, day.Order())

	_, err = ParseWeekday("someday")
	assert.Error(t, err)
}

func TestNormalizeClock(t *testing.T) {
	v, err := NormalizeClock("9:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05", v)

	_, err = NormalizeClock("25:00")
	assert.Error(t, err)
}

func TestParseClockAcceptsMidnightEnd(t *testing.T) {
	m, err := ParseClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, EndOfDay, m)
	assert.Equal(t, "24:00", FormatClock(m))

	_, err = ParseClock("24:30")
	assert.Error(t, err)

	start, end, err := Interval{StartTime: "22:00", EndTime: "24:00"}.Bounds()
	require.NoError(t, err)
	assert.Equal(t, 22*60, start)
	assert.Equal(t, EndOfDay, end)
}

func TestFacultyAvailabilityAllows(t *testing.T) {
	a := FacultyAvailability{Monday: {"09:00", "11:00"}}
	assert.True(t, a.Allows(Monday, "9:00"))
	assert.False(t, a.Allows(Monday, "10:00"))
	assert.True(t, a.Allows(Tuesday, "10:00"))
}

func TestNormalizeAssignment(t *testing.T) {
	marker := "Unassigned"
	blank := "  "
	room := "room-1"
	assert.Nil(t, NormalizeAssignment(&marker))
	assert.Nil(t, NormalizeAssignment(&blank))
	assert.Nil(t, NormalizeAssignment(nil))
	assert.Equal(t, "room-1", *NormalizeAssignment(&room))
}

func TestScheduleConfigValidate(t *testing.T) {
	cfg := ScheduleConfig{
		WorkingDays:         []Weekday{Monday},
		StartTime:           "09:00",
		EndTime:             "17:00",
		SlotDurationMinutes: 60,
		LunchBreak:          &Interval{StartTime: "12:00", EndTime: "13:00"},
		TimeSlots: []SlotTemplate{
			{CourseCode: "CS101", DayOfWeek: Monday, StartTime: "09:00", EndTime: "10:00"},
			{CourseID: "course-2", DayOfWeek: Monday, Period: 2},
		},
	}
	require.NoError(t, cfg.Validate())

	cfg.LunchBreak = &Interval{StartTime: "18:00", EndTime: "19:00"}
	assert.Error(t, cfg.Validate())

	cfg.LunchBreak = nil
	cfg.TimeSlots = append(cfg.TimeSlots, SlotTemplate{CourseID: "c", DayOfWeek: Monday, StartTime: "10:00", EndTime: "09:00"})
	assert.ErrorContains(t, cfg.Validate(), "time_slots[2]")
}

func TestScheduleConfigPeriodNeedsGrid(t *testing.T) {
	cfg := ScheduleConfig{TimeSlots: []SlotTemplate{{CourseID: "c", DayOfWeek: Monday, Period: 1}}}
	assert.ErrorContains(t, cfg.Validate(), "grid")
}

func TestScheduleConfigRoundTripThroughScanner(t *testing.T) {
	cfg := ScheduleConfig{WorkingDays: []Weekday{Friday}, TimeSlots: []SlotTemplate{{CourseID: "c", DayOfWeek: Friday, StartTime: "08:00", EndTime: "09:00"}}}
	raw, err := cfg.Value()
	require.NoError(t, err)

	var decoded ScheduleConfig
	require.NoError(t, decoded.Scan(raw))
	assert.Equal(t, cfg, decoded)
}

func TestStudentPreferencesScanDefaultsMap(t *testing.T) {
	var prefs StudentPreferences
	require.NoError(t, prefs.Scan([]byte(`{}`)))
	assert.NotNil(t, prefs.SelectedSlots)
}

func TestTimetableStatusTransitions(t *testing.T) {
	assert.True(t, TimetableStatusDraft.CanTransition(TimetableStatusPublished))
	assert.False(t, TimetableStatusPublished.CanTransition(TimetableStatusDraft))
}

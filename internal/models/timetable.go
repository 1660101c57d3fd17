package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// TimetableStatus tracks the lifecycle of a timetable.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "draft"
	TimetableStatusActive    TimetableStatus = "active"
	TimetableStatusPublished TimetableStatus = "published"
)

// CanTransition reports whether a timetable may move from s to next.
func (s TimetableStatus) CanTransition(next TimetableStatus) bool {
	switch s {
	case TimetableStatusDraft:
		return next == TimetableStatusActive || next == TimetableStatusPublished
	case TimetableStatusActive:
		return next == TimetableStatusDraft || next == TimetableStatusPublished
	case TimetableStatusPublished:
		return next == TimetableStatusActive
	}
	return false
}

// Timetable owns the schedule slots generated for one program and semester.
type Timetable struct {
	ID                string          `db:"id" json:"id"`
	Name              string          `db:"name" json:"name"`
	Program           string          `db:"program" json:"program"`
	Semester          int             `db:"semester" json:"semester"`
	Batch             string          `db:"batch" json:"batch"`
	AcademicYear      string          `db:"academic_year" json:"academic_year"`
	Schedule          ScheduleConfig  `db:"schedule" json:"schedule"`
	Conflicts         ConflictList    `db:"conflicts" json:"conflicts"`
	OptimizationScore float64         `db:"optimization_score" json:"optimization_score"`
	Status            TimetableStatus `db:"status" json:"status"`
	GeneratedBy       string          `db:"generated_by" json:"generated_by"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// SlotTemplate describes a course meeting before it is bound to a timetable.
// Either StartTime/EndTime or Period (1-based grid index) must be set.
type SlotTemplate struct {
	CourseID            string   `json:"course_id,omitempty"`
	CourseCode          string   `json:"course_code,omitempty"`
	FacultyID           *string  `json:"faculty_id,omitempty"`
	RoomID              *string  `json:"room_id,omitempty"`
	DayOfWeek           Weekday  `json:"day_of_week"`
	StartTime           string   `json:"start_time,omitempty"`
	EndTime             string   `json:"end_time,omitempty"`
	Period              int      `json:"period,omitempty"`
	Span                int      `json:"span,omitempty"`
	SlotType            SlotType `json:"slot_type,omitempty"`
	IsLabBlock          bool     `json:"is_lab_block,omitempty"`
	SectionIDs          []string `json:"section_ids,omitempty"`
	SpecialInstructions *string  `json:"special_instructions,omitempty"`
}

// UsesGrid reports whether the template is positioned by grid period.
func (t SlotTemplate) UsesGrid() bool {
	return t.StartTime == "" && t.EndTime == "" && t.Period > 0
}

// Validate checks the template in isolation.
func (t SlotTemplate) Validate() error {
	if t.CourseID == "" && t.CourseCode == "" {
		return errors.New("course_id or course_code is required")
	}
	if _, err := ParseWeekday(string(t.DayOfWeek)); err != nil {
		return err
	}
	if t.SlotType != "" && !t.SlotType.Valid() {
		return fmt.Errorf("unknown slot_type %q", t.SlotType)
	}
	if t.Span < 0 || t.Period < 0 {
		return errors.New("period and span must not be negative")
	}
	if t.UsesGrid() {
		return nil
	}
	if _, _, err := (Interval{StartTime: t.StartTime, EndTime: t.EndTime}).Bounds(); err != nil {
		return err
	}
	return nil
}

// ScheduleConfig is the typed schedule document stored on a timetable.
type ScheduleConfig struct {
	WorkingDays         []Weekday      `json:"working_days"`
	StartTime           string         `json:"start_time,omitempty"`
	EndTime             string         `json:"end_time,omitempty"`
	SlotDurationMinutes int            `json:"slot_duration_minutes,omitempty"`
	GraceTimeMinutes    int            `json:"grace_time_minutes,omitempty"`
	LunchBreak          *Interval      `json:"lunch_break,omitempty"`
	TimeSlots           []SlotTemplate `json:"time_slots"`
}

// HasGrid reports whether enough is configured to generate a time grid.
func (c ScheduleConfig) HasGrid() bool {
	return len(c.WorkingDays) > 0 && c.StartTime != "" && c.EndTime != "" && c.SlotDurationMinutes > 0
}

// Validate checks the whole document. It runs once when the config is written.
func (c ScheduleConfig) Validate() error {
	for _, day := range c.WorkingDays {
		if !day.Valid() {
			return fmt.Errorf("working_days: unknown day %q", day)
		}
	}
	if c.StartTime != "" || c.EndTime != "" {
		start, end, err := (Interval{StartTime: c.StartTime, EndTime: c.EndTime}).Bounds()
		if err != nil {
			return fmt.Errorf("day window: %w", err)
		}
		if c.LunchBreak != nil {
			lunchStart, lunchEnd, err := c.LunchBreak.Bounds()
			if err != nil {
				return fmt.Errorf("lunch_break: %w", err)
			}
			if lunchStart < start || lunchEnd > end {
				return errors.New("lunch_break must lie within the day window")
			}
		}
	}
	if c.SlotDurationMinutes < 0 || c.GraceTimeMinutes < 0 {
		return errors.New("slot_duration_minutes and grace_time_minutes must not be negative")
	}
	for i, tpl := range c.TimeSlots {
		if err := tpl.Validate(); err != nil {
			return fmt.Errorf("time_slots[%d]: %w", i, err)
		}
		if tpl.UsesGrid() && !c.HasGrid() {
			return fmt.Errorf("time_slots[%d]: period requires a grid configuration", i)
		}
	}
	return nil
}

// Normalize canonicalises day names and clock values in place.
func (c *ScheduleConfig) Normalize() {
	for i, day := range c.WorkingDays {
		if parsed, err := ParseWeekday(string(day)); err == nil {
			c.WorkingDays[i] = parsed
		}
	}
	if v, err := NormalizeClock(c.StartTime); err == nil {
		c.StartTime = v
	}
	if v, err := NormalizeClock(c.EndTime); err == nil {
		c.EndTime = v
	}
	if c.LunchBreak != nil {
		if v, err := NormalizeClock(c.LunchBreak.StartTime); err == nil {
			c.LunchBreak.StartTime = v
		}
		if v, err := NormalizeClock(c.LunchBreak.EndTime); err == nil {
			c.LunchBreak.EndTime = v
		}
	}
	for i := range c.TimeSlots {
		c.TimeSlots[i].Normalize()
	}
}

// Normalize canonicalises the template's day and clock values in place.
func (t *SlotTemplate) Normalize() {
	if day, err := ParseWeekday(string(t.DayOfWeek)); err == nil {
		t.DayOfWeek = day
	}
	if v, err := NormalizeClock(t.StartTime); err == nil {
		t.StartTime = v
	}
	if v, err := NormalizeClock(t.EndTime); err == nil {
		t.EndTime = v
	}
}

// Value implements driver.Valuer.
func (c ScheduleConfig) Value() (driver.Value, error) {
	if c.TimeSlots == nil {
		c.TimeSlots = []SlotTemplate{}
	}
	if c.WorkingDays == nil {
		c.WorkingDays = []Weekday{}
	}
	return jsonValue(c)
}

// Scan implements sql.Scanner.
func (c *ScheduleConfig) Scan(src interface{}) error {
	out := ScheduleConfig{}
	if err := scanJSON(src, &out); err != nil {
		return err
	}
	*c = out
	return nil
}

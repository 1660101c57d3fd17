package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// SlotType distinguishes lecture slots from laboratory slots.
type SlotType string

const (
	SlotTypeTheory SlotType = "theory"
	SlotTypeLab    SlotType = "lab"
)

// Valid reports whether t is a known slot type.
func (t SlotType) Valid() bool {
	return t == SlotTypeTheory || t == SlotTypeLab
}

// UnassignedMarker is accepted in payloads in place of a faculty or room id and
// is stored as NULL.
const UnassignedMarker = "unassigned"

// NormalizeAssignment maps empty strings and the unassigned marker to nil.
func NormalizeAssignment(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" || strings.EqualFold(trimmed, UnassignedMarker) {
		return nil
	}
	return &trimmed
}

// ScheduleSlot is one concrete course meeting owned by a timetable.
type ScheduleSlot struct {
	ID                  string         `db:"id" json:"id"`
	TimetableID         string         `db:"timetable_id" json:"timetable_id"`
	CourseID            string         `db:"course_id" json:"course_id"`
	FacultyID           *string        `db:"faculty_id" json:"faculty_id"`
	RoomID              *string        `db:"room_id" json:"room_id"`
	DayOfWeek           Weekday        `db:"day_of_week" json:"day_of_week"`
	StartTime           string         `db:"start_time" json:"start_time"`
	EndTime             string         `db:"end_time" json:"end_time"`
	SlotType            SlotType       `db:"slot_type" json:"slot_type"`
	IsLabBlock          bool           `db:"is_lab_block" json:"is_lab_block"`
	SectionIDs          pq.StringArray `db:"section_ids" json:"section_ids"`
	SpecialInstructions *string        `db:"special_instructions" json:"special_instructions,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// IsLab reports whether the slot needs a laboratory room.
func (s ScheduleSlot) IsLab() bool {
	return s.SlotType == SlotTypeLab || s.IsLabBlock
}

// NeedsRoom reports whether no room has been assigned yet.
func (s ScheduleSlot) NeedsRoom() bool {
	return s.RoomID == nil
}

// NeedsFaculty reports whether no faculty member has been assigned yet.
func (s ScheduleSlot) NeedsFaculty() bool {
	return s.FacultyID == nil
}

// SlotAssignment is the patch applied by the allocation engine.
type SlotAssignment struct {
	FacultyID *string `json:"faculty_id"`
	RoomID    *string `json:"room_id"`
}

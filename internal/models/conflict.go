package models

import "database/sql/driver"

// ConflictType names the rule a conflict violates.
type ConflictType string

const (
	ConflictRoomUnavailable     ConflictType = "room_unavailable"
	ConflictFacultyUnavailable  ConflictType = "faculty_unavailable"
	ConflictProgramSemOverlap   ConflictType = "program_sem_overlap"
	ConflictStudentTime         ConflictType = "student_time_conflict"
	ConflictRoomDoubleBooked    ConflictType = "room_double_booked"
	ConflictFacultyDoubleBooked ConflictType = "faculty_double_booked"
)

// Severity ranks how urgently a conflict needs attention.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Conflict is a transient report entry. It is persisted only as part of a
// timetable snapshot.
type Conflict struct {
	Type        ConflictType `json:"type"`
	Description string       `json:"description"`
	Severity    Severity     `json:"severity,omitempty"`
	SlotID      string       `json:"slot_id,omitempty"`
	SlotIDs     []string     `json:"slot_ids,omitempty"`
	CourseIDs   []string     `json:"course_ids,omitempty"`
	ResourceID  string       `json:"resource_id,omitempty"`
	DayOfWeek   Weekday      `json:"day_of_week,omitempty"`
	StartTime   string       `json:"start_time,omitempty"`
	EndTime     string       `json:"end_time,omitempty"`
	Suggestions []string     `json:"suggestions,omitempty"`
}

// ConflictList is the JSONB snapshot stored on a timetable.
type ConflictList []Conflict

// Value implements driver.Valuer.
func (l ConflictList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return jsonValue([]Conflict(l))
}

// Scan implements sql.Scanner.
func (l *ConflictList) Scan(src interface{}) error {
	out := ConflictList{}
	if err := scanJSON(src, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// HasSeverity reports whether any conflict carries severity s.
func (l ConflictList) HasSeverity(s Severity) bool {
	for _, c := range l {
		if c.Severity == s {
			return true
		}
	}
	return false
}

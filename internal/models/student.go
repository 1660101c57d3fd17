package models

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
)

// StudentPreferences holds registration choices stored as JSONB.
type StudentPreferences struct {
	// SelectedSlots maps a course id to the chosen schedule slot id.
	SelectedSlots map[string]string `json:"selected_slots"`
}

// Value implements driver.Valuer.
func (p StudentPreferences) Value() (driver.Value, error) {
	if p.SelectedSlots == nil {
		p.SelectedSlots = map[string]string{}
	}
	return jsonValue(p)
}

// Scan implements sql.Scanner.
func (p *StudentPreferences) Scan(src interface{}) error {
	out := StudentPreferences{}
	if err := scanJSON(src, &out); err != nil {
		return err
	}
	if out.SelectedSlots == nil {
		out.SelectedSlots = map[string]string{}
	}
	*p = out
	return nil
}

// Student is a registrant whose personal schedule is derived from enrolments.
type Student struct {
	ID              string             `db:"id" json:"id"`
	StudentCode     string             `db:"student_code" json:"student_code"`
	FirstName       string             `db:"first_name" json:"first_name"`
	LastName        string             `db:"last_name" json:"last_name"`
	Program         string             `db:"program" json:"program"`
	Semester        int                `db:"semester" json:"semester"`
	EnrolledCourses pq.StringArray     `db:"enrolled_courses" json:"enrolled_courses"`
	Preferences     StudentPreferences `db:"preferences" json:"preferences"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updated_at"`
}

// IsEnrolled reports whether courseID is among the student's enrolments.
func (s Student) IsEnrolled(courseID string) bool {
	for _, id := range s.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

// SelectedSlot returns the explicit slot choice for courseID, if any.
func (s Student) SelectedSlot(courseID string) (string, bool) {
	if s.Preferences.SelectedSlots == nil {
		return "", false
	}
	id, ok := s.Preferences.SelectedSlots[courseID]
	return id, ok && id != ""
}

// StudentRegistrationPatch is written back after register, select and unregister.
type StudentRegistrationPatch struct {
	EnrolledCourses []string
	Preferences     StudentPreferences
}

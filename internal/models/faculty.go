package models

import (
	"database/sql/driver"
	"strings"
	"time"

	"github.com/lib/pq"
)

// FacultyAvailability maps a day to the start times a faculty member accepts.
// Days without entries are unrestricted.
type FacultyAvailability map[Weekday][]string

// Value implements driver.Valuer.
func (a FacultyAvailability) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return jsonValue(map[Weekday][]string(a))
}

// Scan implements sql.Scanner.
func (a *FacultyAvailability) Scan(src interface{}) error {
	out := FacultyAvailability{}
	if err := scanJSON(src, &out); err != nil {
		return err
	}
	*a = out
	return nil
}

// Allows reports whether start is an eligible start time on day.
func (a FacultyAvailability) Allows(day Weekday, start string) bool {
	allowed := a[day]
	if len(allowed) == 0 {
		return true
	}
	want, err := NormalizeClock(start)
	if err != nil {
		return false
	}
	for _, candidate := range allowed {
		if normalized, err := NormalizeClock(candidate); err == nil && normalized == want {
			return true
		}
	}
	return false
}

// Faculty is a teaching staff member.
type Faculty struct {
	ID              string              `db:"id" json:"id"`
	FacultyCode     string              `db:"faculty_code" json:"faculty_code"`
	FirstName       string              `db:"first_name" json:"first_name"`
	LastName        string              `db:"last_name" json:"last_name"`
	Expertise       pq.StringArray      `db:"expertise" json:"expertise"`
	MaxWorkload     int                 `db:"max_workload" json:"max_workload"`
	Availability    FacultyAvailability `db:"availability" json:"availability"`
	AssignedCourses pq.StringArray      `db:"assigned_courses" json:"assigned_courses"`
	IsActive        bool                `db:"is_active" json:"is_active"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (f Faculty) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// Teaches reports whether the course is explicitly assigned to this member.
func (f Faculty) Teaches(courseID string) bool {
	for _, id := range f.AssignedCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

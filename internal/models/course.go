package models

import (
	"time"

	"github.com/lib/pq"
)

// Course is a catalogue entry referenced by schedule slots.
type Course struct {
	ID            string         `db:"id" json:"id"`
	CourseCode    string         `db:"course_code" json:"course_code"`
	CourseName    string         `db:"course_name" json:"course_name"`
	Program       string         `db:"program" json:"program"`
	Semester      int            `db:"semester" json:"semester"`
	Credits       int            `db:"credits" json:"credits"`
	CourseType    SlotType       `db:"course_type" json:"course_type"`
	Prerequisites pq.StringArray `db:"prerequisites" json:"prerequisites"`
	IsActive      bool           `db:"is_active" json:"is_active"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

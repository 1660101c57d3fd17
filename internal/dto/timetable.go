package dto

import "github.com/noah-isme/timetable-api/internal/models"

// CreateTimetableRequest opens a draft timetable.
type CreateTimetableRequest struct {
	Name         string                `json:"name" validate:"required,max=200"`
	Program      string                `json:"program" validate:"required"`
	Semester     int                   `json:"semester" validate:"required,min=1,max=12"`
	Batch        string                `json:"batch"`
	AcademicYear string                `json:"academicYear" validate:"required"`
	Schedule     models.ScheduleConfig `json:"schedule"`
}

// TimetableQuery filters timetables by cohort.
type TimetableQuery struct {
	Program  string `form:"program" validate:"required"`
	Semester int    `form:"semester" validate:"required,min=1"`
}

// UpdateTimetableStatusRequest moves a timetable through its lifecycle.
type UpdateTimetableStatusRequest struct {
	Status models.TimetableStatus `json:"status" validate:"required,oneof=draft active published"`
}

// ExportQuery selects an export format.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf xlsx"`
}

// ExportFile is a rendered document.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

package dto

import "github.com/noah-isme/timetable-api/internal/models"

// RegisterCourseRequest enrols a student in a course.
type RegisterCourseRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

// SelectSlotRequest pins a student to one slot of an enrolled course.
type SelectSlotRequest struct {
	CourseID string `json:"courseId" validate:"required"`
	SlotID   string `json:"slotId" validate:"required"`
}

// RegistrationResult is returned by register and select-slot.
type RegistrationResult struct {
	StudentID       string               `json:"studentId"`
	CourseID        string               `json:"courseId"`
	SelectedSlot    *models.ScheduleSlot `json:"selectedSlot,omitempty"`
	EnrolledCourses []string             `json:"enrolledCourses"`
	TotalCredits    int                  `json:"totalCredits"`
	Warnings        []string             `json:"warnings,omitempty"`
}

// CreditLimitDetails explains a credit limit rejection.
type CreditLimitDetails struct {
	CurrentCredits   int `json:"currentCredits"`
	AttemptedCredits int `json:"attemptedCredits"`
	MaxCredits       int `json:"maxCredits"`
}

// PrerequisiteDetails lists missing prerequisite course ids.
type PrerequisiteDetails struct {
	Missing []string `json:"missing"`
}

// SlotConflictDetails explains a time conflict rejection.
type SlotConflictDetails struct {
	Conflicts   []models.Conflict `json:"conflicts"`
	Suggestions []string          `json:"suggestions"`
}

// CourseSlotView annotates one slot for a student.
type CourseSlotView struct {
	models.ScheduleSlot
	Selected  bool     `json:"selected"`
	Conflicts []string `json:"conflicts"`
}

// StudentScheduleEntry is one resolved meeting of a student.
type StudentScheduleEntry struct {
	CourseID   string               `json:"courseId"`
	CourseCode string               `json:"courseCode"`
	CourseName string               `json:"courseName"`
	Slot       *models.ScheduleSlot `json:"slot"`
}

// StudentScheduleResponse is a student's derived schedule. Conflicts always
// cover the whole schedule, Entries only the requested page.
type StudentScheduleResponse struct {
	StudentID   string                 `json:"studentId"`
	TimetableID string                 `json:"timetableId,omitempty"`
	Entries     []StudentScheduleEntry `json:"entries"`
	Conflicts   []models.Conflict      `json:"conflicts"`
	Pagination  *models.Pagination     `json:"pagination,omitempty"`
}

// PageQuery selects one page of a schedule view.
type PageQuery struct {
	Page int `form:"page" validate:"omitempty,min=1"`
	Size int `form:"size" validate:"omitempty,min=1,max=100"`
}

// FacultyScheduleEntry is one meeting taught by a faculty member.
type FacultyScheduleEntry struct {
	TimetableID string               `json:"timetableId"`
	Program     string               `json:"program"`
	Semester    int                  `json:"semester"`
	CourseID    string               `json:"courseId"`
	CourseCode  string               `json:"courseCode"`
	CourseName  string               `json:"courseName"`
	Slot        *models.ScheduleSlot `json:"slot"`
}

// FacultyScheduleResponse is a faculty member's teaching schedule across the
// active timetable of every cohort they teach.
type FacultyScheduleResponse struct {
	FacultyID    string                 `json:"facultyId"`
	TimetableIDs []string               `json:"timetableIds"`
	Entries      []FacultyScheduleEntry `json:"entries"`
	Conflicts    []models.Conflict      `json:"conflicts"`
	Pagination   *models.Pagination     `json:"pagination,omitempty"`
}

// CalendarQuery anchors a calendar export.
type CalendarQuery struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
}

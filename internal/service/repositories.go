package service

import (
	"context"

	"github.com/noah-isme/timetable-api/internal/models"
)

type timetableRepository interface {
	Create(ctx context.Context, timetable *models.Timetable) error
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	ListByProgramSemester(ctx context.Context, program string, semester int) ([]models.Timetable, error)
	UpdateSchedule(ctx context.Context, id string, schedule models.ScheduleConfig) error
	UpdateStatus(ctx context.Context, id string, status models.TimetableStatus) error
	UpdateConflicts(ctx context.Context, id string, conflicts models.ConflictList, score float64) error
	Delete(ctx context.Context, id string) error
}

type scheduleSlotRepository interface {
	Create(ctx context.Context, slot *models.ScheduleSlot) error
	ListByTimetable(ctx context.Context, timetableID string) ([]models.ScheduleSlot, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]models.ScheduleSlot, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleSlot, error)
	UpdateAssignment(ctx context.Context, id string, patch models.SlotAssignment) error
	DeleteByTimetable(ctx context.Context, timetableID string) (int64, error)
}

type courseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Course, error)
	ListByProgramSemester(ctx context.Context, program string, semester int) ([]models.Course, error)
}

type facultyRepository interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
	List(ctx context.Context) ([]models.Faculty, error)
}

type roomRepository interface {
	List(ctx context.Context) ([]models.Room, error)
}

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListByProgramSemester(ctx context.Context, program string, semester int) ([]models.Student, error)
	EnrollmentCounts(ctx context.Context, courseIDs []string) (map[string]int, error)
	UpdateRegistration(ctx context.Context, id string, patch models.StudentRegistrationPatch) error
}

func courseIndex(courses []models.Course) map[string]models.Course {
	index := make(map[string]models.Course, len(courses))
	for _, c := range courses {
		index[c.ID] = c
	}
	return index
}

func distinctCourseIDs(slots []models.ScheduleSlot) []string {
	seen := make(map[string]struct{}, len(slots))
	ids := make([]string, 0, len(slots))
	for _, s := range slots {
		if _, ok := seen[s.CourseID]; ok {
			continue
		}
		seen[s.CourseID] = struct{}{}
		ids = append(ids, s.CourseID)
	}
	return ids
}

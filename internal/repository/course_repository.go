package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
)

const courseColumns = `id, course_code, course_name, program, semester, credits, course_type, prerequisites, is_active, created_at, updated_at`

// CourseRepository reads the course catalogue.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID loads a course. It returns sql.ErrNoRows when absent.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByCode loads a course by its catalogue code, ignoring case.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE UPPER(course_code) = UPPER($1)`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListByIDs returns the courses matching ids in course code order.
func (r *CourseRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ANY($1) ORDER BY course_code`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list courses by ids: %w", err)
	}
	return courses, nil
}

// ListByProgramSemester returns the active courses offered to a cohort.
func (r *CourseRepository) ListByProgramSemester(ctx context.Context, program string, semester int) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE program = $1 AND semester = $2 AND is_active = TRUE ORDER BY course_code`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, program, semester); err != nil {
		return nil, fmt.Errorf("list courses by program: %w", err)
	}
	return courses, nil
}

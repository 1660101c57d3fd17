package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
)

const studentColumns = `id, student_code, first_name, last_name, program, semester, enrolled_courses, preferences, created_at, updated_at`

// StudentRepository persists student registration state.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID loads a student. It returns sql.ErrNoRows when absent.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListByProgramSemester returns the students of a cohort ordered by code.
func (r *StudentRepository) ListByProgramSemester(ctx context.Context, program string, semester int) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE program = $1 AND semester = $2 ORDER BY student_code`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, program, semester); err != nil {
		return nil, fmt.Errorf("list students by program: %w", err)
	}
	return students, nil
}

// EnrollmentCounts returns the number of enrolled students per course id.
func (r *StudentRepository) EnrollmentCounts(ctx context.Context, courseIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}
	const query = `SELECT course_id, COUNT(*) AS enrolled
FROM students, UNNEST(enrolled_courses) AS course_id
WHERE course_id = ANY($1)
GROUP BY course_id`
	var rows []struct {
		CourseID string `db:"course_id"`
		Enrolled int    `db:"enrolled"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(courseIDs)); err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}
	for _, row := range rows {
		counts[row.CourseID] = row.Enrolled
	}
	return counts, nil
}

// UpdateRegistration writes enrolments and preferences in one statement.
func (r *StudentRepository) UpdateRegistration(ctx context.Context, id string, patch models.StudentRegistrationPatch) error {
	const query = `UPDATE students SET enrolled_courses = $1, preferences = $2, updated_at = $3 WHERE id = $4`
	enrolled := patch.EnrolledCourses
	if enrolled == nil {
		enrolled = []string{}
	}
	result, err := r.db.ExecContext(ctx, query, pq.StringArray(enrolled), patch.Preferences, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update student registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("student registration rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

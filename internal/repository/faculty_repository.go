package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// FacultyRepository reads teaching staff records.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

const facultyColumns = `id, faculty_code, first_name, last_name, expertise, max_workload, availability, assigned_courses, is_active, created_at, updated_at`

// FindByID loads one faculty member. It returns sql.ErrNoRows when absent.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	query := `SELECT ` + facultyColumns + ` FROM faculty WHERE id = $1`
	var member models.Faculty
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// List returns every faculty member ordered by faculty code. The order is the
// allocation tie-break order.
func (r *FacultyRepository) List(ctx context.Context) ([]models.Faculty, error) {
	query := `SELECT ` + facultyColumns + ` FROM faculty ORDER BY faculty_code`
	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, query); err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}
	return faculty, nil
}

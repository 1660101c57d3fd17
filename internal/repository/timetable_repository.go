package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const timetableColumns = `id, name, program, semester, batch, academic_year, schedule, conflicts, optimization_score, status, generated_by, created_at, updated_at`

// TimetableRepository persists timetables.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// Create inserts a timetable, filling id, status and timestamps when empty.
func (r *TimetableRepository) Create(ctx context.Context, timetable *models.Timetable) error {
	if timetable == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	if timetable.Status == "" {
		timetable.Status = models.TimetableStatusDraft
	}
	if timetable.Conflicts == nil {
		timetable.Conflicts = models.ConflictList{}
	}
	now := time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	timetable.UpdatedAt = now

	const query = `
INSERT INTO timetables (id, name, program, semester, batch, academic_year, schedule, conflicts, optimization_score, status, generated_by, created_at, updated_at)
VALUES (:id, :name, :program, :semester, :batch, :academic_year, :schedule, :conflicts, :optimization_score, :status, :generated_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// FindByID loads a timetable. It returns sql.ErrNoRows when absent.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	query := `SELECT ` + timetableColumns + ` FROM timetables WHERE id = $1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// ListByProgramSemester returns a cohort's timetables, most recently updated first.
func (r *TimetableRepository) ListByProgramSemester(ctx context.Context, program string, semester int) ([]models.Timetable, error) {
	query := `SELECT ` + timetableColumns + ` FROM timetables WHERE program = $1 AND semester = $2 ORDER BY updated_at DESC, id`
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, program, semester); err != nil {
		return nil, fmt.Errorf("list timetables by program: %w", err)
	}
	return timetables, nil
}

// UpdateSchedule replaces the stored schedule document.
func (r *TimetableRepository) UpdateSchedule(ctx context.Context, id string, schedule models.ScheduleConfig) error {
	const query = `UPDATE timetables SET schedule = $1, updated_at = $2 WHERE id = $3`
	return r.execOne(ctx, "update timetable schedule", query, schedule, time.Now().UTC(), id)
}

// UpdateStatus moves the timetable to status.
func (r *TimetableRepository) UpdateStatus(ctx context.Context, id string, status models.TimetableStatus) error {
	const query = `UPDATE timetables SET status = $1, updated_at = $2 WHERE id = $3`
	return r.execOne(ctx, "update timetable status", query, status, time.Now().UTC(), id)
}

// UpdateConflicts stores the latest conflict snapshot and score.
func (r *TimetableRepository) UpdateConflicts(ctx context.Context, id string, conflicts models.ConflictList, score float64) error {
	const query = `UPDATE timetables SET conflicts = $1, optimization_score = $2, updated_at = $3 WHERE id = $4`
	return r.execOne(ctx, "update timetable conflicts", query, conflicts, score, time.Now().UTC(), id)
}

// Delete removes a timetable; its slots cascade.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM timetables WHERE id = $1`
	return r.execOne(ctx, "delete timetable", query, id)
}

func (r *TimetableRepository) execOne(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestTimetableRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WithArgs(sqlmock.AnyArg(), "CS Sem 3", "CS", 3, "", "2025/2026", sqlmock.AnyArg(), sqlmock.AnyArg(), 0.0, "draft", "admin-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	tt := &models.Timetable{Name: "CS Sem 3", Program: "CS", Semester: 3, AcademicYear: "2025/2026", GeneratedBy: "admin-1"}
	require.NoError(t, repo.Create(context.Background(), tt))
	assert.NotEmpty(t, tt.ID)
	assert.Equal(t, models.TimetableStatusDraft, tt.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindByIDDecodesDocuments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "program", "semester", "batch", "academic_year", "schedule", "conflicts", "optimization_score", "status", "generated_by", "created_at", "updated_at"}).
		AddRow("tt-1", "CS", "CS", 3, "A", "2025", []byte(`{"working_days":["Monday"],"time_slots":[{"course_code":"CS101","day_of_week":"Monday","start_time":"09:00","end_time":"10:00"}]}`),
			[]byte(`[{"type":"room_unavailable","description":"x","severity":"high"}]`), 80.5, "published", "admin", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables WHERE id = $1")).WithArgs("tt-1").WillReturnRows(rows)

	tt, err := repo.FindByID(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Equal(t, []models.Weekday{models.Monday}, tt.Schedule.WorkingDays)
	require.Len(t, tt.Schedule.TimeSlots, 1)
	assert.Equal(t, "CS101", tt.Schedule.TimeSlots[0].CourseCode)
	require.Len(t, tt.Conflicts, 1)
	assert.Equal(t, models.ConflictRoomUnavailable, tt.Conflicts[0].Type)
	assert.Equal(t, models.TimetableStatusPublished, tt.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateStatusNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs("published", sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.TimetableStatusPublished)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateConflicts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET conflicts = $1, optimization_score = $2, updated_at = $3 WHERE id = $4")).
		WithArgs(sqlmock.AnyArg(), 95.0, sqlmock.AnyArg(), "tt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateConflicts(context.Background(), "tt-1", models.ConflictList{}, 95))
	assert.NoError(t, mock.ExpectationsWereMet())
}

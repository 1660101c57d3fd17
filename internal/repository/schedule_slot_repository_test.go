package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestScheduleSlotRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_slots")).
		WithArgs(sqlmock.AnyArg(), "tt-1", "course-1", nil, sqlmock.AnyArg(), "Monday", "09:00", "10:00", "theory", false, sqlmock.AnyArg(), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	room := "room-1"
	slot := &models.ScheduleSlot{TimetableID: "tt-1", CourseID: "course-1", RoomID: &room, DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"}
	require.NoError(t, repo.Create(context.Background(), slot))
	assert.NotEmpty(t, slot.ID)
	assert.Equal(t, models.SlotTypeTheory, slot.SlotType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryCreateMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_slots")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &models.ScheduleSlot{TimetableID: "tt-1", CourseID: "c", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, ErrDuplicateSlot)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryListByTimetable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "timetable_id", "course_id", "faculty_id", "room_id", "day_of_week", "start_time", "end_time", "slot_type", "is_lab_block", "section_ids", "special_instructions", "created_at", "updated_at"}).
		AddRow("s1", "tt-1", "c1", "f1", nil, "Monday", "09:00", "10:00", "theory", false, "{A,B}", nil, now, now).
		AddRow("s2", "tt-1", "c2", nil, "r1", "Tuesday", "09:00", "11:00", "lab", true, "{}", "bring goggles", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_slots WHERE timetable_id = $1 ORDER BY CASE day_of_week")).
		WithArgs("tt-1").
		WillReturnRows(rows)

	slots, err := repo.ListByTimetable(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "f1", *slots[0].FacultyID)
	assert.Nil(t, slots[0].RoomID)
	assert.Equal(t, []string{"A", "B"}, []string(slots[0].SectionIDs))
	assert.True(t, slots[1].IsLab())
	assert.Equal(t, "bring goggles", *slots[1].SpecialInstructions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryListByFaculty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "timetable_id", "course_id", "faculty_id", "room_id", "day_of_week", "start_time", "end_time", "slot_type", "is_lab_block", "section_ids", "special_instructions", "created_at", "updated_at"}).
		AddRow("s1", "tt-1", "c1", "f1", "r1", "Monday", "09:00", "10:00", "theory", false, "{}", nil, now, now).
		AddRow("s7", "tt-4", "c9", "f1", nil, "Monday", "09:00", "10:00", "theory", false, "{}", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_slots WHERE faculty_id = $1 ORDER BY CASE day_of_week")).
		WithArgs("f1").
		WillReturnRows(rows)

	slots, err := repo.ListByFaculty(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "tt-4", slots[1].TimetableID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryUpdateAssignment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	faculty, room := "f1", "r1"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedule_slots SET faculty_id = $1, room_id = $2, updated_at = $3 WHERE id = $4")).
		WithArgs("f1", "r1", sqlmock.AnyArg(), "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedule_slots SET faculty_id = $1")).
		WithArgs("f1", "r1", sqlmock.AnyArg(), "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateAssignment(context.Background(), "s1", models.SlotAssignment{FacultyID: &faculty, RoomID: &room}))
	err := repo.UpdateAssignment(context.Background(), "gone", models.SlotAssignment{FacultyID: &faculty, RoomID: &room})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryDeleteByTimetable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_slots WHERE timetable_id = $1")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := repo.DeleteByTimetable(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
)

const slotColumns = `id, timetable_id, course_id, faculty_id, room_id, day_of_week, start_time, end_time, slot_type, is_lab_block, section_ids, special_instructions, created_at, updated_at`

// slotOrder mirrors Weekday.Order so listings come back chronologically.
const slotOrder = `ORDER BY CASE day_of_week
  WHEN 'Monday' THEN 1 WHEN 'Tuesday' THEN 2 WHEN 'Wednesday' THEN 3 WHEN 'Thursday' THEN 4
  WHEN 'Friday' THEN 5 WHEN 'Saturday' THEN 6 WHEN 'Sunday' THEN 7 ELSE 8 END, start_time, end_time, id`

// ErrDuplicateSlot reports a room or faculty double booking rejected by the
// unique indexes on schedule_slots.
var ErrDuplicateSlot = errors.New("schedule slot duplicates an existing room or faculty booking")

// ScheduleSlotRepository persists schedule slots.
type ScheduleSlotRepository struct {
	db *sqlx.DB
}

// NewScheduleSlotRepository constructs repository.
func NewScheduleSlotRepository(db *sqlx.DB) *ScheduleSlotRepository {
	return &ScheduleSlotRepository{db: db}
}

// Create inserts one slot.
func (r *ScheduleSlotRepository) Create(ctx context.Context, slot *models.ScheduleSlot) error {
	if slot == nil {
		return fmt.Errorf("slot payload is nil")
	}
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.SlotType == "" {
		slot.SlotType = models.SlotTypeTheory
	}
	if slot.SectionIDs == nil {
		slot.SectionIDs = pq.StringArray{}
	}
	now := time.Now().UTC()
	slot.CreatedAt, slot.UpdatedAt = now, now

	const query = `
INSERT INTO schedule_slots (id, timetable_id, course_id, faculty_id, room_id, day_of_week, start_time, end_time, slot_type, is_lab_block, section_ids, special_instructions, created_at, updated_at)
VALUES (:id, :timetable_id, :course_id, :faculty_id, :room_id, :day_of_week, :start_time, :end_time, :slot_type, :is_lab_block, :section_ids, :special_instructions, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert schedule slot: %w", ErrDuplicateSlot)
		}
		return fmt.Errorf("insert schedule slot: %w", err)
	}
	return nil
}

// ListByTimetable returns a timetable's slots in chronological order.
func (r *ScheduleSlotRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.ScheduleSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM schedule_slots WHERE timetable_id = $1 ` + slotOrder
	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, timetableID); err != nil {
		return nil, fmt.Errorf("list schedule slots: %w", err)
	}
	return slots, nil
}

// ListByFaculty returns every slot taught by a faculty member, across
// timetables, in chronological order.
func (r *ScheduleSlotRepository) ListByFaculty(ctx context.Context, facultyID string) ([]models.ScheduleSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM schedule_slots WHERE faculty_id = $1 ` + slotOrder
	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, facultyID); err != nil {
		return nil, fmt.Errorf("list faculty slots: %w", err)
	}
	return slots, nil
}

// FindByID loads one slot. It returns sql.ErrNoRows when absent.
func (r *ScheduleSlotRepository) FindByID(ctx context.Context, id string) (*models.ScheduleSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM schedule_slots WHERE id = $1`
	var slot models.ScheduleSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// UpdateAssignment stores the room and faculty chosen for a slot.
func (r *ScheduleSlotRepository) UpdateAssignment(ctx context.Context, id string, patch models.SlotAssignment) error {
	const query = `UPDATE schedule_slots SET faculty_id = $1, room_id = $2, updated_at = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, patch.FacultyID, patch.RoomID, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update slot assignment: %w", ErrDuplicateSlot)
		}
		return fmt.Errorf("update slot assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("slot assignment rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update slot assignment %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// DeleteByTimetable removes every slot of a timetable and reports how many went.
func (r *ScheduleSlotRepository) DeleteByTimetable(ctx context.Context, timetableID string) (int64, error) {
	const query = `DELETE FROM schedule_slots WHERE timetable_id = $1`
	result, err := r.db.ExecContext(ctx, query, timetableID)
	if err != nil {
		return 0, fmt.Errorf("delete schedule slots: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("schedule slot rows affected: %w", err)
	}
	return affected, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

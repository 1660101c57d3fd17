package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/events"
)

type materializerFixture struct {
	svc         *MaterializerService
	timetables  *memTimetables
	slots       *memSlots
	invalidated *invalidationRecorder
	publisher   *recordingPublisher
}

func newMaterializerFixture(timetable models.Timetable) materializerFixture {
	f := materializerFixture{
		timetables:  newMemTimetables(timetable),
		slots:       newMemSlots(),
		invalidated: &invalidationRecorder{},
		publisher:   &recordingPublisher{},
	}
	courses := &memCourses{items: []models.Course{
		{ID: "c-alg", CourseCode: "CS101", CourseName: "Algorithms", CourseType: models.SlotTypeTheory, IsActive: true},
		{ID: "c-net", CourseCode: "CS201L", CourseName: "Networks Lab", CourseType: models.SlotTypeLab, IsActive: true},
	}}
	f.svc = NewMaterializerService(f.timetables, f.slots, courses, NewGridService(8, nil, nil, nil), f.invalidated, f.publisher, nil, nil, nil)
	return f
}

func draftTimetable() models.Timetable {
	return models.Timetable{
		ID:       "tt-1",
		Name:     "CS Sem 3",
		Program:  "CS",
		Semester: 3,
		Status:   models.TimetableStatusDraft,
		Schedule: models.ScheduleConfig{
			WorkingDays:         []models.Weekday{models.Monday, models.Tuesday},
			StartTime:           "09:00",
			EndTime:             "13:00",
			SlotDurationMinutes: 60,
		},
	}
}

func payloadClasses() []models.SlotTemplate {
	return []models.SlotTemplate{
		{CourseID: "c-alg", DayOfWeek: "monday", StartTime: "9:00", EndTime: "10:00"},
		{CourseCode: "CS201L", DayOfWeek: models.Tuesday, StartTime: "10:00", EndTime: "12:00", RoomID: strPtr("unassigned")},
	}
}

func TestMaterializeReplaceIsRepeatable(t *testing.T) {
	f := newMaterializerFixture(draftTimetable())
	req := dto.MaterializeSlotsRequest{Mode: dto.MaterializeFromPayload, Replace: true, Classes: payloadClasses()}

	first, err := f.svc.Materialize(context.Background(), "tt-1", "admin-1", req)
	require.NoError(t, err)
	second, err := f.svc.Materialize(context.Background(), "tt-1", "admin-1", req)
	require.NoError(t, err)

	assert.Equal(t, 2, first.Created)
	assert.Equal(t, first.Created, second.Created)
	assert.EqualValues(t, 2, second.Replaced)
	assert.Equal(t, 2, f.slots.count("tt-1"))
	assert.Equal(t, []string{"tt-1", "tt-1"}, f.invalidated.ids)
	assert.Equal(t, []string{events.TypeSlotsMaterialized, events.TypeSlotsMaterialized}, f.publisher.types())
}

func TestMaterializeAdditiveModeAppends(t *testing.T) {
	f := newMaterializerFixture(draftTimetable())
	req := dto.MaterializeSlotsRequest{Mode: dto.MaterializeFromPayload, Classes: payloadClasses()}

	_, err := f.svc.Materialize(context.Background(), "tt-1", "admin-1", req)
	require.NoError(t, err)
	_, err = f.svc.Materialize(context.Background(), "tt-1", "admin-1", req)
	require.NoError(t, err)

	assert.Equal(t, 4, f.slots.count("tt-1"))
}

func TestMaterializeNormalizesRows(t *testing.T) {
	f := newMaterializerFixture(draftTimetable())

	resp, err := f.svc.Materialize(context.Background(), "tt-1", "admin-1", dto.MaterializeSlotsRequest{
		Mode:    dto.MaterializeFromPayload,
		Classes: payloadClasses(),
	})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 2)

	theory := resp.Slots[0]
	assert.Equal(t, models.Monday, theory.DayOfWeek)
	assert.Equal(t, "09:00", theory.StartTime)
	assert.Equal(t, models.SlotTypeTheory, theory.SlotType)

	lab := resp.Slots[1]
	assert.Equal(t, "c-net", lab.CourseID)
	assert.Equal(t, models.SlotTypeLab, lab.SlotType)
	assert.Nil(t, lab.RoomID)
	assert.Nil(t, lab.FacultyID)
}

func TestMaterializeSkipsUnresolvableRows(t *testing.T) {
	f := newMaterializerFixture(draftTimetable())
	classes := append(payloadClasses(),
		models.SlotTemplate{CourseCode: "NOPE", DayOfWeek: models.Monday, StartTime: "11:00", EndTime: "12:00"},
		models.SlotTemplate{CourseID: "c-alg", DayOfWeek: "Funday", StartTime: "11:00", EndTime: "12:00"},
	)

	resp, err := f.svc.Materialize(context.Background(), "tt-1", "admin-1", dto.MaterializeSlotsRequest{Mode: dto.MaterializeFromPayload, Classes: classes})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Created)
	require.Len(t, resp.Skipped, 2)
	assert.Equal(t, 2, resp.Skipped[0].Index)
	assert.Contains(t, resp.Skipped[0].Reason, "course code NOPE not found")
	assert.Equal(t, 3, resp.Skipped[1].Index)
}

func TestMaterializeSkipsDoubleBookedRoom(t *testing.T) {
	f := newMaterializerFixture(draftTimetable())
	classes := []models.SlotTemplate{
		{CourseID: "c-alg", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00", RoomID: strPtr("r-1")},
		{CourseID: "c-net", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00", RoomID: strPtr("r-1")},
	}

	resp, err := f.svc.Materialize(context.Background(), "tt-1", "admin-1", dto.MaterializeSlotsRequest{Mode: dto.MaterializeFromPayload, Classes: classes})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Created)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, 1, resp.Skipped[0].Index)
}

func TestMaterializeFromMappingsResolvesGridPeriods(t *testing.T) {
	timetable := draftTimetable()
	timetable.Schedule.TimeSlots = []models.SlotTemplate{
		{CourseID: "c-alg", DayOfWeek: models.Monday, Period: 2},
		{CourseID: "c-net", DayOfWeek: models.Tuesday, Period: 1, Span: 2},
	}
	f := newMaterializerFixture(timetable)

	resp, err := f.svc.Materialize(context.Background(), "tt-1", "admin-1", dto.MaterializeSlotsRequest{Mode: dto.MaterializeFromMappings})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 2)

	assert.Equal(t, "10:00", resp.Slots[0].StartTime)
	assert.Equal(t, "11:00", resp.Slots[0].EndTime)
	assert.Equal(t, "09:00", resp.Slots[1].StartTime)
	assert.Equal(t, "11:00", resp.Slots[1].EndTime)
	assert.True(t, resp.Slots[1].IsLabBlock)
}

func TestMaterializeFromMappingsWithoutMappings(t *testing.T) {
	f := newMaterializerFixture(draftTimetable())

	_, err := f.svc.Materialize(context.Background(), "tt-1", "admin-1", dto.MaterializeSlotsRequest{Mode: dto.MaterializeFromMappings})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestMaterializeRejectsPublishedTimetable(t *testing.T) {
	timetable := draftTimetable()
	timetable.Status = models.TimetableStatusPublished
	f := newMaterializerFixture(timetable)

	_, err := f.svc.Materialize(context.Background(), "tt-1", "admin-1", dto.MaterializeSlotsRequest{Mode: dto.MaterializeFromPayload, Classes: payloadClasses()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Zero(t, f.slots.count("tt-1"))
}

func TestMaterializeValidatesRequest(t *testing.T) {
	f := newMaterializerFixture(draftTimetable())

	_, err := f.svc.Materialize(context.Background(), "tt-1", "admin-1", dto.MaterializeSlotsRequest{Mode: "sideways"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.Materialize(context.Background(), "missing", "admin-1", dto.MaterializeSlotsRequest{Mode: dto.MaterializeFromPayload, Classes: payloadClasses()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/pkg/config"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/events"
)

type allocationFixture struct {
	svc         *AllocationService
	timetables  *memTimetables
	slots       *memSlots
	rooms       *memRooms
	faculty     *memFaculty
	students    *memStudents
	invalidated *invalidationRecorder
	publisher   *recordingPublisher
}

func allocationCourses() *memCourses {
	return &memCourses{items: []models.Course{
		{ID: "c-alg", CourseCode: "CS101", CourseName: "Algorithms", Program: "CS", Semester: 3, CourseType: models.SlotTypeTheory, IsActive: true},
		{ID: "c-bio", CourseCode: "BIO110", CourseName: "Biology", Program: "CS", Semester: 3, CourseType: models.SlotTypeTheory, IsActive: true},
		{ID: "c-net", CourseCode: "CS201L", CourseName: "Networks Lab", Program: "CS", Semester: 3, CourseType: models.SlotTypeLab, IsActive: true},
	}}
}

func newAllocationFixture(timetable models.Timetable, slots ...models.ScheduleSlot) allocationFixture {
	f := allocationFixture{
		timetables: newMemTimetables(timetable),
		slots:      newMemSlots(slots...),
		rooms: &memRooms{items: []models.Room{
			{ID: "r-big", RoomNumber: "A-100", RoomType: "lecture", Capacity: 100, IsAvailable: true},
			{ID: "r-small", RoomNumber: "A-101", RoomType: "lecture", Capacity: 30, IsAvailable: true},
			{ID: "r-lab", RoomNumber: "L-1", RoomType: "computer lab", Capacity: 40, IsAvailable: true},
			{ID: "r-closed", RoomNumber: "A-102", RoomType: "lecture", Capacity: 28, IsAvailable: false},
		}},
		faculty: &memFaculty{items: []models.Faculty{
			{ID: "f-1", FirstName: "Ada", Expertise: []string{"algorithms"}, IsActive: true},
			{ID: "f-2", FirstName: "Rosalind", AssignedCourses: []string{"c-bio"}, IsActive: true},
		}},
		students:    newMemStudents(),
		invalidated: &invalidationRecorder{},
		publisher:   &recordingPublisher{},
	}
	f.students.counts = map[string]int{"c-alg": 25, "c-bio": 50, "c-net": 20}

	courses := allocationCourses()
	materializer := NewMaterializerService(f.timetables, f.slots, courses, NewGridService(8, nil, nil, nil), f.invalidated, f.publisher, nil, nil, nil)
	f.svc = NewAllocationService(f.timetables, f.slots, courses, f.faculty, f.rooms, f.students, materializer, f.invalidated, f.publisher, nil, nil, nil,
		AllocationConfig{CapacityBuffer: 0.10, Order: config.AllocationOrderChronological})
	return f
}

func pendingSlot(id, courseID string, day models.Weekday, start, end string, kind models.SlotType) models.ScheduleSlot {
	return models.ScheduleSlot{ID: id, TimetableID: "tt-1", CourseID: courseID, DayOfWeek: day, StartTime: start, EndTime: end, SlotType: kind}
}

func TestAutoAllocateAssignsClosestFitAndTiers(t *testing.T) {
	f := newAllocationFixture(draftTimetable(),
		pendingSlot("slot-3", "c-net", models.Tuesday, "10:00", "12:00", models.SlotTypeLab),
		pendingSlot("slot-2", "c-bio", models.Monday, "09:00", "10:00", models.SlotTypeTheory),
		pendingSlot("slot-1", "c-alg", models.Monday, "09:00", "10:00", models.SlotTypeTheory),
	)

	resp, err := f.svc.AutoAllocate(context.Background(), "tt-1", "admin-1", dto.AutoAllocateRequest{})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.UpdatedCount)
	assert.Equal(t, 3, resp.RoomsAssigned)
	assert.Equal(t, 3, resp.FacultyAssigned)

	got := map[string]models.ScheduleSlot{}
	for _, s := range f.slots.items {
		got[s.ID] = s
	}
	assert.Equal(t, "r-small", *got["slot-1"].RoomID)
	assert.Equal(t, "f-1", *got["slot-1"].FacultyID)
	assert.Equal(t, "r-big", *got["slot-2"].RoomID)
	assert.Equal(t, "f-2", *got["slot-2"].FacultyID)
	assert.Equal(t, "r-lab", *got["slot-3"].RoomID)
	assert.Equal(t, "f-1", *got["slot-3"].FacultyID)

	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, models.ConflictProgramSemOverlap, resp.Conflicts[0].Type)
	assert.Equal(t, 95.0, resp.OptimizationScore)

	stored := f.timetables.items["tt-1"]
	assert.Equal(t, 95.0, stored.OptimizationScore)
	assert.Len(t, stored.Conflicts, 1)
	assert.Equal(t, []string{"tt-1"}, f.invalidated.ids)
	assert.Equal(t, []string{events.TypeTimetableAllocated}, f.publisher.types())
}

func TestAutoAllocateNeverDoubleBooks(t *testing.T) {
	f := newAllocationFixture(draftTimetable(),
		pendingSlot("slot-1", "c-alg", models.Monday, "09:00", "10:00", models.SlotTypeTheory),
		pendingSlot("slot-2", "c-alg", models.Monday, "09:00", "10:00", models.SlotTypeTheory),
		pendingSlot("slot-3", "c-alg", models.Monday, "09:00", "10:00", models.SlotTypeTheory),
	)

	resp, err := f.svc.AutoAllocate(context.Background(), "tt-1", "admin-1", dto.AutoAllocateRequest{})
	require.NoError(t, err)

	rooms := map[string]int{}
	faculty := map[string]int{}
	for _, s := range f.slots.items {
		if s.RoomID != nil {
			rooms[*s.RoomID]++
		}
		if s.FacultyID != nil {
			faculty[*s.FacultyID]++
		}
	}
	for id, n := range rooms {
		assert.Equal(t, 1, n, "room %s", id)
	}
	for id, n := range faculty {
		assert.Equal(t, 1, n, "faculty %s", id)
	}

	var roomMisses, facultyMisses int
	for _, c := range resp.Conflicts {
		switch c.Type {
		case models.ConflictRoomUnavailable:
			roomMisses++
			assert.Equal(t, "slot-3", c.SlotID)
			assert.Equal(t, "09:00", c.StartTime)
		case models.ConflictFacultyUnavailable:
			facultyMisses++
		}
	}
	assert.Equal(t, 1, roomMisses)
	assert.Equal(t, 1, facultyMisses)
}

func TestAutoAllocateKeepsExistingAssignments(t *testing.T) {
	seeded := pendingSlot("slot-1", "c-alg", models.Monday, "09:00", "10:00", models.SlotTypeTheory)
	seeded.RoomID, seeded.FacultyID = strPtr("r-small"), strPtr("f-1")
	f := newAllocationFixture(draftTimetable(),
		seeded,
		pendingSlot("slot-2", "c-alg", models.Monday, "09:00", "10:00", models.SlotTypeTheory),
	)

	resp, err := f.svc.AutoAllocate(context.Background(), "tt-1", "admin-1", dto.AutoAllocateRequest{Order: config.AllocationOrderStored})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.UpdatedCount)
	assert.Equal(t, "r-big", *f.slots.items[1].RoomID)
	assert.Equal(t, "f-2", *f.slots.items[1].FacultyID)
}

func TestAutoAllocateReportsRejectedWrites(t *testing.T) {
	f := newAllocationFixture(draftTimetable(),
		pendingSlot("slot-1", "c-alg", models.Monday, "09:00", "10:00", models.SlotTypeTheory),
	)
	f.slots.updateErr["slot-1"] = repository.ErrDuplicateSlot

	resp, err := f.svc.AutoAllocate(context.Background(), "tt-1", "admin-1", dto.AutoAllocateRequest{})
	require.NoError(t, err)

	assert.Zero(t, resp.UpdatedCount)
	require.Len(t, resp.Conflicts, 2)
	byType := map[models.ConflictType]string{}
	for _, c := range resp.Conflicts {
		byType[c.Type] = c.ResourceID
	}
	assert.Equal(t, map[models.ConflictType]string{
		models.ConflictRoomDoubleBooked:    "r-small",
		models.ConflictFacultyDoubleBooked: "f-1",
	}, byType)
	assert.Equal(t, 0.0, resp.OptimizationScore)
}

func TestAutoAllocateRejectedFacultyWriteIsFacultyConflict(t *testing.T) {
	slot := pendingSlot("slot-1", "c-alg", models.Monday, "09:00", "10:00", models.SlotTypeTheory)
	slot.RoomID = strPtr("r-big")
	f := newAllocationFixture(draftTimetable(), slot)
	f.slots.updateErr["slot-1"] = repository.ErrDuplicateSlot

	resp, err := f.svc.AutoAllocate(context.Background(), "tt-1", "admin-1", dto.AutoAllocateRequest{})
	require.NoError(t, err)

	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, models.ConflictFacultyDoubleBooked, resp.Conflicts[0].Type)
	assert.Equal(t, "f-1", resp.Conflicts[0].ResourceID)
	assert.Equal(t, []string{"slot-1"}, resp.Conflicts[0].SlotIDs)
}

func TestAutoAllocateMaterializesStoredMappings(t *testing.T) {
	timetable := draftTimetable()
	timetable.Schedule.TimeSlots = []models.SlotTemplate{
		{CourseID: "c-alg", DayOfWeek: models.Monday, Period: 1},
		{CourseCode: "BIO110", DayOfWeek: models.Tuesday, StartTime: "11:00", EndTime: "12:00"},
	}
	f := newAllocationFixture(timetable)

	resp, err := f.svc.AutoAllocate(context.Background(), "tt-1", "admin-1", dto.AutoAllocateRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Materialized)
	assert.Equal(t, 2, resp.TotalSlots)
	assert.Equal(t, 2, resp.UpdatedCount)
	assert.Equal(t, 100.0, resp.OptimizationScore)
	assert.Equal(t, []string{events.TypeSlotsMaterialized, events.TypeTimetableAllocated}, f.publisher.types())
}

func TestAutoAllocateWithoutSlotsOrMappings(t *testing.T) {
	f := newAllocationFixture(draftTimetable())

	_, err := f.svc.AutoAllocate(context.Background(), "tt-1", "admin-1", dto.AutoAllocateRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestAutoAllocateRejectsUnknownOrder(t *testing.T) {
	f := newAllocationFixture(draftTimetable())

	_, err := f.svc.AutoAllocate(context.Background(), "tt-1", "admin-1", dto.AutoAllocateRequest{Order: "random"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

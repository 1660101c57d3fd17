package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	"github.com/noah-isme/timetable-api/pkg/config"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/events"
)

type slotMaterializer interface {
	Materialize(ctx context.Context, timetableID, actorID string, req dto.MaterializeSlotsRequest) (*dto.MaterializeSlotsResponse, error)
}

// AllocationConfig tunes the allocation pass.
type AllocationConfig struct {
	CapacityBuffer float64
	Order          string
}

// AllocationService fills missing rooms and faculty on a timetable's slots.
//
// Occupancy lives only for the duration of one call. Two concurrent runs on
// the same timetable are not coordinated; the unique indexes on
// schedule_slots reject the losing write, which is reported as a conflict.
type AllocationService struct {
	timetables   timetableRepository
	slots        scheduleSlotRepository
	courses      courseRepository
	faculty      facultyRepository
	rooms        roomRepository
	students     studentRepository
	materializer slotMaterializer
	conflicts    conflictInvalidator
	publisher    events.Publisher
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          AllocationConfig
}

// NewAllocationService constructs the service.
func NewAllocationService(
	timetables timetableRepository,
	slots scheduleSlotRepository,
	courses courseRepository,
	faculty facultyRepository,
	rooms roomRepository,
	students studentRepository,
	materializer slotMaterializer,
	conflicts conflictInvalidator,
	publisher events.Publisher,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg AllocationConfig,
) *AllocationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if cfg.Order == "" {
		cfg.Order = config.AllocationOrderChronological
	}
	return &AllocationService{
		timetables:   timetables,
		slots:        slots,
		courses:      courses,
		faculty:      faculty,
		rooms:        rooms,
		students:     students,
		materializer: materializer,
		conflicts:    conflicts,
		publisher:    publisher,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
	}
}

// AutoAllocate assigns rooms and faculty to every slot missing them, then
// stores the conflict snapshot and score on the timetable.
func (s *AllocationService) AutoAllocate(ctx context.Context, timetableID, actorID string, req dto.AutoAllocateRequest) (*dto.AutoAllocateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid allocation payload")
	}
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		return nil, lookupError(err, "timetable")
	}
	if timetable.Status == models.TimetableStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "published timetables are read-only")
	}

	resp := &dto.AutoAllocateResponse{Conflicts: []models.Conflict{}}
	slots, err := s.loadSlots(ctx, timetable, actorID, resp)
	if err != nil {
		return nil, err
	}

	order := req.Order
	if order == "" {
		order = s.cfg.Order
	}
	if order == config.AllocationOrderChronological {
		scheduler.SortChronological(slots)
	}

	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load rooms")
	}
	faculty, err := s.faculty.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load faculty")
	}
	courseIDs := distinctCourseIDs(slots)
	courseList, err := s.courses.ListByIDs(ctx, courseIDs)
	if err != nil {
		return nil, internalError(err, "failed to load courses")
	}
	courses := courseIndex(courseList)
	enrolment, err := s.students.EnrollmentCounts(ctx, courseIDs)
	if err != nil {
		return nil, internalError(err, "failed to count enrolments")
	}

	allocator := scheduler.NewAllocator(rooms, faculty, s.cfg.CapacityBuffer)
	allocator.Seed(slots)

	var conflicts []models.Conflict
	for i := range slots {
		slot := &slots[i]
		if !slot.NeedsRoom() && !slot.NeedsFaculty() {
			continue
		}
		course, ok := courses[slot.CourseID]
		if !ok {
			course = models.Course{ID: slot.CourseID}
		}
		outcome := allocator.Allocate(*slot, course, enrolment[slot.CourseID])
		s.recordOutcome(ctx, *slot, outcome)
		conflicts = append(conflicts, outcome.Conflicts...)
		if !outcome.Changed() {
			continue
		}

		err := s.slots.UpdateAssignment(ctx, slot.ID, outcome.Assignment)
		if errors.Is(err, repository.ErrDuplicateSlot) {
			allocator.Release(*slot, outcome)
			conflicts = append(conflicts, rejectedWriteConflicts(*slot, outcome)...)
			continue
		}
		if err != nil {
			return nil, internalError(err, "failed to store slot assignment")
		}
		slot.FacultyID, slot.RoomID = outcome.Assignment.FacultyID, outcome.Assignment.RoomID
		resp.UpdatedCount++
		if outcome.RoomAssigned {
			resp.RoomsAssigned++
		}
		if outcome.FacultyAssigned {
			resp.FacultyAssigned++
		}
	}

	// Overlaps and double bookings are reported, never resolved here.
	entries := make([]scheduler.Entry, 0, len(slots))
	assigned := 0
	for _, slot := range slots {
		var course *models.Course
		if c, ok := courses[slot.CourseID]; ok {
			course = &c
		}
		entries = append(entries, scheduler.EntryFromSlot(slot, course))
		if !slot.NeedsRoom() && !slot.NeedsFaculty() {
			assigned++
		}
	}
	conflicts = append(conflicts, scheduler.Detect(entries, scheduler.LevelProgram)...)
	scheduler.SortConflicts(conflicts)
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}

	resp.TotalSlots = len(slots)
	resp.Conflicts = conflicts
	resp.OptimizationScore = scheduler.Score(len(slots), assigned, len(conflicts))
	if err := s.timetables.UpdateConflicts(ctx, timetableID, models.ConflictList(conflicts), resp.OptimizationScore); err != nil {
		return nil, lookupError(err, "timetable")
	}

	s.metrics.RecordConflicts(conflicts)
	if s.conflicts != nil {
		s.conflicts.Invalidate(ctx, timetableID)
	}
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:        events.TypeTimetableAllocated,
		TimetableID: timetableID,
		ActorID:     actorID,
		Payload: map[string]interface{}{
			"updated":   resp.UpdatedCount,
			"conflicts": len(conflicts),
			"score":     resp.OptimizationScore,
		},
	})
	withRequest(ctx, s.logger).Info("auto allocation finished",
		zap.String("timetable_id", timetableID),
		zap.String("order", order),
		zap.Int("slots", resp.TotalSlots),
		zap.Int("updated", resp.UpdatedCount),
		zap.Int("conflicts", len(conflicts)),
		zap.Float64("score", resp.OptimizationScore))
	return resp, nil
}

// loadSlots returns the timetable's slots, materializing the stored mappings
// first when there are none.
func (s *AllocationService) loadSlots(ctx context.Context, timetable *models.Timetable, actorID string, resp *dto.AutoAllocateResponse) ([]models.ScheduleSlot, error) {
	slots, err := s.slots.ListByTimetable(ctx, timetable.ID)
	if err != nil {
		return nil, internalError(err, "failed to list schedule slots")
	}
	if len(slots) > 0 {
		return slots, nil
	}
	if len(timetable.Schedule.TimeSlots) == 0 || s.materializer == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "timetable has no slots and no stored mappings to materialize")
	}
	result, err := s.materializer.Materialize(ctx, timetable.ID, actorID, dto.MaterializeSlotsRequest{Mode: dto.MaterializeFromMappings})
	if err != nil {
		return nil, err
	}
	resp.Materialized = result.Created
	if len(result.Slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no slots could be materialized from the stored mappings")
	}
	return append([]models.ScheduleSlot(nil), result.Slots...), nil
}

func (s *AllocationService) recordOutcome(ctx context.Context, slot models.ScheduleSlot, outcome scheduler.Outcome) {
	if slot.NeedsRoom() {
		s.metrics.RecordAllocation("room", assignedLabel(outcome.RoomAssigned))
	}
	if slot.NeedsFaculty() {
		s.metrics.RecordAllocation("faculty", assignedLabel(outcome.FacultyAssigned))
	}
	for _, c := range outcome.Conflicts {
		withRequest(ctx, s.logger).Warn("allocation left slot unassigned",
			zap.String("slot_id", slot.ID),
			zap.String("type", string(c.Type)),
			zap.String("description", c.Description))
	}
}

// rejectedWriteConflicts reports one double booking per resource the
// rejected write tried to claim.
func rejectedWriteConflicts(slot models.ScheduleSlot, outcome scheduler.Outcome) []models.Conflict {
	var out []models.Conflict
	add := func(kind models.ConflictType, resource, label string) {
		out = append(out, models.Conflict{
			Type:        kind,
			Severity:    models.SeverityHigh,
			Description: fmt.Sprintf("%s %s for slot %s was taken by a concurrent booking", label, resource, slot.ID),
			SlotID:      slot.ID,
			SlotIDs:     []string{slot.ID},
			CourseIDs:   []string{slot.CourseID},
			ResourceID:  resource,
			DayOfWeek:   slot.DayOfWeek,
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
			Suggestions: []string{"re-run auto allocation"},
		})
	}
	if outcome.RoomAssigned && outcome.Assignment.RoomID != nil {
		add(models.ConflictRoomDoubleBooked, *outcome.Assignment.RoomID, "room")
	}
	if outcome.FacultyAssigned && outcome.Assignment.FacultyID != nil {
		add(models.ConflictFacultyDoubleBooked, *outcome.Assignment.FacultyID, "faculty member")
	}
	return out
}

func assignedLabel(ok bool) string {
	if ok {
		return "assigned"
	}
	return "unavailable"
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/events"
)

type conflictInvalidator interface {
	Invalidate(ctx context.Context, timetableID string)
}

// MaterializerService turns slot templates into persisted schedule slots.
type MaterializerService struct {
	timetables timetableRepository
	slots      scheduleSlotRepository
	courses    courseRepository
	grids      gridGenerator
	conflicts  conflictInvalidator
	publisher  events.Publisher
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewMaterializerService constructs the service.
func NewMaterializerService(
	timetables timetableRepository,
	slots scheduleSlotRepository,
	courses courseRepository,
	grids gridGenerator,
	conflicts conflictInvalidator,
	publisher events.Publisher,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *MaterializerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &MaterializerService{
		timetables: timetables,
		slots:      slots,
		courses:    courses,
		grids:      grids,
		conflicts:  conflicts,
		publisher:  publisher,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// Materialize creates one slot per template. Rows that cannot be resolved are
// skipped and reported; storage failures abort the batch. With Replace the
// timetable's existing slots are removed first, which makes the call
// repeatable. Without it every call appends.
func (s *MaterializerService) Materialize(ctx context.Context, timetableID, actorID string, req dto.MaterializeSlotsRequest) (*dto.MaterializeSlotsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid materialization payload")
	}
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		return nil, lookupError(err, "timetable")
	}
	if timetable.Status == models.TimetableStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "published timetables are read-only")
	}

	templates := req.Classes
	if req.Mode == dto.MaterializeFromMappings {
		templates = timetable.Schedule.TimeSlots
		if len(templates) == 0 {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "timetable has no stored slot mappings")
		}
	}

	resp := &dto.MaterializeSlotsResponse{Slots: []models.ScheduleSlot{}, Skipped: []dto.SkippedSlot{}}
	if req.Replace {
		removed, err := s.slots.DeleteByTimetable(ctx, timetableID)
		if err != nil {
			return nil, internalError(err, "failed to clear schedule slots")
		}
		resp.Replaced = removed
	}

	run := &materializeRun{svc: s, timetable: timetable, courses: map[string]*models.Course{}}
	for i, tpl := range templates {
		slot, reason, err := run.build(ctx, tpl)
		if err != nil {
			s.afterWrite(ctx, timetableID, actorID, resp)
			return nil, err
		}
		if reason == "" {
			err = s.slots.Create(ctx, slot)
			if errors.Is(err, repository.ErrDuplicateSlot) {
				reason = "room or faculty already booked at this time"
			} else if err != nil {
				s.afterWrite(ctx, timetableID, actorID, resp)
				return nil, internalError(err, "failed to create schedule slot")
			}
		}
		if reason != "" {
			withRequest(ctx, s.logger).Warn("materialization row skipped", zap.String("timetable_id", timetableID), zap.Int("index", i), zap.String("reason", reason))
			resp.Skipped = append(resp.Skipped, dto.SkippedSlot{Index: i, Reason: reason})
			continue
		}
		resp.Slots = append(resp.Slots, *slot)
	}
	resp.Created = len(resp.Slots)

	s.afterWrite(ctx, timetableID, actorID, resp)
	withRequest(ctx, s.logger).Info("slots materialized",
		zap.String("timetable_id", timetableID),
		zap.String("mode", req.Mode),
		zap.Bool("replace", req.Replace),
		zap.Int("created", resp.Created),
		zap.Int("skipped", len(resp.Skipped)))
	return resp, nil
}

func (s *MaterializerService) afterWrite(ctx context.Context, timetableID, actorID string, resp *dto.MaterializeSlotsResponse) {
	created := len(resp.Slots)
	if created == 0 && resp.Replaced == 0 {
		return
	}
	s.metrics.AddMaterialized(created)
	if s.conflicts != nil {
		s.conflicts.Invalidate(ctx, timetableID)
	}
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:        events.TypeSlotsMaterialized,
		TimetableID: timetableID,
		ActorID:     actorID,
		Payload:     map[string]interface{}{"created": created, "replaced": resp.Replaced, "skipped": len(resp.Skipped)},
	})
}

// materializeRun caches course lookups and the generated grid for one call.
type materializeRun struct {
	svc       *MaterializerService
	timetable *models.Timetable
	courses   map[string]*models.Course
	grid      []models.DayGrid
	gridErr   error
	gridReady bool
}

// build returns the slot for tpl, or a non-empty skip reason.
func (r *materializeRun) build(ctx context.Context, tpl models.SlotTemplate) (*models.ScheduleSlot, string, error) {
	tpl.Normalize()
	if err := tpl.Validate(); err != nil {
		return nil, err.Error(), nil
	}
	course, reason, err := r.course(ctx, tpl)
	if err != nil || reason != "" {
		return nil, reason, err
	}

	start, end := tpl.StartTime, tpl.EndTime
	if tpl.UsesGrid() {
		grid, err := r.loadGrid()
		if err != nil {
			return nil, "cannot resolve period: " + err.Error(), nil
		}
		if start, end, err = scheduler.ResolvePeriod(grid, tpl.DayOfWeek, tpl.Period, tpl.Span); err != nil {
			return nil, err.Error(), nil
		}
	}

	slotType := tpl.SlotType
	if slotType == "" {
		slotType = course.CourseType
	}
	if !slotType.Valid() {
		slotType = models.SlotTypeTheory
	}
	slot := &models.ScheduleSlot{
		TimetableID:         r.timetable.ID,
		CourseID:            course.ID,
		FacultyID:           models.NormalizeAssignment(tpl.FacultyID),
		RoomID:              models.NormalizeAssignment(tpl.RoomID),
		DayOfWeek:           tpl.DayOfWeek,
		StartTime:           start,
		EndTime:             end,
		SlotType:            slotType,
		IsLabBlock:          tpl.IsLabBlock || (slotType == models.SlotTypeLab && tpl.Span > 1),
		SectionIDs:          append([]string{}, tpl.SectionIDs...),
		SpecialInstructions: tpl.SpecialInstructions,
	}
	return slot, "", nil
}

func (r *materializeRun) course(ctx context.Context, tpl models.SlotTemplate) (*models.Course, string, error) {
	key, label := "id:"+tpl.CourseID, tpl.CourseID
	if tpl.CourseID == "" {
		key, label = "code:"+tpl.CourseCode, "code "+tpl.CourseCode
	}
	missing := fmt.Sprintf("course %s not found", label)
	if cached, ok := r.courses[key]; ok {
		if cached == nil {
			return nil, missing, nil
		}
		return cached, "", nil
	}

	var (
		course *models.Course
		err    error
	)
	if tpl.CourseID != "" {
		course, err = r.svc.courses.FindByID(ctx, tpl.CourseID)
	} else {
		course, err = r.svc.courses.FindByCode(ctx, tpl.CourseCode)
	}
	if errors.Is(err, sql.ErrNoRows) {
		r.courses[key] = nil
		return nil, missing, nil
	}
	if err != nil {
		return nil, "", internalError(err, "failed to resolve course")
	}
	r.courses[key] = course
	return course, "", nil
}

func (r *materializeRun) loadGrid() ([]models.DayGrid, error) {
	if !r.gridReady {
		r.gridReady = true
		if !r.timetable.Schedule.HasGrid() {
			r.gridErr = errors.New("timetable has no grid configuration")
		} else {
			r.grid, r.gridErr = r.svc.grids.Generate(scheduler.GridConfigFrom(r.timetable.Schedule))
		}
	}
	return r.grid, r.gridErr
}

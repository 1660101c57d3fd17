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
	"github.com/noah-isme/timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/events"
)

type gridGenerator interface {
	Generate(cfg scheduler.GridConfig) ([]models.DayGrid, error)
}

type conflictReporter interface {
	TimetableConflicts(ctx context.Context, timetableID string, fresh bool) (*dto.ConflictReport, error)
	Invalidate(ctx context.Context, timetableID string)
}

// TimetableServiceConfig tunes lifecycle rules.
type TimetableServiceConfig struct {
	PublishBlocksOnHighSeverity bool
}

// TimetableService manages timetable documents and their lifecycle.
type TimetableService struct {
	timetables timetableRepository
	slots      scheduleSlotRepository
	grids      gridGenerator
	conflicts  conflictReporter
	publisher  events.Publisher
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        TimetableServiceConfig
}

// NewTimetableService constructs the service.
func NewTimetableService(
	timetables timetableRepository,
	slots scheduleSlotRepository,
	grids gridGenerator,
	conflicts conflictReporter,
	publisher events.Publisher,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &TimetableService{
		timetables: timetables,
		slots:      slots,
		grids:      grids,
		conflicts:  conflicts,
		publisher:  publisher,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// Create opens a draft timetable.
func (s *TimetableService) Create(ctx context.Context, actorID string, req dto.CreateTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid timetable payload")
	}
	schedule, err := s.checkSchedule(req.Schedule)
	if err != nil {
		return nil, err
	}
	timetable := &models.Timetable{
		Name:         req.Name,
		Program:      req.Program,
		Semester:     req.Semester,
		Batch:        req.Batch,
		AcademicYear: req.AcademicYear,
		Schedule:     schedule,
		Status:       models.TimetableStatusDraft,
		GeneratedBy:  actorID,
	}
	if err := s.timetables.Create(ctx, timetable); err != nil {
		return nil, internalError(err, "failed to create timetable")
	}
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:        events.TypeTimetableCreated,
		TimetableID: timetable.ID,
		ActorID:     actorID,
		Payload:     map[string]interface{}{"program": timetable.Program, "semester": timetable.Semester},
	})
	return timetable, nil
}

// Get loads one timetable.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.Timetable, error) {
	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "timetable")
	}
	return timetable, nil
}

// List returns a cohort's timetables, most recently updated first.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, invalidPayload(err, "invalid timetable filter")
	}
	timetables, err := s.timetables.ListByProgramSemester(ctx, query.Program, query.Semester)
	if err != nil {
		return nil, internalError(err, "failed to list timetables")
	}
	if timetables == nil {
		timetables = []models.Timetable{}
	}
	return timetables, nil
}

// UpdateConfig replaces the schedule document after validating it.
func (s *TimetableService) UpdateConfig(ctx context.Context, id string, schedule models.ScheduleConfig) (*models.Timetable, error) {
	timetable, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if timetable.Status == models.TimetableStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "published timetables are read-only")
	}
	checked, err := s.checkSchedule(schedule)
	if err != nil {
		return nil, err
	}
	if err := s.timetables.UpdateSchedule(ctx, id, checked); err != nil {
		return nil, lookupError(err, "timetable")
	}
	timetable.Schedule = checked
	return timetable, nil
}

// UpdateStatus moves a timetable through draft, active and published.
func (s *TimetableService) UpdateStatus(ctx context.Context, id, actorID string, req dto.UpdateTimetableStatusRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid status payload")
	}
	timetable, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if timetable.Status == req.Status {
		return timetable, nil
	}
	if !timetable.Status.CanTransition(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("cannot move timetable from %s to %s", timetable.Status, req.Status))
	}
	if req.Status == models.TimetableStatusPublished && s.cfg.PublishBlocksOnHighSeverity && s.conflicts != nil {
		report, err := s.conflicts.TimetableConflicts(ctx, id, true)
		if err != nil {
			return nil, err
		}
		if report.HighCount > 0 {
			return nil, appErrors.WithDetails(appErrors.ErrScheduleConflict,
				fmt.Sprintf("timetable has %d high severity conflicts", report.HighCount), report.Conflicts)
		}
	}
	if err := s.timetables.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, lookupError(err, "timetable")
	}
	previous := timetable.Status
	timetable.Status = req.Status
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:        events.TypeTimetableStatusChanged,
		TimetableID: id,
		ActorID:     actorID,
		Payload:     map[string]string{"from": string(previous), "to": string(req.Status)},
	})
	return timetable, nil
}

// Delete removes a draft timetable and its slots.
func (s *TimetableService) Delete(ctx context.Context, id, actorID string) error {
	timetable, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if timetable.Status != models.TimetableStatusDraft {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "only draft timetables can be deleted")
	}
	if err := s.timetables.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return internalError(err, "failed to delete timetable")
	}
	if s.conflicts != nil {
		s.conflicts.Invalidate(ctx, id)
	}
	publish(ctx, s.publisher, s.logger, events.Event{Type: events.TypeTimetableDeleted, TimetableID: id, ActorID: actorID})
	return nil
}

// Slots lists a timetable's slots in chronological order.
func (s *TimetableService) Slots(ctx context.Context, id string) ([]models.ScheduleSlot, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	slots, err := s.slots.ListByTimetable(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to list schedule slots")
	}
	if slots == nil {
		slots = []models.ScheduleSlot{}
	}
	return slots, nil
}

// Grid generates the time grid from the stored configuration.
func (s *TimetableService) Grid(ctx context.Context, id string) (*dto.GridResponse, error) {
	timetable, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !timetable.Schedule.HasGrid() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "timetable has no grid configuration")
	}
	grid, err := s.grids.Generate(scheduler.GridConfigFrom(timetable.Schedule))
	if err != nil {
		return nil, err
	}
	return gridResponse(grid), nil
}

func (s *TimetableService) checkSchedule(schedule models.ScheduleConfig) (models.ScheduleConfig, error) {
	schedule.Normalize()
	if err := schedule.Validate(); err != nil {
		return schedule, invalidPayload(err, "invalid schedule configuration")
	}
	if schedule.TimeSlots == nil {
		schedule.TimeSlots = []models.SlotTemplate{}
	}
	if schedule.WorkingDays == nil {
		schedule.WorkingDays = []models.Weekday{}
	}
	return schedule, nil
}

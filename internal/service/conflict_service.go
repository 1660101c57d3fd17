package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
)

const conflictCachePrefix = "conflicts:timetable:"

// ConflictService runs the conflict detector over stored timetables and
// ad-hoc entry lists. Timetable reports are cached until the slots change.
type ConflictService struct {
	timetables timetableRepository
	slots      scheduleSlotRepository
	courses    courseRepository
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	ttl        time.Duration
}

// NewConflictService constructs the service. A nil cache disables caching.
func NewConflictService(
	timetables timetableRepository,
	slots scheduleSlotRepository,
	courses courseRepository,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	ttl time.Duration,
) *ConflictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{
		timetables: timetables,
		slots:      slots,
		courses:    courses,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		ttl:        ttl,
	}
}

func conflictCacheKey(timetableID string) string {
	return conflictCachePrefix + timetableID
}

// TimetableConflicts reports program-level conflicts across a timetable's
// slots. fresh skips the cache read but still refreshes the entry.
func (s *ConflictService) TimetableConflicts(ctx context.Context, timetableID string, fresh bool) (*dto.ConflictReport, error) {
	// A cached report never outlives its timetable, even if an invalidation was lost.
	if _, err := s.timetables.FindByID(ctx, timetableID); err != nil {
		return nil, lookupError(err, "timetable")
	}
	key := conflictCacheKey(timetableID)
	if !fresh {
		var cached dto.ConflictReport
		if s.cache.Get(ctx, key, &cached) {
			cached.Cached = true
			return &cached, nil
		}
	}

	slots, err := s.slots.ListByTimetable(ctx, timetableID)
	if err != nil {
		return nil, internalError(err, "failed to list schedule slots")
	}
	courseList, err := s.courses.ListByIDs(ctx, distinctCourseIDs(slots))
	if err != nil {
		return nil, internalError(err, "failed to load courses")
	}
	courses := courseIndex(courseList)

	entries := make([]scheduler.Entry, 0, len(slots))
	for _, slot := range slots {
		var course *models.Course
		if c, ok := courses[slot.CourseID]; ok {
			course = &c
		}
		entries = append(entries, scheduler.EntryFromSlot(slot, course))
	}

	report := s.report(scheduler.LevelProgram, entries)
	report.TimetableID = timetableID
	s.cache.Set(ctx, key, report, s.ttl)
	s.logger.Debug("conflict report computed",
		zap.String("timetable_id", timetableID),
		zap.Int("slots", len(slots)),
		zap.Int("conflicts", len(report.Conflicts)))
	return report, nil
}

// Analyze runs detection over a caller-supplied list without touching storage.
func (s *ConflictService) Analyze(_ context.Context, req dto.AnalyzeConflictsRequest) (*dto.ConflictReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid conflict analysis payload")
	}
	level := scheduler.Level(req.Level)
	if level == "" {
		level = scheduler.LevelProgram
	}

	entries := make([]scheduler.Entry, len(req.Entries))
	for i, e := range req.Entries {
		if e.SlotID == "" {
			e.SlotID = fmt.Sprintf("entry-%d", i+1)
		}
		if day, err := models.ParseWeekday(string(e.DayOfWeek)); err == nil {
			e.DayOfWeek = day
		}
		entries[i] = e
	}
	return s.report(level, entries), nil
}

// Invalidate drops the cached report of a timetable.
func (s *ConflictService) Invalidate(ctx context.Context, timetableID string) {
	s.cache.Invalidate(ctx, conflictCacheKey(timetableID))
}

func (s *ConflictService) report(level scheduler.Level, entries []scheduler.Entry) *dto.ConflictReport {
	conflicts := scheduler.Detect(entries, level)
	scheduler.SortConflicts(conflicts)
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	s.metrics.RecordConflicts(conflicts)

	report := &dto.ConflictReport{Level: string(level), Conflicts: conflicts}
	for _, c := range conflicts {
		if c.Severity == models.SeverityHigh {
			report.HighCount++
		}
	}
	return report
}

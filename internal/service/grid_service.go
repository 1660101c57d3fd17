package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
)

// GridService generates time grids and memoises them per configuration.
type GridService struct {
	memo      *lru.Cache[string, []models.DayGrid]
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewGridService builds a grid service holding up to size grids.
func NewGridService(size int, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *GridService {
	if size <= 0 {
		size = 128
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	memo, err := lru.New[string, []models.DayGrid](size)
	if err != nil {
		// only reachable with a non-positive size
		panic(fmt.Sprintf("grid memo: %v", err))
	}
	return &GridService{memo: memo, validator: validate, metrics: metrics, logger: logger}
}

// Generate returns the grid for cfg. The returned slices are private copies.
func (s *GridService) Generate(cfg scheduler.GridConfig) ([]models.DayGrid, error) {
	normalized, err := normalizeGridConfig(cfg)
	if err != nil {
		return nil, invalidPayload(err, "invalid grid configuration")
	}
	if err := s.validator.Struct(normalized); err != nil {
		return nil, invalidPayload(err, "invalid grid configuration")
	}

	key := normalized.CacheKey()
	if cached, ok := s.memo.Get(key); ok {
		s.metrics.RecordGridCache(true)
		return cloneGrid(cached), nil
	}
	s.metrics.RecordGridCache(false)

	grid, err := scheduler.GenerateGrid(normalized)
	if err != nil {
		return nil, invalidPayload(err, "invalid grid configuration")
	}
	s.memo.Add(key, grid)
	return cloneGrid(grid), nil
}

// Preview generates a grid from an ad-hoc configuration.
func (s *GridService) Preview(_ context.Context, req dto.GridPreviewRequest) (*dto.GridResponse, error) {
	grid, err := s.Generate(req.GridConfig)
	if err != nil {
		return nil, err
	}
	return gridResponse(grid), nil
}

func gridResponse(grid []models.DayGrid) *dto.GridResponse {
	count := 0
	for _, day := range grid {
		count += len(day.Slots)
	}
	return &dto.GridResponse{Days: grid, SlotCount: count}
}

func normalizeGridConfig(cfg scheduler.GridConfig) (scheduler.GridConfig, error) {
	out := cfg
	out.WorkingDays = make([]models.Weekday, 0, len(cfg.WorkingDays))
	for _, raw := range cfg.WorkingDays {
		day, err := models.ParseWeekday(string(raw))
		if err != nil {
			return out, err
		}
		out.WorkingDays = append(out.WorkingDays, day)
	}
	var err error
	if out.StartTime, err = models.NormalizeClock(cfg.StartTime); err != nil {
		return out, fmt.Errorf("start_time: %w", err)
	}
	if out.EndTime, err = models.NormalizeClock(cfg.EndTime); err != nil {
		return out, fmt.Errorf("end_time: %w", err)
	}
	if cfg.LunchBreak != nil {
		lunch := *cfg.LunchBreak
		if lunch.StartTime, err = models.NormalizeClock(lunch.StartTime); err != nil {
			return out, fmt.Errorf("lunch_break.start_time: %w", err)
		}
		if lunch.EndTime, err = models.NormalizeClock(lunch.EndTime); err != nil {
			return out, fmt.Errorf("lunch_break.end_time: %w", err)
		}
		out.LunchBreak = &lunch
	}
	return out, nil
}

func cloneGrid(grid []models.DayGrid) []models.DayGrid {
	out := make([]models.DayGrid, len(grid))
	for i, day := range grid {
		out[i] = models.DayGrid{DayOfWeek: day.DayOfWeek, Slots: append([]models.TimeSlot(nil), day.Slots...)}
		if out[i].Slots == nil {
			out[i].Slots = []models.TimeSlot{}
		}
		if day.Lunch != nil {
			lunch := *day.Lunch
			out[i].Lunch = &lunch
		}
	}
	return out
}

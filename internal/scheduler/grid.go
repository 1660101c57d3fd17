package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/timetable-api/internal/models"
)

// GridConfig is the base configuration a time grid is generated from.
type GridConfig struct {
	WorkingDays         []models.Weekday `json:"working_days" validate:"required,min=1"`
	StartTime           string           `json:"start_time" validate:"required"`
	EndTime             string           `json:"end_time" validate:"required"`
	SlotDurationMinutes int              `json:"slot_duration_minutes" validate:"required,gt=0"`
	GraceTimeMinutes    int              `json:"grace_time_minutes" validate:"gte=0"`
	LunchBreak          *models.Interval `json:"lunch_break,omitempty"`
}

// GridConfigFrom extracts the grid portion of a timetable schedule document.
func GridConfigFrom(cfg models.ScheduleConfig) GridConfig {
	return GridConfig{
		WorkingDays:         cfg.WorkingDays,
		StartTime:           cfg.StartTime,
		EndTime:             cfg.EndTime,
		SlotDurationMinutes: cfg.SlotDurationMinutes,
		GraceTimeMinutes:    cfg.GraceTimeMinutes,
		LunchBreak:          cfg.LunchBreak,
	}
}

// CacheKey renders a stable identity for memoising generated grids.
func (c GridConfig) CacheKey() string {
	days := make([]string, 0, len(c.WorkingDays))
	for _, d := range c.WorkingDays {
		days = append(days, string(d))
	}
	lunch := "-"
	if c.LunchBreak != nil {
		lunch = c.LunchBreak.StartTime + "/" + c.LunchBreak.EndTime
	}
	return fmt.Sprintf("%s|%s|%s|%d|%d|%s", strings.Join(days, ","), c.StartTime, c.EndTime,
		c.SlotDurationMinutes, c.GraceTimeMinutes, lunch)
}

type gridBounds struct {
	start, end           int
	hasLunch             bool
	lunchStart, lunchEnd int
}

func (c GridConfig) bounds() (gridBounds, error) {
	var b gridBounds
	if c.SlotDurationMinutes <= 0 {
		return b, errors.New("slot_duration_minutes must be positive")
	}
	if c.GraceTimeMinutes < 0 {
		return b, errors.New("grace_time_minutes must not be negative")
	}
	start, end, err := models.Interval{StartTime: c.StartTime, EndTime: c.EndTime}.Bounds()
	if err != nil {
		return b, err
	}
	b.start, b.end = start, end
	if c.LunchBreak != nil && (c.LunchBreak.StartTime != "" || c.LunchBreak.EndTime != "") {
		ls, le, err := c.LunchBreak.Bounds()
		if err != nil {
			return b, fmt.Errorf("lunch_break: %w", err)
		}
		b.hasLunch, b.lunchStart, b.lunchEnd = true, ls, le
	}
	return b, nil
}

func (c GridConfig) days() ([]models.Weekday, error) {
	seen := make(map[models.Weekday]struct{}, len(c.WorkingDays))
	days := make([]models.Weekday, 0, len(c.WorkingDays))
	for _, raw := range c.WorkingDays {
		day, err := models.ParseWeekday(string(raw))
		if err != nil {
			return nil, err
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Order() < days[j].Order() })
	return days, nil
}

// overlaps compares half-open intervals [aStart,aEnd) and [bStart,bEnd).
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// GenerateGrid produces the teaching periods for each working day.
//
// A cursor walks from the day start. A period that would overlap the lunch
// window is not emitted; the cursor jumps to the end of lunch instead. A
// period is only emitted when it fits entirely before the day end, so no
// truncated periods are produced. The result depends on cfg alone.
func GenerateGrid(cfg GridConfig) ([]models.DayGrid, error) {
	b, err := cfg.bounds()
	if err != nil {
		return nil, err
	}
	days, err := cfg.days()
	if err != nil {
		return nil, err
	}

	dur, grace := cfg.SlotDurationMinutes, cfg.GraceTimeMinutes
	periods := make([][2]int, 0)
	for cursor := b.start; cursor+dur <= b.end; {
		if b.hasLunch && overlaps(cursor, cursor+dur, b.lunchStart, b.lunchEnd) {
			if b.lunchEnd > cursor {
				cursor = b.lunchEnd
			}
			continue
		}
		periods = append(periods, [2]int{cursor, cursor + dur})
		cursor += dur + grace
	}

	out := make([]models.DayGrid, 0, len(days))
	for _, day := range days {
		grid := models.DayGrid{DayOfWeek: day, Slots: make([]models.TimeSlot, 0, len(periods))}
		for _, p := range periods {
			grid.Slots = append(grid.Slots, models.TimeSlot{
				DayOfWeek:       day,
				StartTime:       models.FormatClock(p[0]),
				EndTime:         models.FormatClock(p[1]),
				DurationMinutes: dur,
				Kind:            models.SlotKindTheory,
			})
		}
		if b.hasLunch && overlaps(b.start, b.end, b.lunchStart, b.lunchEnd) {
			grid.Lunch = &models.TimeSlot{
				DayOfWeek:       day,
				StartTime:       models.FormatClock(b.lunchStart),
				EndTime:         models.FormatClock(b.lunchEnd),
				DurationMinutes: b.lunchEnd - b.lunchStart,
				Kind:            models.SlotKindBreak,
				IsLunch:         true,
			}
		}
		out = append(out, grid)
	}
	return out, nil
}

// ErrPeriodOutOfRange is returned when a template references a missing period.
var ErrPeriodOutOfRange = errors.New("period outside generated grid")

// ResolvePeriod maps a 1-based period (spanning span consecutive periods) on
// day to a concrete start and end time.
func ResolvePeriod(grid []models.DayGrid, day models.Weekday, period, span int) (string, string, error) {
	if span <= 0 {
		span = 1
	}
	for _, g := range grid {
		if g.DayOfWeek != day {
			continue
		}
		first, last := period-1, period+span-2
		if first < 0 || last >= len(g.Slots) {
			return "", "", fmt.Errorf("%w: %s period %d span %d", ErrPeriodOutOfRange, day, period, span)
		}
		start, end := g.Slots[first].StartTime, g.Slots[last].EndTime
		if g.Lunch != nil && start < g.Lunch.EndTime && g.Lunch.StartTime < end {
			return "", "", fmt.Errorf("%w: %s period %d span %d crosses lunch", ErrPeriodOutOfRange, day, period, span)
		}
		return start, end, nil
	}
	return "", "", fmt.Errorf("%w: %s is not a working day", ErrPeriodOutOfRange, day)
}

package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
)

// Export formats accepted by ExportTimetable.
const (
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
	ExportFormatXLSX = "xlsx"
)

type sheetRenderer interface {
	Render(sheet export.Sheet) ([]byte, error)
}

type calendarRenderer interface {
	Render(entries []export.CalendarEntry, opts export.CalendarOptions) ([]byte, error)
}

type studentScheduler interface {
	StudentSchedule(ctx context.Context, studentID string) (*dto.StudentScheduleResponse, error)
}

// ExportConfig tunes calendar exports.
type ExportConfig struct {
	CalendarWeeks int
	Timezone      string
}

// ExportService renders timetables and student schedules into files.
type ExportService struct {
	timetables timetableRepository
	slots      scheduleSlotRepository
	courses    courseRepository
	faculty    facultyRepository
	rooms      roomRepository
	schedules  studentScheduler
	renderers  map[string]sheetRenderer
	calendar   calendarRenderer
	location   *time.Location
	cfg        ExportConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService with the stock renderers.
func NewExportService(
	timetables timetableRepository,
	slots scheduleSlotRepository,
	courses courseRepository,
	faculty facultyRepository,
	rooms roomRepository,
	schedules studentScheduler,
	cfg ExportConfig,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CalendarWeeks <= 0 {
		cfg.CalendarWeeks = 16
	}
	location := time.UTC
	if cfg.Timezone != "" {
		if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
			location = loc
		} else {
			logger.Warn("unknown calendar timezone, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		}
	}
	return &ExportService{
		timetables: timetables,
		slots:      slots,
		courses:    courses,
		faculty:    faculty,
		rooms:      rooms,
		schedules:  schedules,
		renderers: map[string]sheetRenderer{
			ExportFormatCSV:  export.NewCSVRenderer(),
			ExportFormatPDF:  export.NewPDFRenderer(),
			ExportFormatXLSX: export.NewXLSXRenderer(),
		},
		calendar: export.NewCalendarRenderer(),
		location: location,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

var exportContentTypes = map[string]string{
	ExportFormatCSV:  "text/csv",
	ExportFormatPDF:  "application/pdf",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ExportTimetable renders a timetable's slots, joined with course, faculty and
// room names, in the requested format. An empty format means csv.
func (s *ExportService) ExportTimetable(ctx context.Context, timetableID, format string) (*dto.ExportFile, error) {
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format "+format)
	}
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		return nil, lookupError(err, "timetable")
	}
	slots, err := s.slots.ListByTimetable(ctx, timetableID)
	if err != nil {
		return nil, internalError(err, "failed to list schedule slots")
	}
	scheduler.SortChronological(slots)

	courseList, err := s.courses.ListByIDs(ctx, distinctCourseIDs(slots))
	if err != nil {
		return nil, internalError(err, "failed to load courses")
	}
	courses := courseIndex(courseList)
	facultyNames, err := s.facultyNames(ctx)
	if err != nil {
		return nil, err
	}
	roomNames, err := s.roomNames(ctx)
	if err != nil {
		return nil, err
	}

	sheet := export.Sheet{Title: timetable.Name, Rows: make([]export.SlotRow, 0, len(slots))}
	for _, slot := range slots {
		course := courses[slot.CourseID]
		sheet.Rows = append(sheet.Rows, export.SlotRow{
			Day:        string(slot.DayOfWeek),
			StartTime:  slot.StartTime,
			EndTime:    slot.EndTime,
			CourseCode: course.CourseCode,
			CourseName: course.CourseName,
			SlotType:   string(slot.SlotType),
			Faculty:    lookupName(facultyNames, slot.FacultyID),
			Room:       lookupName(roomNames, slot.RoomID),
			Sections:   strings.Join(slot.SectionIDs, ", "),
		})
	}

	body, err := renderer.Render(sheet)
	if err != nil {
		return nil, internalError(err, "failed to render timetable export")
	}
	s.logger.Debug("timetable exported", zap.String("timetable_id", timetableID), zap.String("format", format), zap.Int("rows", len(sheet.Rows)))
	return &dto.ExportFile{
		Filename:    export.SafeFilename(timetable.Name, format),
		ContentType: exportContentTypes[format],
		Body:        body,
	}, nil
}

// StudentCalendar renders the student's derived schedule as weekly recurring
// events starting from the given date (today when empty).
func (s *ExportService) StudentCalendar(ctx context.Context, studentID string, query dto.CalendarQuery) (*dto.ExportFile, error) {
	from := s.now().In(s.location)
	if query.From != "" {
		parsed, err := time.ParseInLocation("2006-01-02", query.From, s.location)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "from must be formatted as YYYY-MM-DD")
		}
		from = parsed
	}
	schedule, err := s.schedules.StudentSchedule(ctx, studentID)
	if err != nil {
		return nil, err
	}
	roomNames, err := s.roomNames(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]export.CalendarEntry, 0, len(schedule.Entries))
	for _, e := range schedule.Entries {
		if e.Slot == nil {
			continue
		}
		entries = append(entries, export.CalendarEntry{
			UID:         e.Slot.ID + "@timetable-api",
			Summary:     strings.TrimSpace(e.CourseCode + " " + e.CourseName),
			Location:    lookupName(roomNames, e.Slot.RoomID),
			Description: string(e.Slot.SlotType),
			Weekday:     e.Slot.DayOfWeek.Std(),
			StartTime:   e.Slot.StartTime,
			EndTime:     e.Slot.EndTime,
		})
	}
	body, err := s.calendar.Render(entries, export.CalendarOptions{From: from, Weeks: s.cfg.CalendarWeeks, Location: s.location})
	if err != nil {
		return nil, internalError(err, "failed to render calendar")
	}
	return &dto.ExportFile{
		Filename:    export.SafeFilename("schedule-"+studentID, "ics"),
		ContentType: "text/calendar",
		Body:        body,
	}, nil
}

func (s *ExportService) facultyNames(ctx context.Context) (map[string]string, error) {
	members, err := s.faculty.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load faculty")
	}
	names := make(map[string]string, len(members))
	for _, f := range members {
		names[f.ID] = f.FullName()
	}
	return names, nil
}

func (s *ExportService) roomNames(ctx context.Context) (map[string]string, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load rooms")
	}
	names := make(map[string]string, len(rooms))
	for _, r := range rooms {
		names[r.ID] = r.RoomNumber
	}
	return names, nil
}

func lookupName(names map[string]string, id *string) string {
	if id == nil {
		return models.UnassignedMarker
	}
	if name, ok := names[*id]; ok && name != "" {
		return name
	}
	return *id
}

package service

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
)

// FacultyScheduleService builds a faculty member's teaching view from the
// persisted slots.
type FacultyScheduleService struct {
	faculty    facultyRepository
	timetables timetableRepository
	slots      scheduleSlotRepository
	courses    courseRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewFacultyScheduleService constructs the service.
func NewFacultyScheduleService(
	faculty facultyRepository,
	timetables timetableRepository,
	slots scheduleSlotRepository,
	courses courseRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *FacultyScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyScheduleService{
		faculty:    faculty,
		timetables: timetables,
		slots:      slots,
		courses:    courses,
		validator:  validate,
		logger:     logger,
	}
}

// FacultySchedule lists the slots a faculty member teaches in the active
// timetable of each cohort, grouped by timetable. Slots of superseded
// timetables are left out. Double bookings are detected over the whole
// schedule; only the entries are paginated.
func (s *FacultyScheduleService) FacultySchedule(ctx context.Context, facultyID string, q dto.PageQuery) (*dto.FacultyScheduleResponse, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, invalidPayload(err, "invalid page query")
	}
	member, err := s.faculty.FindByID(ctx, facultyID)
	if err != nil {
		return nil, lookupError(err, "faculty member")
	}
	taught, err := s.slots.ListByFaculty(ctx, member.ID)
	if err != nil {
		return nil, internalError(err, "failed to list faculty slots")
	}

	byTimetable := map[string][]models.ScheduleSlot{}
	for _, slot := range taught {
		byTimetable[slot.TimetableID] = append(byTimetable[slot.TimetableID], slot)
	}

	resolver := newScheduleResolver(s.timetables, s.slots)
	active := make([]*models.Timetable, 0, len(byTimetable))
	skipped := 0
	for id := range byTimetable {
		timetable, err := s.timetables.FindByID(ctx, id)
		if err != nil {
			return nil, lookupError(err, "timetable")
		}
		chosen, err := resolver.cohortTimetable(ctx, timetable.Program, timetable.Semester)
		if err != nil {
			return nil, err
		}
		if chosen == nil || chosen.ID != timetable.ID {
			skipped += len(byTimetable[id])
			continue
		}
		active = append(active, timetable)
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Program != active[j].Program {
			return active[i].Program < active[j].Program
		}
		if active[i].Semester != active[j].Semester {
			return active[i].Semester < active[j].Semester
		}
		return active[i].ID < active[j].ID
	})

	var kept []models.ScheduleSlot
	for _, t := range active {
		kept = append(kept, byTimetable[t.ID]...)
	}
	courseList, err := s.courses.ListByIDs(ctx, distinctCourseIDs(kept))
	if err != nil {
		return nil, internalError(err, "failed to load courses")
	}
	courses := courseIndex(courseList)

	resp := &dto.FacultyScheduleResponse{
		FacultyID:    member.ID,
		TimetableIDs: make([]string, 0, len(active)),
		Entries:      []dto.FacultyScheduleEntry{},
	}
	detectorEntries := make([]scheduler.Entry, 0, len(kept))
	for _, t := range active {
		resp.TimetableIDs = append(resp.TimetableIDs, t.ID)
		group := byTimetable[t.ID]
		scheduler.SortChronological(group)
		for i := range group {
			slot := group[i]
			entry := dto.FacultyScheduleEntry{
				TimetableID: t.ID,
				Program:     t.Program,
				Semester:    t.Semester,
				CourseID:    slot.CourseID,
				Slot:        &slot,
			}
			var course *models.Course
			if c, ok := courses[slot.CourseID]; ok {
				course = &c
				entry.CourseCode, entry.CourseName = c.CourseCode, c.CourseName
			}
			resp.Entries = append(resp.Entries, entry)
			detectorEntries = append(detectorEntries, scheduler.EntryFromSlot(slot, course))
		}
	}

	conflicts := scheduler.FilterConflicts(scheduler.Detect(detectorEntries, scheduler.LevelProgram), models.ConflictFacultyDoubleBooked)
	scheduler.SortConflicts(conflicts)
	resp.Conflicts = conflicts
	resp.Entries, resp.Pagination = paginate(resp.Entries, q)

	if skipped > 0 {
		s.logger.Debug("faculty slots outside active timetables skipped",
			zap.String("faculty_id", member.ID),
			zap.Int("skipped", skipped))
	}
	return resp, nil
}

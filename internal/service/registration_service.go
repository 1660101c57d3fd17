package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/events"
)

// RegistrationConfig holds the per-student credit window.
type RegistrationConfig struct {
	MinCredits int
	MaxCredits int
}

// RegistrationService keeps each student's derived schedule free of
// overlapping time keys while they enrol, pick slots and drop courses.
type RegistrationService struct {
	students   studentRepository
	courses    courseRepository
	timetables timetableRepository
	slots      scheduleSlotRepository
	publisher  events.Publisher
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        RegistrationConfig
}

// NewRegistrationService constructs the service.
func NewRegistrationService(
	students studentRepository,
	courses courseRepository,
	timetables timetableRepository,
	slots scheduleSlotRepository,
	publisher events.Publisher,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg RegistrationConfig,
) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RegistrationService{
		students:   students,
		courses:    courses,
		timetables: timetables,
		slots:      slots,
		publisher:  publisher,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// Register enrols a student in a course, auto-selecting the first slot that
// does not collide with the student's current schedule.
func (s *RegistrationService) Register(ctx context.Context, studentID, actorID string, req dto.RegisterCourseRequest) (*dto.RegistrationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid registration payload")
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, "student")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, lookupError(err, "course")
	}

	if !course.IsActive {
		s.metrics.RecordRegistration("rejected")
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("course %s is not active", course.CourseCode))
	}
	if student.IsEnrolled(course.ID) {
		s.metrics.RecordRegistration("rejected")
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this course")
	}
	if student.Semester != course.Semester {
		s.metrics.RecordRegistration("rejected")
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("course %s belongs to semester %d, student is in semester %d", course.CourseCode, course.Semester, student.Semester))
	}
	if missing := missingPrerequisites(*student, *course); len(missing) > 0 {
		s.metrics.RecordRegistration("rejected")
		return nil, appErrors.WithDetails(appErrors.ErrPrerequisiteMissing, "missing prerequisite courses", dto.PrerequisiteDetails{Missing: missing})
	}

	var warnings []string
	if student.Program != course.Program {
		withRequest(ctx, s.logger).Warn("cross-program registration",
			zap.String("student_id", student.ID),
			zap.String("student_program", student.Program),
			zap.String("course_id", course.ID),
			zap.String("course_program", course.Program))
		warnings = append(warnings, fmt.Sprintf("course %s belongs to program %s", course.CourseCode, course.Program))
	}

	enrolled, err := s.courses.ListByIDs(ctx, student.EnrolledCourses)
	if err != nil {
		return nil, internalError(err, "failed to load enrolled courses")
	}
	current := totalCredits(enrolled)
	attempted := current + course.Credits
	if s.cfg.MaxCredits > 0 && attempted > s.cfg.MaxCredits {
		s.metrics.RecordRegistration("rejected")
		return nil, appErrors.WithDetails(appErrors.ErrCreditLimit,
			fmt.Sprintf("registering %s would exceed the %d credit limit", course.CourseCode, s.cfg.MaxCredits),
			dto.CreditLimitDetails{CurrentCredits: current, AttemptedCredits: attempted, MaxCredits: s.cfg.MaxCredits})
	}
	if s.cfg.MinCredits > 0 && attempted < s.cfg.MinCredits {
		warnings = append(warnings, fmt.Sprintf("%d credits is below the minimum load of %d", attempted, s.cfg.MinCredits))
	}

	r := newScheduleResolver(s.timetables, s.slots)
	booked, err := r.bookedKeys(ctx, *student, enrolled, "")
	if err != nil {
		return nil, err
	}
	candidates, err := r.courseSlots(ctx, *course)
	if err != nil {
		return nil, err
	}

	preferences := copyPreferences(student.Preferences)
	var selected *models.ScheduleSlot
	if len(candidates) > 0 {
		free, conflicts := partitionSlots(candidates, booked, *course)
		if len(free) == 0 {
			s.metrics.RecordRegistration("conflict")
			return nil, appErrors.WithDetails(appErrors.ErrScheduleConflict,
				fmt.Sprintf("every slot of %s conflicts with the current schedule", course.CourseCode),
				dto.SlotConflictDetails{Conflicts: conflicts, Suggestions: registrationSuggestions(*course, conflicts)})
		}
		chosen := free[0]
		selected = &chosen
		preferences.SelectedSlots[course.ID] = chosen.ID
	}

	patch := models.StudentRegistrationPatch{
		EnrolledCourses: append(append([]string(nil), student.EnrolledCourses...), course.ID),
		Preferences:     preferences,
	}
	if err := s.students.UpdateRegistration(ctx, student.ID, patch); err != nil {
		return nil, lookupError(err, "student")
	}

	s.metrics.RecordRegistration("registered")
	payload := map[string]interface{}{"course_id": course.ID}
	if selected != nil {
		payload["slot_id"] = selected.ID
	}
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:      events.TypeStudentRegistered,
		StudentID: student.ID,
		ActorID:   actorID,
		Payload:   payload,
	})

	return &dto.RegistrationResult{
		StudentID:       student.ID,
		CourseID:        course.ID,
		SelectedSlot:    selected,
		EnrolledCourses: patch.EnrolledCourses,
		TotalCredits:    attempted,
		Warnings:        warnings,
	}, nil
}

// SelectSlot pins an enrolled course to one of its slots.
func (s *RegistrationService) SelectSlot(ctx context.Context, studentID, actorID string, req dto.SelectSlotRequest) (*dto.RegistrationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid slot selection payload")
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, "student")
	}
	if !student.IsEnrolled(req.CourseID) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not enrolled in this course")
	}
	slot, err := s.slots.FindByID(ctx, req.SlotID)
	if err != nil {
		return nil, lookupError(err, "schedule slot")
	}
	if slot.CourseID != req.CourseID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot does not belong to the course")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, lookupError(err, "course")
	}
	r := newScheduleResolver(s.timetables, s.slots)
	chosen, err := r.timetable(ctx, *course)
	if err != nil {
		return nil, err
	}
	if chosen == nil || slot.TimetableID != chosen.ID {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "slot is not part of the course's active timetable")
	}
	enrolled, err := s.courses.ListByIDs(ctx, student.EnrolledCourses)
	if err != nil {
		return nil, internalError(err, "failed to load enrolled courses")
	}

	booked, err := r.bookedKeys(ctx, *student, enrolled, course.ID)
	if err != nil {
		return nil, err
	}
	if _, conflicts := partitionSlots([]models.ScheduleSlot{*slot}, booked, *course); len(conflicts) > 0 {
		s.metrics.RecordRegistration("conflict")
		return nil, appErrors.WithDetails(appErrors.ErrScheduleConflict, "selected slot conflicts with the current schedule",
			dto.SlotConflictDetails{Conflicts: conflicts, Suggestions: registrationSuggestions(*course, conflicts)})
	}

	preferences := copyPreferences(student.Preferences)
	preferences.SelectedSlots[course.ID] = slot.ID
	patch := models.StudentRegistrationPatch{
		EnrolledCourses: append([]string(nil), student.EnrolledCourses...),
		Preferences:     preferences,
	}
	if err := s.students.UpdateRegistration(ctx, student.ID, patch); err != nil {
		return nil, lookupError(err, "student")
	}

	s.metrics.RecordRegistration("slot_selected")
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:      events.TypeStudentSlotSelected,
		StudentID: student.ID,
		ActorID:   actorID,
		Payload:   map[string]interface{}{"course_id": course.ID, "slot_id": slot.ID},
	})

	return &dto.RegistrationResult{
		StudentID:       student.ID,
		CourseID:        course.ID,
		SelectedSlot:    slot,
		EnrolledCourses: patch.EnrolledCourses,
		TotalCredits:    totalCredits(enrolled),
	}, nil
}

// Unregister drops a course from the student's enrolments. The stored slot
// selection is left in place; it is ignored once the course is not enrolled.
func (s *RegistrationService) Unregister(ctx context.Context, studentID, courseID, actorID string) (*dto.RegistrationResult, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, "student")
	}
	if !student.IsEnrolled(courseID) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not enrolled in this course")
	}

	remaining := make([]string, 0, len(student.EnrolledCourses))
	for _, id := range student.EnrolledCourses {
		if id != courseID {
			remaining = append(remaining, id)
		}
	}
	patch := models.StudentRegistrationPatch{
		EnrolledCourses: remaining,
		Preferences:     copyPreferences(student.Preferences),
	}
	if err := s.students.UpdateRegistration(ctx, student.ID, patch); err != nil {
		return nil, lookupError(err, "student")
	}

	enrolled, err := s.courses.ListByIDs(ctx, remaining)
	if err != nil {
		return nil, internalError(err, "failed to load enrolled courses")
	}
	s.metrics.RecordRegistration("unregistered")
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:      events.TypeStudentUnregistered,
		StudentID: student.ID,
		ActorID:   actorID,
		Payload:   map[string]interface{}{"course_id": courseID},
	})

	return &dto.RegistrationResult{
		StudentID:       student.ID,
		CourseID:        courseID,
		EnrolledCourses: remaining,
		TotalCredits:    totalCredits(enrolled),
	}, nil
}

// CourseSlots lists the slots of a course in its chosen timetable, annotated
// with the student's current selection and any collisions.
func (s *RegistrationService) CourseSlots(ctx context.Context, studentID, courseID string) ([]dto.CourseSlotView, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, "student")
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, lookupError(err, "course")
	}
	enrolled, err := s.courses.ListByIDs(ctx, student.EnrolledCourses)
	if err != nil {
		return nil, internalError(err, "failed to load enrolled courses")
	}

	r := newScheduleResolver(s.timetables, s.slots)
	booked, err := r.bookedKeys(ctx, *student, enrolled, course.ID)
	if err != nil {
		return nil, err
	}
	slots, err := r.courseSlots(ctx, *course)
	if err != nil {
		return nil, err
	}

	selectedID, _ := student.SelectedSlot(course.ID)
	views := make([]dto.CourseSlotView, 0, len(slots))
	for _, slot := range slots {
		view := dto.CourseSlotView{ScheduleSlot: slot, Selected: slot.ID == selectedID, Conflicts: []string{}}
		for _, holder := range booked[scheduler.KeyOf(slot)] {
			view.Conflicts = append(view.Conflicts, fmt.Sprintf("overlaps %s (slot %s)", holder.courseLabel, holder.slotID))
		}
		views = append(views, view)
	}
	return views, nil
}

// StudentSchedule resolves the student's concrete meetings and reports
// student-level conflicts among them.
func (s *RegistrationService) StudentSchedule(ctx context.Context, studentID string) (*dto.StudentScheduleResponse, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, "student")
	}
	enrolled, err := s.courses.ListByIDs(ctx, student.EnrolledCourses)
	if err != nil {
		return nil, internalError(err, "failed to load enrolled courses")
	}

	r := newScheduleResolver(s.timetables, s.slots)
	resp := &dto.StudentScheduleResponse{StudentID: student.ID, Entries: []dto.StudentScheduleEntry{}}
	entries := make([]scheduler.Entry, 0)
	for _, course := range enrolled {
		slots, err := r.resolvedSlots(ctx, *student, course)
		if err != nil {
			return nil, err
		}
		for i := range slots {
			slot := slots[i]
			if resp.TimetableID == "" && course.Program == student.Program {
				resp.TimetableID = slot.TimetableID
			}
			resp.Entries = append(resp.Entries, dto.StudentScheduleEntry{
				CourseID:   course.ID,
				CourseCode: course.CourseCode,
				CourseName: course.CourseName,
				Slot:       &slot,
			})
			c := course
			entries = append(entries, scheduler.EntryFromSlot(slot, &c))
		}
	}

	conflicts := scheduler.FilterConflicts(scheduler.Detect(entries, scheduler.LevelStudent), models.ConflictStudentTime)
	scheduler.SortConflicts(conflicts)
	resp.Conflicts = conflicts
	return resp, nil
}

// StudentSchedulePage returns one page of the student's schedule. Conflicts are
// still detected over every meeting.
func (s *RegistrationService) StudentSchedulePage(ctx context.Context, studentID string, q dto.PageQuery) (*dto.StudentScheduleResponse, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, invalidPayload(err, "invalid page query")
	}
	resp, err := s.StudentSchedule(ctx, studentID)
	if err != nil {
		return nil, err
	}
	resp.Entries, resp.Pagination = paginate(resp.Entries, q)
	return resp, nil
}

type bookedSlot struct {
	courseID    string
	courseLabel string
	slotID      string
}

// scheduleResolver memoizes timetable and slot lookups for one request.
type scheduleResolver struct {
	timetables timetableRepository
	store      scheduleSlotRepository
	chosen     map[string]*models.Timetable
	slots      map[string][]models.ScheduleSlot
}

func newScheduleResolver(timetables timetableRepository, store scheduleSlotRepository) *scheduleResolver {
	return &scheduleResolver{
		timetables: timetables,
		store:      store,
		chosen:     map[string]*models.Timetable{},
		slots:      map[string][]models.ScheduleSlot{},
	}
}

// timetable picks the published timetable of the course's cohort, falling back
// to the most recently updated one. It returns nil when none exist.
func (r *scheduleResolver) timetable(ctx context.Context, course models.Course) (*models.Timetable, error) {
	return r.cohortTimetable(ctx, course.Program, course.Semester)
}

func (r *scheduleResolver) cohortTimetable(ctx context.Context, program string, semester int) (*models.Timetable, error) {
	key := fmt.Sprintf("%s/%d", program, semester)
	if t, ok := r.chosen[key]; ok {
		return t, nil
	}
	candidates, err := r.timetables.ListByProgramSemester(ctx, program, semester)
	if err != nil {
		return nil, internalError(err, "failed to list timetables")
	}
	var chosen *models.Timetable
	for i := range candidates {
		t := &candidates[i]
		switch {
		case chosen == nil:
			chosen = t
		case t.Status == models.TimetableStatusPublished && chosen.Status != models.TimetableStatusPublished:
			chosen = t
		case (t.Status == models.TimetableStatusPublished) == (chosen.Status == models.TimetableStatusPublished) && t.UpdatedAt.After(chosen.UpdatedAt):
			chosen = t
		}
	}
	r.chosen[key] = chosen
	return chosen, nil
}

// courseSlots returns every slot of course in its chosen timetable.
func (r *scheduleResolver) courseSlots(ctx context.Context, course models.Course) ([]models.ScheduleSlot, error) {
	timetable, err := r.timetable(ctx, course)
	if err != nil || timetable == nil {
		return nil, err
	}
	all, ok := r.slots[timetable.ID]
	if !ok {
		all, err = r.store.ListByTimetable(ctx, timetable.ID)
		if err != nil {
			return nil, internalError(err, "failed to list schedule slots")
		}
		r.slots[timetable.ID] = all
	}
	out := make([]models.ScheduleSlot, 0)
	for _, slot := range all {
		if slot.CourseID == course.ID {
			out = append(out, slot)
		}
	}
	return out, nil
}

// resolvedSlots returns the selected slot of an enrolled course, or all of its
// slots when nothing valid is selected.
func (r *scheduleResolver) resolvedSlots(ctx context.Context, student models.Student, course models.Course) ([]models.ScheduleSlot, error) {
	slots, err := r.courseSlots(ctx, course)
	if err != nil {
		return nil, err
	}
	if id, ok := student.SelectedSlot(course.ID); ok {
		for _, slot := range slots {
			if slot.ID == id {
				return []models.ScheduleSlot{slot}, nil
			}
		}
	}
	return slots, nil
}

// bookedKeys maps each time key occupied by the student's enrolled courses to
// the meetings holding it. exclude skips one course.
func (r *scheduleResolver) bookedKeys(ctx context.Context, student models.Student, enrolled []models.Course, exclude string) (map[scheduler.TimeKey][]bookedSlot, error) {
	booked := map[scheduler.TimeKey][]bookedSlot{}
	for _, course := range enrolled {
		if course.ID == exclude {
			continue
		}
		slots, err := r.resolvedSlots(ctx, student, course)
		if err != nil {
			return nil, err
		}
		for _, slot := range slots {
			key := scheduler.KeyOf(slot)
			booked[key] = append(booked[key], bookedSlot{courseID: course.ID, courseLabel: course.CourseCode, slotID: slot.ID})
		}
	}
	return booked, nil
}

// partitionSlots splits candidates into free slots and conflict reports,
// keeping the candidates' order.
func partitionSlots(candidates []models.ScheduleSlot, booked map[scheduler.TimeKey][]bookedSlot, course models.Course) ([]models.ScheduleSlot, []models.Conflict) {
	free := make([]models.ScheduleSlot, 0, len(candidates))
	var conflicts []models.Conflict
	for _, slot := range candidates {
		key := scheduler.KeyOf(slot)
		holders := booked[key]
		if len(holders) == 0 {
			free = append(free, slot)
			continue
		}
		slotIDs := []string{slot.ID}
		courseIDs := []string{course.ID}
		for _, h := range holders {
			slotIDs = append(slotIDs, h.slotID)
			courseIDs = append(courseIDs, h.courseID)
		}
		conflicts = append(conflicts, models.Conflict{
			Type:        models.ConflictStudentTime,
			Severity:    models.SeverityHigh,
			Description: fmt.Sprintf("%s at %s overlaps %s", course.CourseCode, key, holders[0].courseLabel),
			SlotID:      slot.ID,
			SlotIDs:     slotIDs,
			CourseIDs:   courseIDs,
			DayOfWeek:   key.Day,
			StartTime:   key.Start,
			EndTime:     key.End,
		})
	}
	return free, conflicts
}

func registrationSuggestions(course models.Course, conflicts []models.Conflict) []string {
	suggestions := []string{
		fmt.Sprintf("drop or change the slot of a course overlapping %s", course.CourseCode),
		"ask the scheduling office to add another section of " + course.CourseCode,
	}
	seen := map[string]struct{}{}
	for _, c := range conflicts {
		for _, id := range c.CourseIDs[1:] {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			suggestions = append(suggestions, "select a different slot for course "+id)
		}
	}
	return suggestions
}

func missingPrerequisites(student models.Student, course models.Course) []string {
	var missing []string
	for _, id := range course.Prerequisites {
		if !student.IsEnrolled(id) {
			missing = append(missing, id)
		}
	}
	return missing
}

func totalCredits(courses []models.Course) int {
	total := 0
	for _, c := range courses {
		total += c.Credits
	}
	return total
}

func copyPreferences(p models.StudentPreferences) models.StudentPreferences {
	out := models.StudentPreferences{SelectedSlots: make(map[string]string, len(p.SelectedSlots)+1)}
	for k, v := range p.SelectedSlots {
		out.SelectedSlots[k] = v
	}
	return out
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/optimizer"
)

const defaultOptimizerAlgorithm = "constraint_solver"

type optimizerClient interface {
	Optimize(ctx context.Context, job optimizer.JobRequest) (*optimizer.Result, error)
	Submit(ctx context.Context, job optimizer.JobRequest) (*optimizer.JobAccepted, error)
}

// OptimizationService hands a timetable to the external optimization engine
// and feeds a synchronous result back through the materializer.
type OptimizationService struct {
	timetables   timetableRepository
	courses      courseRepository
	faculty      facultyRepository
	rooms        roomRepository
	students     studentRepository
	grids        gridGenerator
	materializer slotMaterializer
	client       optimizerClient
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewOptimizationService constructs the service. A nil client disables it.
func NewOptimizationService(
	timetables timetableRepository,
	courses courseRepository,
	faculty facultyRepository,
	rooms roomRepository,
	students studentRepository,
	grids gridGenerator,
	materializer slotMaterializer,
	client optimizerClient,
	validate *validator.Validate,
	logger *zap.Logger,
) *OptimizationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OptimizationService{
		timetables:   timetables,
		courses:      courses,
		faculty:      faculty,
		rooms:        rooms,
		students:     students,
		grids:        grids,
		materializer: materializer,
		client:       client,
		validator:    validate,
		logger:       logger,
	}
}

// Optimize runs the engine for a timetable.
func (s *OptimizationService) Optimize(ctx context.Context, timetableID, actorID string, req dto.OptimizeRequest) (*dto.OptimizeResponse, error) {
	if s.client == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "optimizer is not enabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid optimize payload")
	}
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		return nil, lookupError(err, "timetable")
	}
	if timetable.Status == models.TimetableStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "published timetables are read-only")
	}
	if !timetable.Schedule.HasGrid() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "timetable has no grid configuration to optimize against")
	}

	problem, err := s.buildRequest(ctx, timetable)
	if err != nil {
		return nil, err
	}
	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = defaultOptimizerAlgorithm
	}
	job := optimizer.JobRequest{Request: *problem, Algorithm: algorithm, JobName: timetable.Name}

	if req.Async {
		accepted, err := s.client.Submit(ctx, job)
		if err != nil {
			return nil, upstreamError(err)
		}
		withRequest(ctx, s.logger).Info("optimization job submitted", zap.String("timetable_id", timetableID), zap.String("job_id", accepted.JobID))
		return &dto.OptimizeResponse{Async: true, JobID: accepted.JobID, Status: accepted.Status}, nil
	}

	result, err := s.client.Optimize(ctx, job)
	if err != nil {
		return nil, upstreamError(err)
	}
	if !result.Success {
		return nil, appErrors.WithDetails(appErrors.ErrUpstream, "optimizer could not produce a timetable", result.Warnings)
	}

	templates := make([]models.SlotTemplate, 0, len(result.TimetableSlots))
	for _, slot := range result.TimetableSlots {
		templates = append(templates, templateFromOptimizer(slot, problem))
	}
	materialized, err := s.materializer.Materialize(ctx, timetableID, actorID, dto.MaterializeSlotsRequest{
		Mode:    dto.MaterializeFromPayload,
		Replace: true,
		Classes: templates,
	})
	if err != nil {
		return nil, err
	}
	withRequest(ctx, s.logger).Info("optimization applied",
		zap.String("timetable_id", timetableID),
		zap.String("algorithm", result.AlgorithmUsed),
		zap.Int("slots", materialized.Created),
		zap.Float64("score", result.OptimizationScore))
	return &dto.OptimizeResponse{
		Status:            "applied",
		OptimizationScore: result.OptimizationScore,
		Warnings:          result.Warnings,
		Materialized:      materialized,
	}, nil
}

func (s *OptimizationService) buildRequest(ctx context.Context, timetable *models.Timetable) (*optimizer.Request, error) {
	grid, err := s.grids.Generate(scheduler.GridConfigFrom(timetable.Schedule))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "stored grid configuration is invalid: "+err.Error())
	}
	courses, err := s.courses.ListByProgramSemester(ctx, timetable.Program, timetable.Semester)
	if err != nil {
		return nil, internalError(err, "failed to load courses")
	}
	if len(courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no courses to schedule for this program and semester")
	}
	faculty, err := s.faculty.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load faculty")
	}
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load rooms")
	}
	students, err := s.students.ListByProgramSemester(ctx, timetable.Program, timetable.Semester)
	if err != nil {
		return nil, internalError(err, "failed to load students")
	}
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	enrolment, err := s.students.EnrollmentCounts(ctx, ids)
	if err != nil {
		return nil, internalError(err, "failed to count enrolments")
	}

	req := &optimizer.Request{
		Program:      timetable.Program,
		Semester:     timetable.Semester,
		Batch:        timetable.Batch,
		AcademicYear: timetable.AcademicYear,
		Constraints: optimizer.Constraints{
			MaxHoursPerDay:      8,
			MinBreakDuration:    timetable.Schedule.GraceTimeMinutes,
			ConsecutiveLabSlots: true,
			MaxConsecutiveHours: 3,
		},
	}
	if lunch := timetable.Schedule.LunchBreak; lunch != nil {
		if start, end, err := lunch.Bounds(); err == nil {
			req.Constraints.LunchBreakStart = lunch.StartTime
			req.Constraints.LunchBreakDuration = end - start
		}
	}
	for _, c := range courses {
		req.Courses = append(req.Courses, optimizer.Course{
			ID:                       c.ID,
			CourseCode:               c.CourseCode,
			CourseName:               c.CourseName,
			Credits:                  c.Credits,
			CourseType:               string(c.CourseType),
			ExpectedStudents:         enrolment[c.ID],
			RequiresConsecutiveSlots: c.CourseType == models.SlotTypeLab,
		})
	}
	for _, f := range faculty {
		if !f.IsActive {
			continue
		}
		req.Faculty = append(req.Faculty, optimizer.Faculty{
			ID:              f.ID,
			Name:            f.FullName(),
			Expertise:       []string(f.Expertise),
			MaxHoursPerWeek: f.MaxWorkload,
		})
	}
	for _, r := range rooms {
		if !r.IsAvailable {
			continue
		}
		req.Rooms = append(req.Rooms, optimizer.Room{
			ID:         r.ID,
			RoomNumber: r.RoomNumber,
			RoomName:   r.RoomNumber,
			Capacity:   r.Capacity,
			RoomType:   r.RoomType,
			Equipment:  []string(r.Equipment),
		})
	}
	for _, st := range students {
		req.Students = append(req.Students, optimizer.Student{
			ID:              st.ID,
			StudentID:       st.StudentCode,
			Name:            fmt.Sprintf("%s %s", st.FirstName, st.LastName),
			Program:         st.Program,
			Semester:        st.Semester,
			EnrolledCourses: []string(st.EnrolledCourses),
		})
	}
	for _, day := range grid {
		for _, slot := range day.Slots {
			req.TimeSlots = append(req.TimeSlots, optimizer.TimeSlot{
				Day:       string(day.DayOfWeek),
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
				Duration:  slot.DurationMinutes,
			})
		}
	}
	return req, nil
}

func templateFromOptimizer(slot optimizer.Slot, problem *optimizer.Request) models.SlotTemplate {
	tpl := models.SlotTemplate{
		CourseID:  slot.CourseID,
		DayOfWeek: models.Weekday(slot.Day),
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		FacultyID: models.NormalizeAssignment(&slot.FacultyID),
		RoomID:    models.NormalizeAssignment(&slot.RoomID),
	}
	for _, c := range problem.Courses {
		if c.ID == slot.CourseID && c.RequiresConsecutiveSlots {
			tpl.SlotType = models.SlotTypeLab
		}
	}
	return tpl
}

func upstreamError(err error) error {
	if errors.Is(err, optimizer.ErrTimeout) {
		return appErrors.Wrap(err, appErrors.ErrUpstreamTimeout.Code, appErrors.ErrUpstreamTimeout.Status, "optimizer timed out")
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "optimizer request failed")
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type courseRegistrar interface {
	Register(ctx context.Context, studentID, actorID string, req dto.RegisterCourseRequest) (*dto.RegistrationResult, error)
	SelectSlot(ctx context.Context, studentID, actorID string, req dto.SelectSlotRequest) (*dto.RegistrationResult, error)
	Unregister(ctx context.Context, studentID, courseID, actorID string) (*dto.RegistrationResult, error)
	CourseSlots(ctx context.Context, studentID, courseID string) ([]dto.CourseSlotView, error)
	StudentSchedulePage(ctx context.Context, studentID string, q dto.PageQuery) (*dto.StudentScheduleResponse, error)
}

// StudentHandler exposes course registration and slot selection.
type StudentHandler struct {
	service courseRegistrar
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(svc *service.RegistrationService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// Register godoc
// @Summary Register a student for a course
// @Description Selects the first conflict-free slot of the course. When every slot conflicts the registration is refused with suggestions.
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.RegisterCourseRequest true "Course to register"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /students/{id}/register-course [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var req dto.RegisterCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	result, err := h.service.Register(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// SelectSlot godoc
// @Summary Pin a student to one slot of an enrolled course
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.SelectSlotRequest true "Slot selection"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/select-slot [post]
func (h *StudentHandler) SelectSlot(c *gin.Context) {
	var req dto.SelectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot selection payload"))
		return
	}
	result, err := h.service.SelectSlot(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Unregister godoc
// @Summary Drop a course from a student's registration
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/courses/{courseId} [delete]
func (h *StudentHandler) Unregister(c *gin.Context) {
	result, err := h.service.Unregister(c.Request.Context(), c.Param("id"), c.Param("courseId"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// CourseSlots godoc
// @Summary List a course's slots annotated for a student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/course/{courseId}/slots [get]
func (h *StudentHandler) CourseSlots(c *gin.Context) {
	slots, err := h.service.CourseSlots(c.Request.Context(), c.Param("id"), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, map[string]interface{}{"total": len(slots)})
}

// Schedule godoc
// @Summary Derive a student's weekly schedule
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Entries per page" default(50)
// @Success 200 {object} response.Envelope
// @Router /students/{id}/schedule [get]
func (h *StudentHandler) Schedule(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid page query"))
		return
	}
	schedule, err := h.service.StudentSchedulePage(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule)
}

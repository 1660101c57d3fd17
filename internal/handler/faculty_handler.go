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

type facultyScheduler interface {
	FacultySchedule(ctx context.Context, facultyID string, q dto.PageQuery) (*dto.FacultyScheduleResponse, error)
}

// FacultyHandler serves a faculty member's teaching schedule.
type FacultyHandler struct {
	service facultyScheduler
}

// NewFacultyHandler constructs the handler.
func NewFacultyHandler(svc *service.FacultyScheduleService) *FacultyHandler {
	return &FacultyHandler{service: svc}
}

// Schedule godoc
// @Summary List a faculty member's teaching schedule
// @Description Slots of the active timetable of every cohort taught, with faculty double bookings.
// @Tags Faculty
// @Produce json
// @Security BearerAuth
// @Param id path string true "Faculty ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Entries per page" default(50)
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/{id}/schedule [get]
func (h *FacultyHandler) Schedule(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid page query"))
		return
	}
	schedule, err := h.service.FacultySchedule(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timetableManager interface {
	Create(ctx context.Context, actorID string, req dto.CreateTimetableRequest) (*models.Timetable, error)
	Get(ctx context.Context, id string) (*models.Timetable, error)
	List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, error)
	UpdateConfig(ctx context.Context, id string, schedule models.ScheduleConfig) (*models.Timetable, error)
	UpdateStatus(ctx context.Context, id, actorID string, req dto.UpdateTimetableStatusRequest) (*models.Timetable, error)
	Delete(ctx context.Context, id, actorID string) error
	Slots(ctx context.Context, id string) ([]models.ScheduleSlot, error)
	Grid(ctx context.Context, id string) (*dto.GridResponse, error)
}

// TimetableHandler exposes the timetable lifecycle.
type TimetableHandler struct {
	service timetableManager
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Create godoc
// @Summary Create a draft timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTimetableRequest true "Timetable payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetables [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req dto.CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	timetable, err := h.service.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, timetable)
}

// List godoc
// @Summary List timetables of a program semester
// @Tags Timetables
// @Produce json
// @Security BearerAuth
// @Param program query string true "Program"
// @Param semester query int true "Semester"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable query"))
		return
	}
	items, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Get godoc
// @Summary Get a timetable
// @Tags Timetables
// @Produce json
// @Security BearerAuth
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	timetable, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable)
}

// UpdateConfig godoc
// @Summary Replace the schedule configuration of a timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Timetable ID"
// @Param payload body models.ScheduleConfig true "Schedule configuration"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables/{id}/config [put]
func (h *TimetableHandler) UpdateConfig(c *gin.Context) {
	var schedule models.ScheduleConfig
	if err := c.ShouldBindJSON(&schedule); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	timetable, err := h.service.UpdateConfig(c.Request.Context(), c.Param("id"), schedule)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable)
}

// UpdateStatus godoc
// @Summary Move a timetable through draft, active and published
// @Tags Timetables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Timetable ID"
// @Param payload body dto.UpdateTimetableStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables/{id}/status [patch]
func (h *TimetableHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateTimetableStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	timetable, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable)
}

// Delete godoc
// @Summary Delete a draft timetable and its slots
// @Tags Timetables
// @Security BearerAuth
// @Param id path string true "Timetable ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Slots godoc
// @Summary List the slots of a timetable
// @Tags Timetables
// @Produce json
// @Security BearerAuth
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/slots [get]
func (h *TimetableHandler) Slots(c *gin.Context) {
	slots, err := h.service.Slots(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, map[string]interface{}{"total": len(slots)})
}

// Grid godoc
// @Summary Generate the time grid of a timetable
// @Tags Grid
// @Produce json
// @Security BearerAuth
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/grid [get]
func (h *TimetableHandler) Grid(c *gin.Context) {
	grid, err := h.service.Grid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid)
}

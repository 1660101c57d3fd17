package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type slotMaterializer interface {
	Materialize(ctx context.Context, timetableID, actorID string, req dto.MaterializeSlotsRequest) (*dto.MaterializeSlotsResponse, error)
}

type slotAllocator interface {
	AutoAllocate(ctx context.Context, timetableID, actorID string, req dto.AutoAllocateRequest) (*dto.AutoAllocateResponse, error)
}

type timetableOptimizer interface {
	Optimize(ctx context.Context, timetableID, actorID string, req dto.OptimizeRequest) (*dto.OptimizeResponse, error)
}

// SchedulingHandler exposes slot materialization, allocation and optimization.
type SchedulingHandler struct {
	materializer slotMaterializer
	allocator    slotAllocator
	optimizer    timetableOptimizer
}

// NewSchedulingHandler constructs the handler.
func NewSchedulingHandler(materializer *service.MaterializerService, allocator *service.AllocationService, optimizer *service.OptimizationService) *SchedulingHandler {
	return &SchedulingHandler{materializer: materializer, allocator: allocator, optimizer: optimizer}
}

// Materialize godoc
// @Summary Materialize slot templates into persisted schedule slots
// @Tags Scheduling
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Timetable ID"
// @Param payload body dto.MaterializeSlotsRequest true "Materialization payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables/{id}/materialize-slots [post]
func (h *SchedulingHandler) Materialize(c *gin.Context) {
	var req dto.MaterializeSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid materialization payload"))
		return
	}
	result, err := h.materializer.Materialize(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, result, map[string]interface{}{
		"created": result.Created,
		"skipped": len(result.Skipped),
	})
}

// AutoAllocate godoc
// @Summary Assign rooms and faculty to unassigned slots
// @Tags Scheduling
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Timetable ID"
// @Param payload body dto.AutoAllocateRequest false "Allocation options"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables/{id}/auto-allocate [post]
func (h *SchedulingHandler) AutoAllocate(c *gin.Context) {
	var req dto.AutoAllocateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid allocation payload"))
		return
	}
	result, err := h.allocator.AutoAllocate(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Optimize godoc
// @Summary Hand the timetable to the external optimization engine
// @Tags Scheduling
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Timetable ID"
// @Param payload body dto.OptimizeRequest false "Optimization options"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Failure 504 {object} response.Envelope
// @Router /timetables/{id}/optimize [post]
func (h *SchedulingHandler) Optimize(c *gin.Context) {
	var req dto.OptimizeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimization payload"))
		return
	}
	result, err := h.optimizer.Optimize(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.Async {
		status = http.StatusAccepted
	}
	response.JSON(c, status, result)
}

// bindOptionalJSON decodes the body when one is present.
func bindOptionalJSON(c *gin.Context, dest interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

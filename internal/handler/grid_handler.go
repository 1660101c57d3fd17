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

type gridPreviewer interface {
	Preview(ctx context.Context, req dto.GridPreviewRequest) (*dto.GridResponse, error)
}

// GridHandler previews time grids.
type GridHandler struct {
	service gridPreviewer
}

// NewGridHandler constructs the handler.
func NewGridHandler(svc *service.GridService) *GridHandler {
	return &GridHandler{service: svc}
}

// Preview godoc
// @Summary Generate a time grid from an ad-hoc configuration
// @Tags Grid
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GridPreviewRequest true "Grid configuration"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grid/preview [post]
func (h *GridHandler) Preview(c *gin.Context) {
	var req dto.GridPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grid payload"))
		return
	}
	grid, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid)
}

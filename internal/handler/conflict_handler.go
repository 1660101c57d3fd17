package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type conflictDetector interface {
	TimetableConflicts(ctx context.Context, timetableID string, fresh bool) (*dto.ConflictReport, error)
	Analyze(ctx context.Context, req dto.AnalyzeConflictsRequest) (*dto.ConflictReport, error)
}

// ConflictHandler exposes conflict detection.
type ConflictHandler struct {
	service conflictDetector
}

// NewConflictHandler constructs the handler.
func NewConflictHandler(svc *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{service: svc}
}

// Timetable godoc
// @Summary Detect program-level conflicts over a timetable's slots
// @Tags Conflicts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Timetable ID"
// @Param fresh query bool false "Bypass the cached report"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/conflicts [get]
func (h *ConflictHandler) Timetable(c *gin.Context) {
	fresh, _ := strconv.ParseBool(c.Query("fresh"))
	report, err := h.service.TimetableConflicts(c.Request.Context(), c.Param("id"), fresh)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, map[string]interface{}{"cached": report.Cached})
}

// Analyze godoc
// @Summary Detect conflicts over an ad-hoc list of entries
// @Tags Conflicts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AnalyzeConflictsRequest true "Entries to analyze"
// @Success 200 {object} response.Envelope
// @Router /conflicts/analyze [post]
func (h *ConflictHandler) Analyze(c *gin.Context) {
	var req dto.AnalyzeConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid analyze payload"))
		return
	}
	report, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

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

type documentExporter interface {
	ExportTimetable(ctx context.Context, timetableID, format string) (*dto.ExportFile, error)
	StudentCalendar(ctx context.Context, studentID string, query dto.CalendarQuery) (*dto.ExportFile, error)
}

// ExportHandler streams timetable documents.
type ExportHandler struct {
	service documentExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Timetable godoc
// @Summary Export a timetable as CSV, PDF or XLSX
// @Tags Exports
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Timetable ID"
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Router /timetables/{id}/export [get]
func (h *ExportHandler) Timetable(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.ExportTimetable(c.Request.Context(), c.Param("id"), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.ContentType, file.Filename, file.Body)
}

// Calendar godoc
// @Summary Export a student's weekly schedule as an iCalendar feed
// @Tags Exports
// @Produce text/calendar
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param from query string false "First week, YYYY-MM-DD"
// @Success 200 {file} file
// @Router /students/{id}/calendar.ics [get]
func (h *ExportHandler) Calendar(c *gin.Context) {
	var query dto.CalendarQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid calendar query"))
		return
	}
	file, err := h.service.StudentCalendar(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.ContentType, file.Filename, file.Body)
}

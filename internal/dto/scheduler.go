package dto

import (
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
)

// Materialization modes.
const (
	MaterializeFromMappings = "from_mappings"
	MaterializeFromPayload  = "from_payload"
)

// MaterializeSlotsRequest converts templates into persisted slots.
type MaterializeSlotsRequest struct {
	Mode    string                `json:"mode" validate:"required,oneof=from_mappings from_payload"`
	Replace bool                  `json:"replace"`
	Classes []models.SlotTemplate `json:"classes" validate:"required_if=Mode from_payload"`
}

// SkippedSlot names a template row that could not be materialized.
type SkippedSlot struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// MaterializeSlotsResponse reports the outcome of a materialization.
type MaterializeSlotsResponse struct {
	Created  int                   `json:"created"`
	Replaced int64                 `json:"replaced"`
	Slots    []models.ScheduleSlot `json:"slots"`
	Skipped  []SkippedSlot         `json:"skipped"`
}

// AutoAllocateRequest runs the allocation engine.
type AutoAllocateRequest struct {
	Order string `json:"order" validate:"omitempty,oneof=chronological stored"`
}

// AutoAllocateResponse summarises an allocation pass.
type AutoAllocateResponse struct {
	UpdatedCount      int               `json:"updatedCount"`
	TotalSlots        int               `json:"totalSlots"`
	Materialized      int               `json:"materialized"`
	RoomsAssigned     int               `json:"roomsAssigned"`
	FacultyAssigned   int               `json:"facultyAssigned"`
	OptimizationScore float64           `json:"optimizationScore"`
	Conflicts         []models.Conflict `json:"conflicts"`
}

// GridPreviewRequest generates a grid from an ad-hoc configuration.
type GridPreviewRequest struct {
	scheduler.GridConfig
}

// GridResponse is a generated grid.
type GridResponse struct {
	Days      []models.DayGrid `json:"days"`
	SlotCount int              `json:"slotCount"`
}

// AnalyzeConflictsRequest runs detection over an ad-hoc list.
type AnalyzeConflictsRequest struct {
	Level   string            `json:"level" validate:"omitempty,oneof=program student"`
	Entries []scheduler.Entry `json:"entries" validate:"required,min=1,dive"`
}

// ConflictReport is a detection result.
type ConflictReport struct {
	TimetableID string            `json:"timetableId,omitempty"`
	Level       string            `json:"level"`
	Conflicts   []models.Conflict `json:"conflicts"`
	HighCount   int               `json:"highCount"`
	Cached      bool              `json:"cached"`
}

// OptimizeRequest hands the timetable to the external optimizer.
type OptimizeRequest struct {
	Async     bool   `json:"async"`
	Algorithm string `json:"algorithm" validate:"omitempty,oneof=constraint_solver genetic_algorithm"`
}

// OptimizeResponse reports either the applied result or the upstream job.
type OptimizeResponse struct {
	Async             bool                      `json:"async"`
	JobID             string                    `json:"jobId,omitempty"`
	Status            string                    `json:"status,omitempty"`
	OptimizationScore float64                   `json:"optimizationScore,omitempty"`
	Warnings          []string                  `json:"warnings,omitempty"`
	Materialized      *MaterializeSlotsResponse `json:"materialized,omitempty"`
}

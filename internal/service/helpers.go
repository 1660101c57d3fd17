package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/events"
	applog "github.com/noah-isme/timetable-api/pkg/logger"
)

// FieldError names one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func invalidPayload(err error, message string) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Namespace(), Rule: fe.Tag(), Param: fe.Param()})
		}
		return appErrors.WithDetails(appErrors.ErrValidation, message, fields)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message+": "+err.Error())
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// lookupError maps a repository miss to NOT_FOUND and anything else to INTERNAL_ERROR.
func lookupError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return internalError(err, "failed to load "+what)
}

// publish sends event and only logs failures; a committed mutation is never
// reported as failed because of the event bus.
func publish(ctx context.Context, publisher events.Publisher, logger *zap.Logger, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		withRequest(ctx, logger).Warn("event publish failed", zap.String("event", event.Type), zap.Error(err))
	}
}

func withRequest(ctx context.Context, logger *zap.Logger) *zap.Logger {
	return applog.WithContext(ctx, logger)
}

const (
	defaultPage     = 1
	defaultPageSize = 50
)

// paginate slices one page out of items. Pages past the end come back empty.
func paginate[T any](items []T, q dto.PageQuery) ([]T, *models.Pagination) {
	page, size := q.Page, q.Size
	if page < 1 {
		page = defaultPage
	}
	if size < 1 {
		size = defaultPageSize
	}
	total := len(items)
	meta := &models.Pagination{Page: page, PageSize: size, TotalCount: total, TotalPages: (total + size - 1) / size}

	start := (page - 1) * size
	if start >= total {
		return []T{}, meta
	}
	end := start + size
	if end > total {
		end = total
	}
	return items[start:end], meta
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/resumekit/binder"
	"github.com/dmitrymomot/resumekit/pkg/logger"
	"github.com/dmitrymomot/resumekit/pkg/requestid"
)

// Mapping translates a sentinel error into an HTTP status and key.
type Mapping struct {
	Err  error
	Code int
	Key  string
}

// Map is shorthand for a Mapping literal.
func Map(err error, code int, key string) Mapping {
	return Mapping{Err: err, Code: code, Key: key}
}

// Classify resolves err to a status and error detail. Mappings are checked in
// order; the first match wins. Validation and binding errors are recognized
// without a mapping.
func Classify(err error, mappings ...Mapping) (int, ErrorDetail) {
	if ve, ok := AsValidationError(err); ok {
		return http.StatusUnprocessableEntity, ErrorDetail{
			Code:    ErrUnprocessableEntity.Key,
			Message: "validation failed",
			Details: ve,
		}
	}

	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			return m.Code, ErrorDetail{Code: m.Key, Message: http.StatusText(m.Code)}
		}
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, ErrorDetail{Code: httpErr.Key, Message: http.StatusText(httpErr.Code)}
	}

	switch {
	case errors.Is(err, binder.ErrInvalidJSON),
		errors.Is(err, binder.ErrMissingContentType),
		errors.Is(err, binder.ErrInvalidPath):
		return http.StatusBadRequest, ErrorDetail{Code: ErrBadRequest.Key, Message: err.Error()}
	case errors.Is(err, binder.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, ErrorDetail{Code: "unsupported_media_type", Message: err.Error()}
	}

	return http.StatusInternalServerError, ErrorDetail{Code: ErrInternal.Key, Message: "retry later"}
}

// NewErrorHandler renders errors as JSON envelopes and logs them, warn for
// client errors and error for server errors.
func NewErrorHandler(log *slog.Logger, mappings ...Mapping) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx Context, err error) {
		r := ctx.Request()
		status, detail := Classify(err, mappings...)

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(r.Context(), level, "request failed",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		_ = JSONError(status, detail).Render(ctx.ResponseWriter(), r)
	}
}

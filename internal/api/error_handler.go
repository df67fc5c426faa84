package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain errors
// to status codes, logs unexpected errors without leaking them, and renders
// {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

// Validation errors carry their own detail, so their full text is returned.
var badRequest = []error{
	domain.ErrInvalidID,
	domain.ErrMissingField,
	domain.ErrInvalidDate,
	domain.ErrUnknownReportKind,
	domain.ErrUnknownSection,
	domain.ErrUnknownInspection,
	domain.ErrInvalidLine,
	domain.ErrInvalidShift,
	domain.ErrInvalidUnit,
	domain.ErrInvalidStringer,
	domain.ErrInvalidFace,
	domain.ErrInvalidMonth,
	domain.ErrInvalidCollection,
	domain.ErrInvalidRole,
	domain.ErrInvalidTheme,
	domain.ErrWeakPassword,
	domain.ErrNoSignature,
}

var conflict = []error{
	domain.ErrReportNameTaken,
	domain.ErrIPQCAuditNameTaken,
	domain.ErrUserExists,
	domain.ErrSignaturePresent,
	domain.ErrNotSigned,
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrReportNotFound):
		return http.StatusNotFound, "report not found"
	case errors.Is(err, domain.ErrIPQCAuditNotFound):
		return http.StatusNotFound, "audit not found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrDatasetNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusUnauthorized, "User account is inactive"
	case errors.Is(err, domain.ErrTokenRevoked):
		return http.StatusUnauthorized, "session has ended, please log in again"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	}
	for _, target := range conflict {
		if errors.Is(err, target) {
			return http.StatusConflict, err.Error()
		}
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest, err.Error()
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

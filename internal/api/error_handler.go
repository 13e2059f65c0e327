package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/psyclinic/clinic-api/internal/api/metrics"
	"github.com/psyclinic/clinic-api/internal/core/domain"
)

const kindInternal = "InternalError"

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
	Field      string   `json:"field,omitempty"`
	ConflictID string   `json:"conflictId,omitempty"`
	Debug      string   `json:"debug,omitempty"`
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindAuthentication: http.StatusUnauthorized,
	domain.KindAuthorization:  http.StatusForbidden,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindConflict:       http.StatusConflict,
	domain.KindInfrastructure: http.StatusInternalServerError,
}

var statusKind = map[int]string{
	http.StatusBadRequest:      string(domain.KindValidation),
	http.StatusUnauthorized:    string(domain.KindAuthentication),
	http.StatusForbidden:       string(domain.KindAuthorization),
	http.StatusNotFound:        string(domain.KindNotFound),
	http.StatusConflict:        string(domain.KindConflict),
	http.StatusTooManyRequests: "RateLimitError",
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to fixed HTTP status codes.
//   - Logs unexpected and infrastructure errors without leaking them to the client.
//   - Renders a consistent JSON envelope, adding the cause as "debug" in development.
func NewHTTPErrorHandler(log zerolog.Logger, development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if development && body.Debug == "" && code >= http.StatusInternalServerError {
			body.Debug = err.Error()
		}
		if !development {
			body.Debug = ""
		}

		metrics.ErrorsTotal.WithLabelValues(body.Error).Inc()
		if body.Error == string(domain.KindConflict) && body.Field == domain.ErrSlotTaken.Field {
			metrics.SchedulingConflictsTotal.Inc()
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	if de, ok := domain.AsError(err); ok {
		code, known := kindStatus[de.Kind]
		if !known {
			code = http.StatusInternalServerError
		}
		body := errorResponse{
			Error:      string(de.Kind),
			Message:    de.Message,
			Details:    de.Details,
			Field:      de.Field,
			ConflictID: de.ConflictID,
		}
		if de.Err != nil {
			body.Debug = de.Err.Error()
		}
		if code >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("infrastructure error")
			body.Message = "service temporarily unavailable"
		}
		return code, body
	}

	// Echo's own errors (bind failures, unknown routes, rate limiting, ...).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		kind, ok := statusKind[he.Code]
		if !ok {
			kind = http.StatusText(he.Code)
		}
		body := errorResponse{Error: kind, Message: fmt.Sprintf("%v", he.Message)}
		if he.Internal != nil {
			body.Debug = he.Internal.Error()
		}
		return he.Code, body
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: kindInternal, Message: "internal server error"}
}

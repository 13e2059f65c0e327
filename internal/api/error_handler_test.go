package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

func renderError(t *testing.T, err error, development bool, method string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/x", nil)
	rec := httptest.NewRecorder()
	NewHTTPErrorHandler(zerolog.Nop(), development)(err, e.NewContext(req, rec))
	return rec
}

func TestHTTPErrorHandler_StatusByKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"validation", domain.NewValidationError("a is required"), http.StatusBadRequest, "ValidationError"},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest, "ValidationError"},
		{"authentication", domain.ErrInvalidCredentials, http.StatusUnauthorized, "AuthenticationError"},
		{"authorization", domain.NewForbiddenError("nope"), http.StatusForbidden, "AuthorizationError"},
		{"not found", domain.ErrPatientNotFound, http.StatusNotFound, "NotFoundError"},
		{"conflict", domain.NewConflictError("email", "email already exists"), http.StatusConflict, "ConflictError"},
		{"infrastructure", domain.NewUnavailableError("db down", errors.New("dial tcp")), http.StatusInternalServerError, "InfrastructureError"},
		{"echo", echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), http.StatusTooManyRequests, "RateLimitError"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "InternalError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := renderError(t, tt.err, false, http.MethodGet)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			body := decode(t, rec)
			if body["error"] != tt.kind {
				t.Fatalf("expected kind %s, got %v", tt.kind, body["error"])
			}
			if _, ok := body["debug"]; ok {
				t.Fatal("debug must not be exposed outside development")
			}
		})
	}
}

func TestHTTPErrorHandler_ConflictAndDetails(t *testing.T) {
	rec := renderError(t, domain.NewSlotConflict("abc"), false, http.MethodPost)
	body := decode(t, rec)
	if body["conflictId"] != "abc" || body["field"] != "appointmentDate" {
		t.Fatalf("unexpected conflict body: %v", body)
	}

	rec = renderError(t, domain.NewValidationError("a is required", "b is required"), false, http.MethodPost)
	details, _ := decode(t, rec)["details"].([]any)
	if len(details) != 2 {
		t.Fatalf("expected two details, got %v", details)
	}
}

func TestHTTPErrorHandler_InfrastructureMessageHidden(t *testing.T) {
	err := domain.NewUnavailableError("mongo timeout at 10.0.0.3", errors.New("i/o timeout"))

	body := decode(t, renderError(t, err, false, http.MethodGet))
	if body["message"] != "service temporarily unavailable" {
		t.Fatalf("expected generic message, got %v", body["message"])
	}

	body = decode(t, renderError(t, err, true, http.MethodGet))
	if body["debug"] != "i/o timeout" {
		t.Fatalf("expected debug cause in development, got %v", body["debug"])
	}
}

func TestHTTPErrorHandler_Head(t *testing.T) {
	rec := renderError(t, domain.ErrAppointmentNotFound, false, http.MethodHead)
	if rec.Code != http.StatusNotFound || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 404, got %d %q", rec.Code, rec.Body.String())
	}
}

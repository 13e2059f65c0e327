package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/psyclinic/clinic-api/internal/api/middleware"
)

// Pinger is a dependency the health probes can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness, readiness and index endpoints.
type HealthHandler struct {
	environment string
	started     time.Time
	database    Pinger
	sessions    Pinger
}

func NewHealthHandler(environment string, database, sessions Pinger) *HealthHandler {
	return &HealthHandler{
		environment: environment,
		started:     time.Now(),
		database:    database,
		sessions:    sessions,
	}
}

type healthResponse struct {
	Status         string            `json:"status"`
	Timestamp      time.Time         `json:"timestamp"`
	Uptime         float64           `json:"uptime"`
	Environment    string            `json:"environment"`
	Database       string            `json:"database"`
	SessionStore   string            `json:"sessionStore"`
	Authentication string            `json:"authentication"`
	Endpoints      map[string]string `json:"endpoints"`
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

type indexResponse struct {
	Message        string            `json:"message"`
	Version        string            `json:"version"`
	Documentation  string            `json:"documentation"`
	Health         string            `json:"health"`
	Authentication map[string]string `json:"authentication"`
	Resources      map[string]string `json:"resources"`
	User           *profileUser      `json:"user"`
}

// Liveness handles GET /health. It always answers 200 while the process is up
// and reports dependency state informationally.
//
// @Summary      Service health
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Router       /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:         "OK",
		Timestamp:      time.Now().UTC(),
		Uptime:         time.Since(h.started).Seconds(),
		Environment:    h.environment,
		Database:       connected(ctx, h.database),
		SessionStore:   connected(ctx, h.sessions),
		Authentication: "Not Authenticated",
		Endpoints: map[string]string{
			"documentation":  "/api-docs",
			"authentication": "/auth/github",
			"patients":       "/patients",
			"appointments":   "/appointments",
		},
	}
	if middleware.ActorFrom(c) != nil {
		resp.Authentication = "Authenticated"
	}
	return c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /health/ready: 503 while any dependency is down.
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true
	for name, p := range map[string]Pinger{"mongodb": h.database, "redis": h.sessions} {
		if err := p.Ping(ctx); err != nil {
			deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	return c.JSON(httpStatus, readinessResponse{Status: status, Dependencies: deps})
}

// Index handles GET /.
//
// @Summary      Service index
// @Tags         health
// @Produce      json
// @Success      200  {object}  indexResponse
// @Router       / [get]
func (h *HealthHandler) Index(c echo.Context) error {
	resp := indexResponse{
		Message:       "Psychology Clinic Appointment System API",
		Version:       "1.0.0",
		Documentation: "/api-docs",
		Health:        "/health",
		Authentication: map[string]string{
			"login":  "/auth/github",
			"status": "/auth/status",
			"logout": "/auth/logout",
		},
		Resources: map[string]string{
			"patients":     "/patients",
			"appointments": "/appointments",
		},
	}
	if user := middleware.IdentityFrom(c); user != nil {
		u := toProfileUser(user)
		resp.User = &u
	}
	return c.JSON(http.StatusOK, resp)
}

func connected(ctx context.Context, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		return "Disconnected"
	}
	return "Connected"
}

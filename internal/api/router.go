package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/psyclinic/clinic-api/docs"
	"github.com/psyclinic/clinic-api/internal/api/handler"
	"github.com/psyclinic/clinic-api/internal/api/middleware"
	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

// Dependencies is everything the HTTP layer needs. OAuth may be nil when
// GitHub credentials are not configured.
type Dependencies struct {
	Log         zerolog.Logger
	Environment string
	Development bool
	CORSOrigins []string
	// AuthRateLimit is the sustained requests per second allowed per client
	// on /auth. Zero disables the limiter.
	AuthRateLimit float64

	Identities   ports.IdentityService
	Patients     ports.PatientService
	Appointments ports.AppointmentService
	Sessions     ports.SessionStore
	OAuth        ports.OAuthProvider
	Database     handler.Pinger
	Auth         handler.AuthConfig

	// Registry receives the HTTP metrics and backs /metrics. Nil uses the
	// Prometheus default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log, deps.Development)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "clinic",
		Registerer: registerer,
	}))
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(middleware.Session(deps.Sessions, deps.Identities, deps.Log))

	// --- Handlers ---
	health := handler.NewHealthHandler(deps.Environment, deps.Database, deps.Sessions)
	auth := handler.NewAuthHandler(deps.Identities, deps.OAuth, deps.Sessions, deps.Auth, deps.Log)
	patients := handler.NewPatientHandler(deps.Patients)
	appointments := handler.NewAppointmentHandler(deps.Appointments)
	users := handler.NewUserHandler(deps.Identities)

	requireAuth := middleware.RequireAuth()

	// --- Service index, probes, metrics and docs (no auth required) ---
	e.GET("/", health.Index)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/api-docs/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	authGroup := e.Group("/auth")
	if deps.AuthRateLimit > 0 {
		authGroup.Use(echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
			Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(deps.AuthRateLimit),
				Burst:     int(deps.AuthRateLimit*2) + 1,
				ExpiresIn: 3 * time.Minute,
			}),
		}))
	}
	authGroup.GET("/github", auth.GitHub)
	authGroup.GET("/github/callback", auth.GitHubCallback)
	authGroup.GET("/status", auth.Status)
	authGroup.GET("/profile", auth.Profile, requireAuth)
	authGroup.POST("/logout", auth.Logout)
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)

	// --- Patients (authenticated; ownership is enforced by the service) ---
	p := e.Group("/patients", requireAuth)
	p.GET("", patients.List)
	p.POST("", patients.Create)
	p.GET("/:id", patients.Get)
	p.PUT("/:id", patients.Update)
	p.DELETE("/:id", patients.Delete)

	// --- Appointments (reads are public) ---
	a := e.Group("/appointments")
	a.GET("", appointments.List)
	a.GET("/patient/:patientId", appointments.ListByPatient, requireAuth)
	a.GET("/:id", appointments.Get)
	a.POST("", appointments.Create, requireAuth)
	a.PUT("/:id", appointments.Update, requireAuth)
	a.DELETE("/:id", appointments.Delete, requireAuth)

	// --- Users ---
	e.PUT("/users/:id/role", users.UpdateRole, middleware.RequireRole(domain.RoleAdmin))

	return e
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/psyclinic/clinic-api/internal/api/middleware"
	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

const (
	testPatientID = "65f1c0a2b3c4d5e6f7a8b9c0"
	testPsyID     = "65f1c0a2b3c4d5e6f7a8b9c1"
	testApptID    = "65f1c0a2b3c4d5e6f7a8b9c2"
)

type stubPatientService struct {
	listFn   func(ctx context.Context, actor *domain.Actor) ([]*domain.Patient, error)
	getFn    func(ctx context.Context, actor *domain.Actor, id string) (*domain.Patient, error)
	createFn func(ctx context.Context, actor *domain.Actor, in ports.PatientInput) (*domain.Patient, error)
	updateFn func(ctx context.Context, actor *domain.Actor, id string, in ports.PatientInput) (*domain.Patient, error)
	deleteFn func(ctx context.Context, actor *domain.Actor, id string) error
}

func (s *stubPatientService) List(ctx context.Context, actor *domain.Actor) ([]*domain.Patient, error) {
	return s.listFn(ctx, actor)
}

func (s *stubPatientService) Get(ctx context.Context, actor *domain.Actor, id string) (*domain.Patient, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubPatientService) Create(ctx context.Context, actor *domain.Actor, in ports.PatientInput) (*domain.Patient, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubPatientService) Update(ctx context.Context, actor *domain.Actor, id string, in ports.PatientInput) (*domain.Patient, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubPatientService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	return s.deleteFn(ctx, actor, id)
}

type stubAppointmentService struct {
	listFn          func(ctx context.Context, actor *domain.Actor) ([]ports.AppointmentDetail, error)
	getFn           func(ctx context.Context, actor *domain.Actor, id string) (*ports.AppointmentDetail, error)
	listByPatientFn func(ctx context.Context, actor *domain.Actor, patientID string) ([]ports.AppointmentDetail, error)
	createFn        func(ctx context.Context, actor *domain.Actor, in ports.AppointmentInput) (*ports.AppointmentDetail, error)
	updateFn        func(ctx context.Context, actor *domain.Actor, id string, in ports.AppointmentInput) (*ports.AppointmentDetail, error)
	deleteFn        func(ctx context.Context, actor *domain.Actor, id string) error
}

func (s *stubAppointmentService) List(ctx context.Context, actor *domain.Actor) ([]ports.AppointmentDetail, error) {
	return s.listFn(ctx, actor)
}

func (s *stubAppointmentService) Get(ctx context.Context, actor *domain.Actor, id string) (*ports.AppointmentDetail, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubAppointmentService) ListByPatient(ctx context.Context, actor *domain.Actor, patientID string) ([]ports.AppointmentDetail, error) {
	return s.listByPatientFn(ctx, actor, patientID)
}

func (s *stubAppointmentService) Create(ctx context.Context, actor *domain.Actor, in ports.AppointmentInput) (*ports.AppointmentDetail, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubAppointmentService) Update(ctx context.Context, actor *domain.Actor, id string, in ports.AppointmentInput) (*ports.AppointmentDetail, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubAppointmentService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	return s.deleteFn(ctx, actor, id)
}

type stubIdentityService struct {
	resolveFn    func(ctx context.Context, profile domain.ExternalProfile) (*domain.Identity, error)
	registerFn   func(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error)
	loginFn      func(ctx context.Context, email, password string) (*domain.Identity, error)
	getFn        func(ctx context.Context, id string) (*domain.Identity, error)
	updateRoleFn func(ctx context.Context, actor *domain.Actor, id string, role domain.Role) (*domain.Identity, error)
}

func (s *stubIdentityService) ResolveGitHubLogin(ctx context.Context, profile domain.ExternalProfile) (*domain.Identity, error) {
	return s.resolveFn(ctx, profile)
}

func (s *stubIdentityService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	return s.registerFn(ctx, in)
}

func (s *stubIdentityService) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubIdentityService) Get(ctx context.Context, id string) (*domain.Identity, error) {
	return s.getFn(ctx, id)
}

func (s *stubIdentityService) UpdateRole(ctx context.Context, actor *domain.Actor, id string, role domain.Role) (*domain.Identity, error) {
	return s.updateRoleFn(ctx, actor, id, role)
}

// stubSessions records created and deleted sessions.
type stubSessions struct {
	created []string
	deleted []string
}

func (s *stubSessions) Create(_ context.Context, userID string) (*ports.Session, error) {
	s.created = append(s.created, userID)
	return &ports.Session{ID: "sess-" + userID, UserID: userID}, nil
}

func (s *stubSessions) Get(context.Context, string) (*ports.Session, error) { return nil, nil }

func (s *stubSessions) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubSessions) Ping(context.Context) error { return nil }

type stubProvider struct {
	exchangeFn func(ctx context.Context, code string) (*domain.ExternalProfile, error)
}

func (p *stubProvider) Name() string { return "github" }

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://github.example.com/login?state=" + state
}

func (p *stubProvider) Exchange(ctx context.Context, code string) (*domain.ExternalProfile, error) {
	return p.exchangeFn(ctx, code)
}

// newContext builds an echo context with the validator installed, signed in
// as user when non-nil.
func newContext(method, target, body string, user *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		middleware.SetIdentity(c, user)
	}
	return c, rec
}

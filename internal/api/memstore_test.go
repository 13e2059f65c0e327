package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

// In-memory stores with the same uniqueness rules as the MongoDB indexes.
// Ids are ObjectID hex strings so they pass request validation.

type memIdentities struct {
	mu    sync.Mutex
	users map[string]domain.Identity
}

func newMemIdentities() *memIdentities {
	return &memIdentities{users: make(map[string]domain.Identity)}
}

func (m *memIdentities) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, domain.ErrIdentityNotFound
}

func (m *memIdentities) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (m *memIdentities) FindByGitHubIDOrEmail(ctx context.Context, githubID, email string) (*domain.Identity, error) {
	m.mu.Lock()
	for _, u := range m.users {
		if githubID != "" && u.GitHubID == githubID {
			m.mu.Unlock()
			return &u, nil
		}
	}
	m.mu.Unlock()
	return m.FindByEmail(ctx, email)
}

func (m *memIdentities) Create(_ context.Context, u *domain.Identity) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, domain.NewConflictError("email", "email already exists")
		}
	}
	c := *u
	c.ID = primitive.NewObjectID().Hex()
	m.users[c.ID] = c
	return &c, nil
}

func (m *memIdentities) Update(_ context.Context, u *domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return domain.ErrIdentityNotFound
	}
	m.users[u.ID] = *u
	return nil
}

type memPatients struct {
	mu       sync.Mutex
	patients map[string]domain.Patient
}

func newMemPatients() *memPatients {
	return &memPatients{patients: make(map[string]domain.Patient)}
}

func (m *memPatients) Create(_ context.Context, p *domain.Patient) (*domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.patients {
		if existing.Email == p.Email {
			return nil, domain.NewConflictError("email", "email already exists")
		}
	}
	c := *p
	c.ID = primitive.NewObjectID().Hex()
	m.patients[c.ID] = c
	return &c, nil
}

func (m *memPatients) FindByID(_ context.Context, id string) (*domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.patients[id]; ok {
		return &p, nil
	}
	return nil, domain.ErrPatientNotFound
}

func (m *memPatients) FindByIDs(_ context.Context, ids []string) (map[string]*domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*domain.Patient, len(ids))
	for _, id := range ids {
		if p, ok := m.patients[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (m *memPatients) List(_ context.Context) ([]*domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Patient, 0, len(m.patients))
	for _, p := range m.patients {
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memPatients) Update(_ context.Context, p *domain.Patient) (*domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[p.ID]; !ok {
		return nil, domain.ErrPatientNotFound
	}
	for id, existing := range m.patients {
		if id != p.ID && existing.Email == p.Email {
			return nil, domain.NewConflictError("email", "email already exists")
		}
	}
	m.patients[p.ID] = *p
	return p, nil
}

func (m *memPatients) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[id]; !ok {
		return domain.ErrPatientNotFound
	}
	delete(m.patients, id)
	return nil
}

type memAppointments struct {
	mu    sync.Mutex
	appts map[string]domain.Appointment
}

func newMemAppointments() *memAppointments {
	return &memAppointments{appts: make(map[string]domain.Appointment)}
}

func (m *memAppointments) holder(a *domain.Appointment) *domain.Appointment {
	for _, existing := range m.appts {
		if a.ConflictsWith(&existing) {
			return &existing
		}
	}
	return nil
}

func (m *memAppointments) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h := m.holder(a); h != nil {
		return nil, domain.NewSlotConflict(h.ID)
	}
	c := *a
	c.ID = primitive.NewObjectID().Hex()
	m.appts[c.ID] = c
	return &c, nil
}

func (m *memAppointments) FindByID(_ context.Context, id string) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.appts[id]; ok {
		return &a, nil
	}
	return nil, domain.ErrAppointmentNotFound
}

func (m *memAppointments) List(_ context.Context) ([]*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Appointment, 0, len(m.appts))
	for _, a := range m.appts {
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate.Before(out[j].AppointmentDate) })
	return out, nil
}

func (m *memAppointments) ListByPatient(ctx context.Context, patientID string) ([]*domain.Appointment, error) {
	all, _ := m.List(ctx)
	var out []*domain.Appointment
	for _, a := range all {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAppointments) Update(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appts[a.ID]; !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	if h := m.holder(a); h != nil {
		return nil, domain.NewSlotConflict(h.ID)
	}
	m.appts[a.ID] = *a
	return a, nil
}

func (m *memAppointments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appts[id]; !ok {
		return domain.ErrAppointmentNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *memAppointments) FindActiveAtSlot(_ context.Context, psychologistID string, at time.Time, excludeID string) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	probe := &domain.Appointment{ID: excludeID, PsychologistID: psychologistID, AppointmentDate: at, Status: domain.StatusScheduled}
	return m.holder(probe), nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]ports.Session
	down     bool
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]ports.Session)}
}

func (m *memSessions) Create(_ context.Context, userID string) (*ports.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := ports.Session{ID: uuid.NewString(), UserID: userID, CreatedAt: time.Now()}
	m.sessions[s.ID] = s
	return &s, nil
}

func (m *memSessions) Get(_ context.Context, id string) (*ports.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, domain.NewUnavailableError("session store unavailable", nil)
	}
	if s, ok := m.sessions[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memSessions) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return domain.NewUnavailableError("session store unavailable", nil)
	}
	return nil
}

func (m *memSessions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

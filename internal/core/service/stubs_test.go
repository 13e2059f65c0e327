package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

var discardLogger = zerolog.Nop()

type stubIdentityRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.Identity
	nextID int
	// failCreate, when set, is returned by Create.
	failCreate error
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{users: make(map[string]*domain.Identity)}
}

func cloneIdentity(u *domain.Identity) *domain.Identity {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneIdentity(u), nil
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneIdentity(u), nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) FindByGitHubIDOrEmail(_ context.Context, githubID, email string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if githubID != "" {
		for _, u := range r.users {
			if u.GitHubID == githubID {
				return cloneIdentity(u), nil
			}
		}
	}
	if email != "" {
		for _, u := range r.users {
			if u.Email == email {
				return cloneIdentity(u), nil
			}
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) Create(_ context.Context, u *domain.Identity) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.NewConflictError("email", "email already registered")
		}
	}
	r.nextID++
	c := cloneIdentity(u)
	c.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[c.ID] = c
	return cloneIdentity(c), nil
}

func (r *stubIdentityRepo) Update(_ context.Context, u *domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return domain.ErrIdentityNotFound
	}
	r.users[u.ID] = cloneIdentity(u)
	return nil
}

func (r *stubIdentityRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type stubPatientRepo struct {
	mu       sync.Mutex
	patients map[string]*domain.Patient
	nextID   int
}

func newStubPatientRepo() *stubPatientRepo {
	return &stubPatientRepo{patients: make(map[string]*domain.Patient)}
}

func clonePatient(p *domain.Patient) *domain.Patient {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (r *stubPatientRepo) Create(_ context.Context, p *domain.Patient) (*domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.patients {
		if existing.Email == p.Email {
			return nil, domain.NewConflictError("email", "email already exists")
		}
	}
	r.nextID++
	c := clonePatient(p)
	c.ID = fmt.Sprintf("patient-%d", r.nextID)
	r.patients[c.ID] = c
	return clonePatient(c), nil
}

func (r *stubPatientRepo) FindByID(_ context.Context, id string) (*domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.patients[id]; ok {
		return clonePatient(p), nil
	}
	return nil, domain.ErrPatientNotFound
}

func (r *stubPatientRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*domain.Patient, len(ids))
	for _, id := range ids {
		if p, ok := r.patients[id]; ok {
			out[id] = clonePatient(p)
		}
	}
	return out, nil
}

func (r *stubPatientRepo) List(_ context.Context) ([]*domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, clonePatient(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubPatientRepo) Update(_ context.Context, p *domain.Patient) (*domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[p.ID]; !ok {
		return nil, domain.ErrPatientNotFound
	}
	r.patients[p.ID] = clonePatient(p)
	return clonePatient(p), nil
}

func (r *stubPatientRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return domain.ErrPatientNotFound
	}
	delete(r.patients, id)
	return nil
}

// stubAppointmentRepo enforces slot uniqueness on write the same way the
// unique slot_key index does.
type stubAppointmentRepo struct {
	mu     sync.Mutex
	appts  map[string]*domain.Appointment
	nextID int
	// hideSlots makes FindActiveAtSlot report every slot as free, simulating a
	// writer that raced the pre-check.
	hideSlots bool
}

func newStubAppointmentRepo() *stubAppointmentRepo {
	return &stubAppointmentRepo{appts: make(map[string]*domain.Appointment)}
}

func cloneAppointment(a *domain.Appointment) *domain.Appointment {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func (r *stubAppointmentRepo) slotHolder(a *domain.Appointment) *domain.Appointment {
	for _, existing := range r.appts {
		if a.ConflictsWith(existing) {
			return existing
		}
	}
	return nil
}

func (r *stubAppointmentRepo) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := cloneAppointment(a)
	c.ID = fmt.Sprintf("appt-%d", r.nextID)
	if holder := r.slotHolder(c); holder != nil {
		return nil, domain.NewSlotConflict(holder.ID)
	}
	r.appts[c.ID] = c
	return cloneAppointment(c), nil
}

func (r *stubAppointmentRepo) FindByID(_ context.Context, id string) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.appts[id]; ok {
		return cloneAppointment(a), nil
	}
	return nil, domain.ErrAppointmentNotFound
}

func (r *stubAppointmentRepo) List(_ context.Context) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Appointment, 0, len(r.appts))
	for _, a := range r.appts {
		out = append(out, cloneAppointment(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate.Before(out[j].AppointmentDate) })
	return out, nil
}

func (r *stubAppointmentRepo) ListByPatient(ctx context.Context, patientID string) ([]*domain.Appointment, error) {
	all, _ := r.List(ctx)
	out := all[:0]
	for _, a := range all {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAppointmentRepo) Update(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appts[a.ID]; !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	if holder := r.slotHolder(a); holder != nil {
		return nil, domain.NewSlotConflict(holder.ID)
	}
	r.appts[a.ID] = cloneAppointment(a)
	return cloneAppointment(a), nil
}

func (r *stubAppointmentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appts[id]; !ok {
		return domain.ErrAppointmentNotFound
	}
	delete(r.appts, id)
	return nil
}

func (r *stubAppointmentRepo) FindActiveAtSlot(_ context.Context, psychologistID string, at time.Time, excludeID string) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideSlots {
		return nil, nil
	}
	probe := &domain.Appointment{ID: excludeID, PsychologistID: psychologistID, AppointmentDate: at, Status: domain.StatusScheduled}
	if holder := r.slotHolder(probe); holder != nil {
		return cloneAppointment(holder), nil
	}
	return nil, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.AppointmentEvent
}

func (n *recordingNotifier) Enqueue(ev domain.AppointmentEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) types() []domain.AppointmentEventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.AppointmentEventType, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Type
	}
	return out
}

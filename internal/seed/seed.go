// Package seed loads demo patients and appointments from a YAML fixture.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

// Fixture is the top-level document of a seed file.
type Fixture struct {
	Patients     []PatientFixture     `yaml:"patients"`
	Appointments []AppointmentFixture `yaml:"appointments"`
}

type PatientFixture struct {
	FirstName        string                   `yaml:"firstName"`
	LastName         string                   `yaml:"lastName"`
	Email            string                   `yaml:"email"`
	Phone            string                   `yaml:"phone"`
	DateOfBirth      string                   `yaml:"dateOfBirth"`
	Gender           domain.Gender            `yaml:"gender"`
	Address          *AddressFixture          `yaml:"address"`
	EmergencyContact *EmergencyContactFixture `yaml:"emergencyContact"`
	InsuranceInfo    *InsuranceFixture        `yaml:"insuranceInfo"`
}

type AddressFixture struct {
	Street  string `yaml:"street"`
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	ZipCode string `yaml:"zipCode"`
	Country string `yaml:"country"`
}

type EmergencyContactFixture struct {
	Name         string `yaml:"name"`
	Phone        string `yaml:"phone"`
	Relationship string `yaml:"relationship"`
}

type InsuranceFixture struct {
	Provider     string `yaml:"provider"`
	PolicyNumber string `yaml:"policyNumber"`
}

type TreatmentPlanFixture struct {
	Diagnosis string   `yaml:"diagnosis"`
	Goals     []string `yaml:"goals"`
	NextSteps string   `yaml:"nextSteps"`
}

// AppointmentFixture references its patient by email. The instant is either
// an absolute RFC 3339 date or an offset from the time of seeding.
type AppointmentFixture struct {
	PatientEmail   string                   `yaml:"patientEmail"`
	PsychologistID string                   `yaml:"psychologistId"`
	Date           string                   `yaml:"date"`
	Offset         time.Duration            `yaml:"offset"`
	Duration       int                      `yaml:"duration"`
	Type           domain.AppointmentType   `yaml:"appointmentType"`
	Status         domain.AppointmentStatus `yaml:"status"`
	Notes          string                   `yaml:"notes"`
	Symptoms       []string                 `yaml:"symptoms"`
	TreatmentPlan  *TreatmentPlanFixture    `yaml:"treatmentPlan"`
}

// Clearer empties a collection before seeding.
type Clearer interface {
	Clear(ctx context.Context) error
}

// PatientStore is a patient repository that can be cleared.
type PatientStore interface {
	ports.PatientRepository
	Clearer
}

// AppointmentStore is an appointment repository that can be cleared.
type AppointmentStore interface {
	ports.AppointmentRepository
	Clearer
}

// Result counts what was inserted.
type Result struct {
	Patients     int
	Appointments int
}

// Decode parses a YAML fixture, rejecting unknown keys.
func Decode(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode seed fixture: %w", err)
	}
	return &f, nil
}

type Seeder struct {
	patients     PatientStore
	appointments AppointmentStore
	logger       zerolog.Logger
	now          func() time.Time
}

func NewSeeder(patients PatientStore, appointments AppointmentStore, logger zerolog.Logger) *Seeder {
	return &Seeder{
		patients:     patients,
		appointments: appointments,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Run clears both collections and inserts the fixture through the
// repositories, so the store's uniqueness rules still apply.
func (s *Seeder) Run(ctx context.Context, f *Fixture) (Result, error) {
	var res Result

	if err := s.appointments.Clear(ctx); err != nil {
		return res, fmt.Errorf("clear appointments: %w", err)
	}
	if err := s.patients.Clear(ctx); err != nil {
		return res, fmt.Errorf("clear patients: %w", err)
	}

	now := s.now()
	byEmail := make(map[string]string, len(f.Patients))

	for i, pf := range f.Patients {
		p, err := pf.toDomain(now)
		if err != nil {
			return res, fmt.Errorf("patient %d: %w", i, err)
		}
		created, err := s.patients.Create(ctx, p)
		if err != nil {
			return res, fmt.Errorf("patient %d (%s): %w", i, p.Email, err)
		}
		byEmail[created.Email] = created.ID
		res.Patients++
	}

	for i, af := range f.Appointments {
		patientID, ok := byEmail[normalizeEmail(af.PatientEmail)]
		if !ok {
			return res, fmt.Errorf("appointment %d: unknown patient %q", i, af.PatientEmail)
		}
		a, err := af.toDomain(patientID, now)
		if err != nil {
			return res, fmt.Errorf("appointment %d: %w", i, err)
		}
		if _, err := s.appointments.Create(ctx, a); err != nil {
			return res, fmt.Errorf("appointment %d: %w", i, err)
		}
		res.Appointments++
	}

	s.logger.Info().
		Int("patients", res.Patients).
		Int("appointments", res.Appointments).
		Msg("database seeded")
	return res, nil
}

func (pf PatientFixture) toDomain(now time.Time) (*domain.Patient, error) {
	if pf.FirstName == "" || pf.LastName == "" || pf.Email == "" {
		return nil, errors.New("firstName, lastName and email are required")
	}
	dob, err := time.Parse(time.DateOnly, pf.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("dateOfBirth: %w", err)
	}
	p := &domain.Patient{
		FirstName:   pf.FirstName,
		LastName:    pf.LastName,
		Email:       normalizeEmail(pf.Email),
		Phone:       pf.Phone,
		DateOfBirth: dob,
		Gender:      pf.Gender,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if a := pf.Address; a != nil {
		p.Address = &domain.Address{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country}
	}
	if ec := pf.EmergencyContact; ec != nil {
		p.EmergencyContact = &domain.EmergencyContact{Name: ec.Name, Phone: ec.Phone, Relationship: ec.Relationship}
	}
	if ins := pf.InsuranceInfo; ins != nil {
		p.InsuranceInfo = &domain.InsuranceInfo{Provider: ins.Provider, PolicyNumber: ins.PolicyNumber}
	}
	return p, nil
}

func (af AppointmentFixture) toDomain(patientID string, now time.Time) (*domain.Appointment, error) {
	var at time.Time
	switch {
	case af.Date != "":
		t, err := time.Parse(time.RFC3339, af.Date)
		if err != nil {
			return nil, fmt.Errorf("date: %w", err)
		}
		at = t
	case af.Offset != 0:
		at = now.Add(af.Offset).Truncate(time.Hour)
	default:
		return nil, errors.New("either date or offset is required")
	}

	status := af.Status
	if status == "" {
		status = domain.StatusScheduled
	}
	duration := af.Duration
	if duration == 0 {
		duration = 60
	}

	a := &domain.Appointment{
		PatientID:       patientID,
		PsychologistID:  af.PsychologistID,
		AppointmentDate: domain.NormalizeSlotTime(at),
		Duration:        duration,
		Type:            af.Type,
		Status:          status,
		Notes:           af.Notes,
		Symptoms:        af.Symptoms,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if tp := af.TreatmentPlan; tp != nil {
		a.TreatmentPlan = &domain.TreatmentPlan{Diagnosis: tp.Diagnosis, Goals: tp.Goals, NextSteps: tp.NextSteps}
	}
	return a, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

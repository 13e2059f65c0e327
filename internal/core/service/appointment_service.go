package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/policy"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

var errPastAppointment = domain.NewValidationError("appointmentDate cannot be in the past")

type AppointmentService struct {
	repo     ports.AppointmentRepository
	patients ports.PatientRepository
	checker  *ConflictChecker
	notifier ports.EventNotifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAppointmentService(
	repo ports.AppointmentRepository,
	patients ports.PatientRepository,
	notifier ports.EventNotifier,
	logger zerolog.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:     repo,
		patients: patients,
		checker:  NewConflictChecker(repo),
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns every appointment. Listing is public.
func (s *AppointmentService) List(ctx context.Context, actor *domain.Actor) ([]ports.AppointmentDetail, error) {
	if err := authorize(policy.Request{Actor: actor, Operation: policy.OpRead, Public: true}); err != nil {
		return nil, err
	}
	appts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return s.withPatients(ctx, appts)
}

// Get returns a single appointment. Reading is public.
func (s *AppointmentService) Get(ctx context.Context, actor *domain.Actor, id string) (*ports.AppointmentDetail, error) {
	if err := authorize(policy.Request{Actor: actor, Operation: policy.OpRead, Public: true}); err != nil {
		return nil, err
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return s.withPatient(ctx, a)
}

// ListByPatient returns the appointments of one patient.
func (s *AppointmentService) ListByPatient(ctx context.Context, actor *domain.Actor, patientID string) ([]ports.AppointmentDetail, error) {
	if err := authorize(policy.Request{Actor: actor, Operation: policy.OpRead}); err != nil {
		return nil, err
	}
	if _, err := s.patients.FindByID(ctx, patientID); err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}
	appts, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}
	return s.withPatients(ctx, appts)
}

// Create books a new appointment once the patient exists and the clinician's
// slot is free.
func (s *AppointmentService) Create(ctx context.Context, actor *domain.Actor, in ports.AppointmentInput) (*ports.AppointmentDetail, error) {
	if err := authorize(policy.Request{Actor: actor, Operation: policy.OpWrite}); err != nil {
		return nil, err
	}

	now := s.now()
	if in.AppointmentDate.Before(now) {
		return nil, errPastAppointment
	}

	patient, err := s.patients.FindByID(ctx, in.PatientID)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	appt := &domain.Appointment{
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyAppointmentInput(appt, in)

	if appt.HoldsSlot() {
		if err := s.checker.Ensure(ctx, appt.PsychologistID, appt.AppointmentDate, ""); err != nil {
			s.logConflict(err, appt)
			return nil, err
		}
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		s.logConflict(err, appt)
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.logger.Info().
		Str("appointment_id", created.ID).
		Str("patient_id", created.PatientID).
		Str("psychologist_id", created.PsychologistID).
		Time("appointment_date", created.AppointmentDate).
		Msg("appointment created")
	s.notify(domain.EventAppointmentCreated, created, actor)

	return &ports.AppointmentDetail{Appointment: created, Patient: patient}, nil
}

// Update replaces an appointment's fields, re-running the conflict check
// against every other appointment of the resulting clinician and instant.
func (s *AppointmentService) Update(ctx context.Context, actor *domain.Actor, id string, in ports.AppointmentInput) (*ports.AppointmentDetail, error) {
	if err := authorize(policy.Request{Actor: actor, Operation: policy.OpWrite}); err != nil {
		return nil, err
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	var patient *domain.Patient
	if in.PatientID != appt.PatientID {
		if patient, err = s.patients.FindByID(ctx, in.PatientID); err != nil {
			return nil, fmt.Errorf("update appointment: %w", err)
		}
	}

	if !domain.NormalizeSlotTime(in.AppointmentDate).Equal(domain.NormalizeSlotTime(appt.AppointmentDate)) &&
		in.AppointmentDate.Before(s.now()) {
		return nil, errPastAppointment
	}

	applyAppointmentInput(appt, in)
	appt.UpdatedAt = s.now()

	if appt.HoldsSlot() {
		if err := s.checker.Ensure(ctx, appt.PsychologistID, appt.AppointmentDate, appt.ID); err != nil {
			s.logConflict(err, appt)
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, appt)
	if err != nil {
		s.logConflict(err, appt)
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	s.logger.Info().
		Str("appointment_id", updated.ID).
		Str("status", string(updated.Status)).
		Msg("appointment updated")
	s.notify(domain.EventAppointmentUpdated, updated, actor)

	if patient != nil {
		return &ports.AppointmentDetail{Appointment: updated, Patient: patient}, nil
	}
	return s.withPatient(ctx, updated)
}

// Delete removes an appointment. Cancelling through Update keeps the record instead.
func (s *AppointmentService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	if err := authorize(policy.Request{Actor: actor, Operation: policy.OpDelete}); err != nil {
		return err
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	s.logger.Info().Str("appointment_id", id).Msg("appointment deleted")
	s.notify(domain.EventAppointmentDeleted, appt, actor)
	return nil
}

func (s *AppointmentService) withPatient(ctx context.Context, a *domain.Appointment) (*ports.AppointmentDetail, error) {
	p, err := s.patients.FindByID(ctx, a.PatientID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load appointment patient: %w", err)
	}
	return &ports.AppointmentDetail{Appointment: a, Patient: p}, nil
}

func (s *AppointmentService) withPatients(ctx context.Context, appts []*domain.Appointment) ([]ports.AppointmentDetail, error) {
	ids := make([]string, 0, len(appts))
	seen := make(map[string]struct{}, len(appts))
	for _, a := range appts {
		if _, ok := seen[a.PatientID]; ok {
			continue
		}
		seen[a.PatientID] = struct{}{}
		ids = append(ids, a.PatientID)
	}

	patients, err := s.patients.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load appointment patients: %w", err)
	}

	out := make([]ports.AppointmentDetail, len(appts))
	for i, a := range appts {
		out[i] = ports.AppointmentDetail{Appointment: a, Patient: patients[a.PatientID]}
	}
	return out, nil
}

func (s *AppointmentService) logConflict(err error, a *domain.Appointment) {
	if !errors.Is(err, domain.ErrSlotTaken) {
		return
	}
	s.logger.Warn().
		Str("psychologist_id", a.PsychologistID).
		Time("appointment_date", a.AppointmentDate).
		Msg("appointment conflict")
}

func (s *AppointmentService) notify(t domain.AppointmentEventType, a *domain.Appointment, actor *domain.Actor) {
	if s.notifier == nil {
		return
	}
	ev := domain.AppointmentEvent{
		Type:            t,
		AppointmentID:   a.ID,
		PatientID:       a.PatientID,
		PsychologistID:  a.PsychologistID,
		AppointmentDate: a.AppointmentDate,
		Status:          a.Status,
		OccurredAt:      s.now(),
	}
	if actor != nil {
		ev.ActorID = actor.ID
	}
	s.notifier.Enqueue(ev)
}

// applyAppointmentInput copies the required fields and any optional field
// the caller provided; omitted optional fields keep their stored value.
func applyAppointmentInput(a *domain.Appointment, in ports.AppointmentInput) {
	a.PatientID = in.PatientID
	a.PsychologistID = in.PsychologistID
	a.AppointmentDate = domain.NormalizeSlotTime(in.AppointmentDate)
	a.Duration = in.Duration
	a.Type = in.Type

	switch {
	case in.Status != "":
		a.Status = in.Status
	case a.Status == "":
		a.Status = domain.StatusScheduled
	}
	if in.Notes != "" {
		a.Notes = in.Notes
	}
	if in.Symptoms != nil {
		a.Symptoms = in.Symptoms
	}
	if in.TreatmentPlan != nil {
		a.TreatmentPlan = in.TreatmentPlan
	}
}

// authorize evaluates the policy and returns the matching domain error on rejection.
func authorize(req policy.Request) error {
	return policy.Evaluate(req).Err()
}

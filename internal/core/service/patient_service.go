package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/policy"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

// PatientDeleteRoles may delete patient records.
var PatientDeleteRoles = []domain.Role{domain.RoleAdmin}

type PatientService struct {
	repo   ports.PatientRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewPatientService(repo ports.PatientRepository, logger zerolog.Logger) *PatientService {
	return &PatientService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *PatientService) List(ctx context.Context, actor *domain.Actor) ([]*domain.Patient, error) {
	if err := authorize(policy.Request{Actor: actor, Operation: policy.OpRead}); err != nil {
		return nil, err
	}
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

// Get returns a patient to its owner, a psychologist or an admin.
func (s *PatientService) Get(ctx context.Context, actor *domain.Actor, id string) (*domain.Patient, error) {
	if err := authorize(policy.Request{Actor: actor, Operation: policy.OpRead}); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	if err := authorize(ownedRequest(actor, policy.OpRead, p)); err != nil {
		return nil, err
	}
	return p, nil
}

// Create stores a new patient. A patient-role actor always owns the record it creates.
func (s *PatientService) Create(ctx context.Context, actor *domain.Actor, in ports.PatientInput) (*domain.Patient, error) {
	if err := authorize(policy.Request{Actor: actor, Operation: policy.OpWrite}); err != nil {
		return nil, err
	}

	now := s.now()
	p := &domain.Patient{CreatedAt: now, UpdatedAt: now}
	applyPatientInput(p, in)
	p.UserID = in.UserID
	if actor.Role == domain.RolePatient {
		p.UserID = actor.ID
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.logger.Info().Str("patient_id", created.ID).Str("actor_id", actor.ID).Msg("patient created")
	return created, nil
}

// Update rewrites a patient's demographic fields. Only admins may relink the owner.
func (s *PatientService) Update(ctx context.Context, actor *domain.Actor, id string, in ports.PatientInput) (*domain.Patient, error) {
	if err := authorize(policy.Request{Actor: actor, Operation: policy.OpWrite}); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	if err := authorize(ownedRequest(actor, policy.OpWrite, p)); err != nil {
		return nil, err
	}

	applyPatientInput(p, in)
	if actor.Role == domain.RoleAdmin && in.UserID != "" {
		p.UserID = in.UserID
	}
	p.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}

	s.logger.Info().Str("patient_id", updated.ID).Str("actor_id", actor.ID).Msg("patient updated")
	return updated, nil
}

// Delete hard-deletes a patient record. Gated on PatientDeleteRoles.
func (s *PatientService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	req := policy.Request{
		Actor:        actor,
		Operation:    policy.OpDelete,
		Target:       policy.TargetOwned,
		AllowedRoles: PatientDeleteRoles,
	}
	if err := authorize(req); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}

	s.logger.Info().Str("patient_id", id).Str("actor_id", actor.ID).Msg("patient deleted")
	return nil
}

func ownedRequest(actor *domain.Actor, op policy.Operation, p *domain.Patient) policy.Request {
	return policy.Request{
		Actor:     actor,
		Operation: op,
		Target:    policy.TargetOwned,
		OwnerID:   p.UserID,
	}
}

func applyPatientInput(p *domain.Patient, in ports.PatientInput) {
	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.Email = strings.ToLower(strings.TrimSpace(in.Email))
	p.Phone = in.Phone
	p.DateOfBirth = in.DateOfBirth
	p.Gender = in.Gender
	if in.Address != nil {
		p.Address = in.Address
	}
	if in.EmergencyContact != nil {
		p.EmergencyContact = in.EmergencyContact
	}
	if in.InsuranceInfo != nil {
		p.InsuranceInfo = in.InsuranceInfo
	}
}

package ports

import (
	"context"
	"time"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

// PatientInput is the DTO passed from the transport layer to PatientService.
type PatientInput struct {
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	DateOfBirth      time.Time
	Gender           domain.Gender
	Address          *domain.Address
	EmergencyContact *domain.EmergencyContact
	InsuranceInfo    *domain.InsuranceInfo
	// UserID links the record to an identity. Ignored for patient actors,
	// whose records are always linked to themselves.
	UserID string
}

// PatientService defines use-case operations for patients. Every call takes
// the requesting actor explicitly; nil is anonymous.
type PatientService interface {
	List(ctx context.Context, actor *domain.Actor) ([]*domain.Patient, error)
	Get(ctx context.Context, actor *domain.Actor, id string) (*domain.Patient, error)
	Create(ctx context.Context, actor *domain.Actor, in PatientInput) (*domain.Patient, error)
	Update(ctx context.Context, actor *domain.Actor, id string, in PatientInput) (*domain.Patient, error)
	Delete(ctx context.Context, actor *domain.Actor, id string) error
}

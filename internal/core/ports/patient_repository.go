package ports

import (
	"context"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

// PatientRepository persists patient records. Email uniqueness is enforced
// by the store and surfaces as a domain ConflictError on field "email".
type PatientRepository interface {
	Create(ctx context.Context, p *domain.Patient) (*domain.Patient, error)
	FindByID(ctx context.Context, id string) (*domain.Patient, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Patient, error)
	List(ctx context.Context) ([]*domain.Patient, error)
	Update(ctx context.Context, p *domain.Patient) (*domain.Patient, error)
	Delete(ctx context.Context, id string) error
}

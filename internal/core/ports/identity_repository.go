package ports

import (
	"context"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

// IdentityRepository persists accounts.
type IdentityRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	// FindByGitHubIDOrEmail returns the identity linked to githubID, or failing
	// that the one registered with email. Empty arguments are ignored.
	FindByGitHubIDOrEmail(ctx context.Context, githubID, email string) (*domain.Identity, error)
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	Update(ctx context.Context, identity *domain.Identity) error
}

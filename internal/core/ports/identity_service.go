package ports

import (
	"context"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

// RegisterInput carries a local (password) account registration.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

// IdentityService resolves and manages accounts.
type IdentityService interface {
	// ResolveGitHubLogin links or creates the identity behind an OAuth callback
	// and stamps its last login.
	ResolveGitHubLogin(ctx context.Context, profile domain.ExternalProfile) (*domain.Identity, error)
	Register(ctx context.Context, in RegisterInput) (*domain.Identity, error)
	Login(ctx context.Context, email, password string) (*domain.Identity, error)
	Get(ctx context.Context, id string) (*domain.Identity, error)
	UpdateRole(ctx context.Context, actor *domain.Actor, id string, role domain.Role) (*domain.Identity, error)
}

package ports

import (
	"context"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

// OAuthProvider is the external identity source.
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	// Exchange trades the callback code for the user's profile.
	Exchange(ctx context.Context, code string) (*domain.ExternalProfile, error)
}

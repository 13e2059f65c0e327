package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/policy"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

// IdentityService resolves OAuth logins and manages local accounts.
type IdentityService struct {
	repo   ports.IdentityRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewIdentityService(repo ports.IdentityRepository, logger zerolog.Logger) *IdentityService {
	return &IdentityService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ResolveGitHubLogin finds the identity behind profile by GitHub id or email,
// backfilling the GitHub link when the account was created another way, or
// creates a new patient identity. Any failure is an authentication failure
// and leaves no identity behind.
func (s *IdentityService) ResolveGitHubLogin(ctx context.Context, profile domain.ExternalProfile) (*domain.Identity, error) {
	if profile.ID == "" {
		return nil, domain.NewAuthenticationError("GitHub authentication failed", errors.New("provider returned no user id"))
	}
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	now := s.now()

	existing, err := s.repo.FindByGitHubIDOrEmail(ctx, profile.ID, email)
	switch {
	case err == nil:
		if existing.GitHubID == "" {
			existing.GitHubID = profile.ID
		}
		existing.LastLogin = now
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, domain.NewAuthenticationError("GitHub authentication failed", err)
		}
		s.logger.Info().Str("user_id", existing.ID).Str("provider", "github").Msg("existing user authenticated")
		return existing, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, domain.NewAuthenticationError("GitHub authentication failed", err)
	}

	if email == "" {
		return nil, domain.NewAuthenticationError("GitHub authentication failed", errors.New("GitHub account has no verified email"))
	}

	displayName := profile.DisplayName
	if displayName == "" {
		displayName = profile.Username
	}
	created, err := s.repo.Create(ctx, &domain.Identity{
		GitHubID:     profile.ID,
		AuthProvider: domain.ProviderGitHub,
		Username:     profile.Username,
		Email:        email,
		DisplayName:  displayName,
		ProfileURL:   profile.ProfileURL,
		AvatarURL:    profile.AvatarURL,
		Role:         domain.RolePatient,
		Active:       true,
		LastLogin:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, domain.NewAuthenticationError("GitHub authentication failed", err)
	}

	s.logger.Info().Str("user_id", created.ID).Str("provider", "github").Msg("new user created")
	return created, nil
}

// Register creates a local password account with the patient role.
func (s *IdentityService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || email == "" || in.Password == "" {
		return nil, domain.NewValidationError("username, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := in.DisplayName
	if displayName == "" {
		displayName = in.Username
	}
	now := s.now()
	created, err := s.repo.Create(ctx, &domain.Identity{
		AuthProvider: domain.ProviderLocal,
		Username:     in.Username,
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         domain.RolePatient,
		Active:       true,
		LastLogin:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID).Str("provider", "local").Msg("new user registered")
	return created, nil
}

// Login authenticates a local account and stamps its last login.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if user.PasswordHash == "" || !user.Active {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	user.LastLogin = now
	user.UpdatedAt = now
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return user, nil
}

func (s *IdentityService) Get(ctx context.Context, id string) (*domain.Identity, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateRole changes an identity's role. Admin only.
func (s *IdentityService) UpdateRole(ctx context.Context, actor *domain.Actor, id string, role domain.Role) (*domain.Identity, error) {
	req := policy.Request{
		Actor:        actor,
		Operation:    policy.OpWrite,
		AllowedRoles: []domain.Role{domain.RoleAdmin},
	}
	if err := authorize(req); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("role must be one of: %s, %s, %s", domain.RolePatient, domain.RolePsychologist, domain.RoleAdmin))
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	user.Role = role
	user.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.logger.Info().Str("user_id", id).Str("role", string(role)).Str("actor_id", actor.ID).Msg("role updated")
	return user, nil
}

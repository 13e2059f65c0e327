package domain

import "time"

// Role determines an identity's authorization scope.
type Role string

const (
	RolePatient      Role = "patient"
	RolePsychologist Role = "psychologist"
	RoleAdmin        Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RolePatient, RolePsychologist, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RolePsychologist, RoleAdmin:
		return true
	}
	return false
}

// AuthProvider records how an identity was first created.
type AuthProvider string

const (
	ProviderGitHub AuthProvider = "github"
	ProviderLocal  AuthProvider = "local"
)

// Identity is an authenticated account.
type Identity struct {
	ID           string
	GitHubID     string
	AuthProvider AuthProvider
	Username     string
	Email        string
	DisplayName  string
	ProfileURL   string
	AvatarURL    string
	PasswordHash string
	Role         Role
	Active       bool
	LastLogin    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor returns the projection used for authorization decisions.
func (i *Identity) Actor() *Actor {
	if i == nil {
		return nil
	}
	return &Actor{ID: i.ID, Role: i.Role}
}

// PublicProfile is the subset of an identity safe to return to clients.
type PublicProfile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Role        Role      `json:"role"`
	LastLogin   time.Time `json:"lastLogin"`
}

func (i *Identity) PublicProfile() PublicProfile {
	return PublicProfile{
		ID:          i.ID,
		Username:    i.Username,
		DisplayName: i.DisplayName,
		Email:       i.Email,
		AvatarURL:   i.AvatarURL,
		Role:        i.Role,
		LastLogin:   i.LastLogin,
	}
}

// Actor is the requesting identity as seen by policy and service calls.
// A nil *Actor is anonymous.
type Actor struct {
	ID   string
	Role Role
}

// ExternalProfile is what the external OAuth provider tells us about a user.
type ExternalProfile struct {
	ID          string
	Username    string
	DisplayName string
	Email       string
	ProfileURL  string
	AvatarURL   string
}

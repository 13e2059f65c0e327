// Package policy decides whether an actor may perform an operation on a
// resource. It has no side effects and no knowledge of HTTP; callers pass an
// explicit Request and translate the Decision.
package policy

import (
	"strings"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

type Operation int

const (
	OpRead Operation = iota
	OpWrite
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Target says whether the operation addresses a collection or a single owned resource.
type Target int

const (
	TargetCollection Target = iota
	TargetOwned
)

// Request describes a single authorization question.
type Request struct {
	Actor     *domain.Actor
	Operation Operation
	Target    Target
	// OwnerID is the identity owning the resource; only used for TargetOwned.
	OwnerID string
	// Public allows anonymous access.
	Public bool
	// AllowedRoles, when non-empty, gates the operation on role membership
	// independently of ownership.
	AllowedRoles []domain.Role
}

type Outcome int

const (
	Allow Outcome = iota
	RejectUnauthenticated
	RejectForbidden
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RejectUnauthenticated:
		return "unauthenticated"
	case RejectForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Decision is the result of Evaluate.
type Decision struct {
	Outcome Outcome
	Reason  string
}

func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Err converts a rejection into the matching domain error, or nil on Allow.
func (d Decision) Err() error {
	switch d.Outcome {
	case RejectUnauthenticated:
		return domain.NewAuthenticationError(d.Reason, nil)
	case RejectForbidden:
		return domain.NewForbiddenError(d.Reason)
	}
	return nil
}

const (
	reasonLoginRequired = "Please log in to access this resource"
	reasonOwnOnly       = "You can only access your own resources"
	reasonRoleRequired  = "Insufficient permissions"
)

func allow(reason string) Decision { return Decision{Outcome: Allow, Reason: reason} }

// Evaluate applies the decision table. Rows are checked top to bottom and
// the first match wins.
func Evaluate(r Request) Decision {
	a := r.Actor
	switch {
	case a == nil && r.Public:
		return allow("public")
	case a == nil:
		return Decision{Outcome: RejectUnauthenticated, Reason: reasonLoginRequired}
	case a.Role == domain.RoleAdmin:
		return allow("admin")
	case len(r.AllowedRoles) > 0 && !hasRole(r.AllowedRoles, a.Role):
		return Decision{Outcome: RejectForbidden, Reason: reasonRoleRequired + ": required roles " + joinRoles(r.AllowedRoles)}
	case r.Target == TargetCollection:
		return allow("authenticated")
	case r.Operation == OpDelete:
		return Decision{Outcome: RejectForbidden, Reason: reasonRoleRequired}
	case r.OwnerID != "" && a.ID == r.OwnerID:
		return allow("owner")
	case a.Role == domain.RolePsychologist:
		// No clinician-patient assignment is recorded, so any patient-scoped
		// resource is reachable.
		return allow("psychologist")
	}
	return Decision{Outcome: RejectForbidden, Reason: reasonOwnOnly}
}

func hasRole(roles []domain.Role, r domain.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

func joinRoles(roles []domain.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

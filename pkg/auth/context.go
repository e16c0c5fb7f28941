package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const identityKey contextKey = "identity"

var (
	// ErrUnauthenticated is returned when no Identity exists in the request context.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the identity lacks the role for an action.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrInvalidRole is returned when parsing an unknown role name.
	ErrInvalidRole = errors.New("invalid role")
)

// Role is an account's permission level inside its company.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// ParseRole converts a stored or submitted role name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// Identity is the authenticated caller as seen by every service.
type Identity struct {
	AccountID uuid.UUID
	CompanyID uuid.UUID
	Role      Role
	Superuser bool
}

// WithIdentity returns a new context with the given Identity attached.
// Used by the token and session middleware after validating credentials.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromCtx extracts the authenticated caller from the request context.
func IdentityFromCtx(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.AccountID == uuid.Nil || id.CompanyID == uuid.Nil {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// Require returns ErrForbidden unless the identity holds one of roles.
// Superusers pass every role check.
func (i Identity) Require(roles ...Role) error {
	if i.Superuser {
		return nil
	}
	for _, r := range roles {
		if i.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s", ErrForbidden, i.Role)
}

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func testIdentity(role Role) Identity {
	return Identity{AccountID: uuid.New(), CompanyID: uuid.New(), Role: role}
}

func TestWithIdentity_IdentityFromCtx(t *testing.T) {
	id := testIdentity(RoleOperator)
	ctx := WithIdentity(context.Background(), id)

	got, err := IdentityFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != id {
		t.Fatalf("expected %+v, got %+v", id, got)
	}
}

func TestIdentityFromCtx_EmptyContext(t *testing.T) {
	_, err := IdentityFromCtx(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestIdentityFromCtx_NilIDs(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{Role: RoleAdmin})
	if _, err := IdentityFromCtx(ctx); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for nil ids, got %v", err)
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"admin", "operator", "viewer"} {
		if _, err := ParseRole(s); err != nil {
			t.Errorf("ParseRole(%q): %v", s, err)
		}
	}
	if _, err := ParseRole("owner"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestIdentity_Require(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		roles   []Role
		allowed bool
	}{
		{"admin for admin action", testIdentity(RoleAdmin), []Role{RoleAdmin}, true},
		{"operator for admin action", testIdentity(RoleOperator), []Role{RoleAdmin}, false},
		{"operator for write action", testIdentity(RoleOperator), []Role{RoleAdmin, RoleOperator}, true},
		{"viewer for write action", testIdentity(RoleViewer), []Role{RoleAdmin, RoleOperator}, false},
		{"superuser viewer", Identity{AccountID: uuid.New(), CompanyID: uuid.New(), Role: RoleViewer, Superuser: true}, []Role{RoleAdmin}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Require(tt.roles...)
			if tt.allowed && err != nil {
				t.Fatalf("expected allowed, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/services/account/domain/models"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "simple", username: "alice"},
		{name: "email style", username: "alice@example.com"},
		{name: "demo prefix", username: "demo_bob"},
		{name: "empty", username: "", wantErr: true},
		{name: "space", username: "al ice", wantErr: true},
		{name: "too long", username: strings.Repeat("a", 151), wantErr: true},
		{name: "slash", username: "a/b", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestIsDemoUsername(t *testing.T) {
	if !IsDemoUsername("demo_alice") {
		t.Error("expected demo_alice to be a demo username")
	}
	if IsDemoUsername("alice_demo") {
		t.Error("expected alice_demo not to be a demo username")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("expected error for short password")
	}
	if err := ValidatePassword("long-enough"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateAccountForCreation(t *testing.T) {
	valid := func() *models.Account {
		return models.NewAccount(uuid.New(), "alice", "a@example.com", "hash", auth.RoleOperator)
	}

	tests := []struct {
		name    string
		mutate  func(*models.Account)
		wantErr bool
	}{
		{name: "valid", mutate: func(*models.Account) {}},
		{name: "bad role", mutate: func(a *models.Account) { a.Role = "owner" }, wantErr: true},
		{name: "no company", mutate: func(a *models.Account) { a.CompanyID = uuid.Nil }, wantErr: true},
		{name: "no hash", mutate: func(a *models.Account) { a.PasswordHash = "" }, wantErr: true},
		{name: "bad username", mutate: func(a *models.Account) { a.Username = "a b" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid()
			tt.mutate(a)
			err := ValidateAccountForCreation(a)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := ValidateAccountForCreation(nil); err == nil {
		t.Error("expected error for nil account")
	}
}

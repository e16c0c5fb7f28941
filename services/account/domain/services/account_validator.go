// Package services contains stateless domain services for the account bounded context.
package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/services/account/domain/models"
)

const (
	maxUsernameLength = 150
	minPasswordLength = 8
)

// ValidateUsername enforces the login name rules:
//   - 1 to 150 characters
//   - letters, digits and . @ + - _ only
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", maxUsernameLength)
	}
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(".@+-_", r) {
			continue
		}
		return fmt.Errorf("username contains invalid character %q", r)
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// IsDemoUsername reports whether username follows the demo account convention.
func IsDemoUsername(username string) bool {
	return strings.HasPrefix(username, models.DemoUsernamePrefix)
}

// ValidateAccountForCreation performs cross-field checks on a constructed Account.
func ValidateAccountForCreation(a *models.Account) error {
	if a == nil {
		return fmt.Errorf("account cannot be nil")
	}
	if err := ValidateUsername(a.Username); err != nil {
		return err
	}
	if !a.Role.Valid() {
		return fmt.Errorf("role %q is not valid", a.Role)
	}
	if a.CompanyID == uuid.Nil {
		return fmt.Errorf("company_id must be set")
	}
	if a.PasswordHash == "" {
		return fmt.Errorf("password hash must be set")
	}
	return nil
}

package domain

import "errors"

// Sentinel errors for the account domain. Use errors.Is() to check these.
var (
	// ErrAccountNotFound indicates the requested account does not exist or is outside the caller's company.
	ErrAccountNotFound = errors.New("account not found")

	// ErrCompanyNotFound indicates the requested company does not exist.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrAccountAlreadyExists indicates the username is taken.
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrCompanyAlreadyExists indicates a company with the same name and domain, or the same domain, exists.
	ErrCompanyAlreadyExists = errors.New("company already exists")

	// ErrInvalidAccount indicates the account violates domain constraints.
	ErrInvalidAccount = errors.New("invalid account")

	// ErrCompanyRequired is returned when a demo account is provisioned without a company.
	ErrCompanyRequired = errors.New("company is required for demo accounts")

	// ErrInvalidCredentials is returned for an unknown username or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountBlocked is returned when a blocked account tries to authenticate.
	ErrAccountBlocked = errors.New("account blocked")
)

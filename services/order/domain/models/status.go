package models

import (
	"fmt"

	orderdomain "github.com/ghuser/orderdesk/services/order/domain"
)

// Status is an order's position in its lifecycle.
//
//	pending ──claim──▶ processing ──▶ approved
//	                       │
//	                       └────────▶ failed ──retry (processed only)──▶ processing
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusApproved   Status = "approved"
	StatusFailed     Status = "failed"
)

// ParseStatus converts a stored or submitted status name.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", orderdomain.ErrInvalidOrder, s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusApproved, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether s ends a processing attempt.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusFailed
}

func (s Status) String() string { return string(s) }

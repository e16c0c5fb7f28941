package models

import (
	"fmt"

	exportdomain "github.com/ghuser/orderdesk/services/export/domain"
)

// Status is an export's generation state. It shares no values or type with
// the order lifecycle.
type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// ParseStatus converts a stored status name.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusReady, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", exportdomain.ErrInvalidExport, s)
}

func (s Status) String() string { return string(s) }

// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/httpx"
	accountdomain "github.com/ghuser/orderdesk/services/account/domain"
	exportdomain "github.com/ghuser/orderdesk/services/export/domain"
	inventorydomain "github.com/ghuser/orderdesk/services/inventory/domain"
	orderdomain "github.com/ghuser/orderdesk/services/order/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors, whose
// message is replaced by the status text.
func WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	httpx.JSONError(w, status, httpx.PublicMessage(err, status))
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, accountdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized // 401
	case errors.Is(err, auth.ErrForbidden),
		errors.Is(err, accountdomain.ErrAccountBlocked):
		return http.StatusForbidden // 403
	case errors.Is(err, accountdomain.ErrAccountNotFound),
		errors.Is(err, accountdomain.ErrCompanyNotFound),
		errors.Is(err, inventorydomain.ErrProductNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, exportdomain.ErrExportNotFound),
		errors.Is(err, exportdomain.ErrExportFileMissing):
		return http.StatusNotFound // 404
	case errors.Is(err, accountdomain.ErrAccountAlreadyExists),
		errors.Is(err, accountdomain.ErrCompanyAlreadyExists),
		errors.Is(err, inventorydomain.ErrProductAlreadyExists),
		errors.Is(err, orderdomain.ErrOrderNotClaimable),
		errors.Is(err, orderdomain.ErrStaleClaim):
		return http.StatusConflict // 409
	case errors.Is(err, orderdomain.ErrOrderNotRetryable),
		errors.Is(err, orderdomain.ErrOrderNotPending),
		errors.Is(err, orderdomain.ErrInvalidTransition),
		errors.Is(err, exportdomain.ErrExportNotReady):
		return http.StatusBadRequest // 400
	case errors.Is(err, auth.ErrInvalidRole),
		errors.Is(err, accountdomain.ErrInvalidAccount),
		errors.Is(err, accountdomain.ErrCompanyRequired),
		errors.Is(err, inventorydomain.ErrInvalidProduct),
		errors.Is(err, inventorydomain.ErrNegativeStock),
		errors.Is(err, orderdomain.ErrInvalidOrder),
		errors.Is(err, orderdomain.ErrInsufficientStock),
		errors.Is(err, exportdomain.ErrInvalidExport):
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}

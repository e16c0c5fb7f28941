package errhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/orderdesk/pkg/auth"
	accountdomain "github.com/ghuser/orderdesk/services/account/domain"
	exportdomain "github.com/ghuser/orderdesk/services/export/domain"
	inventorydomain "github.com/ghuser/orderdesk/services/inventory/domain"
	orderdomain "github.com/ghuser/orderdesk/services/order/domain"
)

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ErrUnauthenticated", auth.ErrUnauthenticated, http.StatusUnauthorized},
		{"ErrInvalidCredentials", accountdomain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"ErrAccountBlocked", accountdomain.ErrAccountBlocked, http.StatusForbidden},
		{"wrapped ErrForbidden", fmt.Errorf("%w: role viewer", auth.ErrForbidden), http.StatusForbidden},
		{"ErrOrderNotFound", orderdomain.ErrOrderNotFound, http.StatusNotFound},
		{"ErrExportFileMissing", exportdomain.ErrExportFileMissing, http.StatusNotFound},
		{"ErrProductAlreadyExists", inventorydomain.ErrProductAlreadyExists, http.StatusConflict},
		{"ErrOrderNotRetryable", orderdomain.ErrOrderNotRetryable, http.StatusBadRequest},
		{"ErrExportNotReady", exportdomain.ErrExportNotReady, http.StatusBadRequest},
		{"wrapped ErrInsufficientStock", fmt.Errorf("create order: %w", orderdomain.ErrInsufficientStock), http.StatusUnprocessableEntity},
		{"ErrCompanyRequired", accountdomain.ErrCompanyRequired, http.StatusUnprocessableEntity},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestWriteError_Body(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"domain message passes through", orderdomain.ErrOrderNotFound, orderdomain.ErrOrderNotFound.Error()},
		{"wrapped context kept", fmt.Errorf("%w: role viewer", auth.ErrForbidden), auth.ErrForbidden.Error() + ": role viewer"},
		{"driver error hidden", errors.New("pq: password authentication failed for user orderdesk"), http.StatusText(http.StatusInternalServerError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Fatalf("unexpected Content-Type %q", ct)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("response body is not valid JSON: %v", err)
			}
			if body["error"] != tt.want {
				t.Fatalf("expected error %q, got %q", tt.want, body["error"])
			}
		})
	}
}

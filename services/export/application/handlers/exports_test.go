package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/logger"
	"github.com/ghuser/orderdesk/pkg/storage"
	appsvcs "github.com/ghuser/orderdesk/services/export/application/services"
	exportdomain "github.com/ghuser/orderdesk/services/export/domain"
	"github.com/ghuser/orderdesk/services/export/domain/models"
	"github.com/ghuser/orderdesk/services/export/domain/repositories"
)

// stubExports serves Get and Create; the generator paths are not routed here.
type stubExports struct {
	repositories.ExportRepository
	byID map[uuid.UUID]*models.Export
}

func (s *stubExports) Get(_ context.Context, scope auth.Scope, id uuid.UUID) (*models.Export, error) {
	e, ok := s.byID[id]
	if !ok || (scope.CompanyID.Valid && scope.CompanyID.UUID != e.CompanyID) {
		return nil, exportdomain.ErrExportNotFound
	}
	return e, nil
}

func (s *stubExports) Create(_ context.Context, e *models.Export) error {
	s.byID[e.ID] = e
	return nil
}

type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type nopQueue struct{}

func (nopQueue) EnqueueGeneration(context.Context, uuid.UUID, []uuid.UUID) error { return nil }

func newTestRouter(t *testing.T, exports map[uuid.UUID]*models.Export, id auth.Identity) (http.Handler, *storage.LocalStore) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	h := NewExportsHandler(&appsvcs.Services{
		Exports: appsvcs.NewExportService(&stubExports{byID: exports}, nopQueue{}, passTx{}, store, logger.Nop()),
	}, logger.Nop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithIdentity(req.Context(), id)))
		})
	})
	r.Post("/exports", h.Request)
	r.Get("/exports/{id}", h.Get)
	r.Get("/exports/{id}/download", h.Download)
	return r, store
}

func TestExportsHandler(t *testing.T) {
	id := auth.Identity{AccountID: uuid.New(), CompanyID: uuid.New(), Role: auth.RoleOperator}

	pending := models.NewExport(id.CompanyID, id.AccountID)
	missing := models.NewExport(id.CompanyID, id.AccountID)
	missing.Status, missing.FileName = models.StatusReady, "exports/gone.csv"
	ready := models.NewExport(id.CompanyID, id.AccountID)
	ready.Status, ready.FileName = models.StatusReady, "exports/export_1_ready.csv"
	foreign := models.NewExport(uuid.New(), uuid.New())

	exports := map[uuid.UUID]*models.Export{}
	for _, e := range []*models.Export{pending, missing, ready, foreign} {
		exports[e.ID] = e
	}
	router, store := newTestRouter(t, exports, id)
	content := "Reference Code,Product SKU,Quantity,Status,Created By\n"
	if err := store.Save(context.Background(), ready.FileName, strings.NewReader(content), int64(len(content)), "text/csv"); err != nil {
		t.Fatalf("save: %v", err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "request", method: http.MethodPost, path: "/exports", body: `{"order_ids":["` + uuid.NewString() + `"]}`, want: http.StatusAccepted},
		{name: "request without orders", method: http.MethodPost, path: "/exports", body: `{"order_ids":[]}`, want: http.StatusUnprocessableEntity},
		{name: "get", method: http.MethodGet, path: "/exports/" + pending.ID.String(), want: http.StatusOK},
		{name: "get foreign", method: http.MethodGet, path: "/exports/" + foreign.ID.String(), want: http.StatusNotFound},
		{name: "bad id", method: http.MethodGet, path: "/exports/nope", want: http.StatusBadRequest},
		{name: "download pending", method: http.MethodGet, path: "/exports/" + pending.ID.String() + "/download", want: http.StatusBadRequest},
		{name: "download missing file", method: http.MethodGet, path: "/exports/" + missing.ID.String() + "/download", want: http.StatusNotFound},
		{name: "download ready", method: http.MethodGet, path: "/exports/" + ready.ID.String() + "/download", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exports/"+ready.ID.String()+"/download", nil))
	if w.Body.String() != content {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "export_1_ready.csv") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
}

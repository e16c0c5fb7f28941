package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/logger"
	"github.com/ghuser/orderdesk/pkg/storage"
	"github.com/ghuser/orderdesk/services/export/domain/models"
)

type generatorFixture struct {
	repo      *fakeExports
	store     *storage.LocalStore
	gen       *Generator
	companyID uuid.UUID
	orderIDs  []uuid.UUID
}

func newGeneratorFixture(t *testing.T) *generatorFixture {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	repo := newFakeExports()
	f := &generatorFixture{repo: repo, store: store, companyID: uuid.New()}
	f.gen = NewGenerator(repo, repo, store, nil, logger.Nop())

	tick := time.Unix(1700000000, 0)
	f.gen.now = func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}

	for i, sku := range []string{"SKU-A", "SKU-B, large", "SKU-C"} {
		f.orderIDs = append(f.orderIDs, repo.addOrder(f.companyID, models.Row{
			ReferenceCode: uuid.New(),
			ProductSKU:    sku,
			Quantity:      i + 1,
			Status:        "approved",
			CreatedBy:     "alice",
		}))
	}
	repo.addOrder(uuid.New(), models.Row{ReferenceCode: uuid.New(), ProductSKU: "FOREIGN"})
	return f
}

func (f *generatorFixture) newExport(t *testing.T) *models.Export {
	t.Helper()
	e := models.NewExport(f.companyID, uuid.New())
	if err := f.repo.Create(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}
	return e
}

func (f *generatorFixture) read(t *testing.T, name string) string {
	t.Helper()
	rc, err := f.store.Open(context.Background(), name)
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	defer rc.Close() //nolint:errcheck
	b, _ := io.ReadAll(rc)
	return string(b)
}

func (f *generatorFixture) export(t *testing.T, id uuid.UUID) *models.Export {
	t.Helper()
	e, err := f.repo.Get(context.Background(), auth.Scope{}, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	return e
}

func TestGenerator_WritesDeterministicCSV(t *testing.T) {
	f := newGeneratorFixture(t)
	ctx := context.Background()

	first, second := f.newExport(t), f.newExport(t)
	ids := f.orderIDs
	reversed := []uuid.UUID{ids[2], ids[1], ids[0]}
	if err := f.gen.Generate(ctx, first.ID, ids); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := f.gen.Generate(ctx, second.ID, reversed); err != nil {
		t.Fatalf("generate: %v", err)
	}

	a, b := f.export(t, first.ID), f.export(t, second.ID)
	if a.Status != models.StatusReady || b.Status != models.StatusReady {
		t.Fatalf("expected both ready, got %s and %s", a.Status, b.Status)
	}
	if a.FileName == b.FileName {
		t.Fatal("each run must write its own file")
	}
	if !strings.HasPrefix(a.FileName, "exports/export_") || !strings.HasSuffix(a.FileName, "_"+first.ID.String()+".csv") {
		t.Fatalf("unexpected file name %q", a.FileName)
	}

	contentA, contentB := f.read(t, a.FileName), f.read(t, b.FileName)
	if contentA != contentB {
		t.Fatalf("same order set produced different files:\n%s\n---\n%s", contentA, contentB)
	}
	lines := strings.Split(strings.TrimSpace(contentA), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "Reference Code,Product SKU,Quantity,Status,Created By" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[2], `"SKU-B, large",2,approved,alice`) {
		t.Fatalf("expected quoted sku in %q", lines[2])
	}
}

func TestGenerator_OperatorExportListsOwnOrdersOnly(t *testing.T) {
	f := newGeneratorFixture(t)
	ctx := context.Background()
	operator := uuid.New()
	own := f.repo.addOrderBy(f.companyID, operator, models.Row{
		ReferenceCode: uuid.New(),
		ProductSKU:    "SKU-OWN",
		Quantity:      1,
		Status:        "pending",
		CreatedBy:     "bob",
	})

	e := models.NewExport(f.companyID, operator)
	e.LimitToCreator(operator)
	if err := f.repo.Create(ctx, e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.gen.Generate(ctx, e.ID, append([]uuid.UUID{own}, f.orderIDs...)); err != nil {
		t.Fatalf("generate: %v", err)
	}

	got := f.export(t, e.ID)
	if got.Status != models.StatusReady {
		t.Fatalf("expected ready, got %s %q", got.Status, got.Note)
	}
	lines := strings.Split(strings.TrimSpace(f.read(t, got.FileName)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "SKU-OWN") {
		t.Fatalf("expected only the operator's order, got %q", lines)
	}
}

func TestGenerator_ReadyExportIsUntouched(t *testing.T) {
	f := newGeneratorFixture(t)
	ctx := context.Background()
	e := f.newExport(t)

	if err := f.gen.Generate(ctx, e.ID, f.orderIDs); err != nil {
		t.Fatalf("generate: %v", err)
	}
	before := f.export(t, e.ID)

	if err := f.gen.Generate(ctx, e.ID, f.orderIDs[:1]); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	after := f.export(t, e.ID)
	if after.FileName != before.FileName || after.Status != models.StatusReady {
		t.Fatalf("ready export changed: %+v -> %+v", before, after)
	}
	if n := strings.Count(f.read(t, after.FileName), "\n"); n != 4 {
		t.Fatalf("original file replaced, has %d lines", n)
	}
}

func TestGenerator_FailuresConvergeToFailed(t *testing.T) {
	t.Run("row query", func(t *testing.T) {
		f := newGeneratorFixture(t)
		e := f.newExport(t)
		f.repo.rowsErr = errDiskFull

		if err := f.gen.Generate(context.Background(), e.ID, f.orderIDs); err != nil {
			t.Fatalf("generation failure must be recorded, not returned: %v", err)
		}
		got := f.export(t, e.ID)
		if got.Status != models.StatusFailed || !strings.Contains(got.Note, errDiskFull.Error()) {
			t.Fatalf("expected failed with note, got %s %q", got.Status, got.Note)
		}
	})

	t.Run("storage", func(t *testing.T) {
		f := newGeneratorFixture(t)
		e := f.newExport(t)
		f.gen.store = failingStore{}

		if err := f.gen.Generate(context.Background(), e.ID, f.orderIDs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := f.export(t, e.ID)
		if got.Status != models.StatusFailed || got.Note == "" || got.FileName != "" {
			t.Fatalf("expected failed without file, got %+v", got)
		}
	})

	t.Run("failed export can be regenerated", func(t *testing.T) {
		f := newGeneratorFixture(t)
		e := f.newExport(t)
		_ = f.repo.MarkFailed(context.Background(), e.ID, "earlier failure")

		if err := f.gen.Generate(context.Background(), e.ID, f.orderIDs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := f.export(t, e.ID)
		if got.Status != models.StatusReady || got.Note != "" {
			t.Fatalf("expected ready with cleared note, got %s %q", got.Status, got.Note)
		}
	})
}

func TestGenerator_UnknownExportIsDropped(t *testing.T) {
	f := newGeneratorFixture(t)
	if err := f.gen.Generate(context.Background(), uuid.New(), f.orderIDs); err != nil {
		t.Fatalf("expected drop, got %v", err)
	}
}

type failingStore struct{}

func (failingStore) Save(context.Context, string, io.Reader, int64, string) error { return errDiskFull }
func (failingStore) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("unused")
}

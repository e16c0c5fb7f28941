package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/logger"
	"github.com/ghuser/orderdesk/services/account/domain/models"
)

func TestBlockingService_BlocksOnThirdProcessedFailure(t *testing.T) {
	a := models.NewAccount(uuid.New(), "alice", "", "hash", auth.RoleOperator)
	repo := newFakeAccounts(a)
	svc := NewBlockingService(repo, nil, logger.Nop())
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		blocked, err := svc.RecordProcessedFailure(ctx, a.ID)
		if err != nil {
			t.Fatalf("failure %d: unexpected error: %v", i, err)
		}
		if blocked {
			t.Fatalf("failure %d must not block", i)
		}
	}
	got, _ := repo.GetByID(ctx, a.ID)
	if got.FailedOrdersCount != 2 || got.IsBlocked {
		t.Fatalf("after two failures expected count=2 blocked=false, got count=%d blocked=%v", got.FailedOrdersCount, got.IsBlocked)
	}

	blocked, err := svc.RecordProcessedFailure(ctx, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !blocked {
		t.Fatal("third failure must block")
	}
	got, _ = repo.GetByID(ctx, a.ID)
	if got.FailedOrdersCount != 3 || !got.IsBlocked {
		t.Fatalf("expected count=3 blocked=true, got count=%d blocked=%v", got.FailedOrdersCount, got.IsBlocked)
	}
}

func TestBlockingService_AdminOperationsRequireAdmin(t *testing.T) {
	svc := NewBlockingService(newFakeAccounts(), nil, logger.Nop())
	ctx := context.Background()

	for _, role := range []auth.Role{auth.RoleOperator, auth.RoleViewer} {
		id := auth.Identity{AccountID: uuid.New(), CompanyID: uuid.New(), Role: role}
		if _, err := svc.BlockOverThreshold(ctx, id); !errors.Is(err, auth.ErrForbidden) {
			t.Errorf("%s BlockOverThreshold: expected ErrForbidden, got %v", role, err)
		}
		if _, err := svc.ResetFailures(ctx, id, nil); !errors.Is(err, auth.ErrForbidden) {
			t.Errorf("%s ResetFailures: expected ErrForbidden, got %v", role, err)
		}
		if _, err := svc.Unblock(ctx, id, nil); !errors.Is(err, auth.ErrForbidden) {
			t.Errorf("%s Unblock: expected ErrForbidden, got %v", role, err)
		}
	}
}

func TestBlockingService_BulkOperationsStayInCompany(t *testing.T) {
	company := uuid.New()
	mine := models.NewAccount(company, "mine", "", "hash", auth.RoleOperator)
	mine.FailedOrdersCount = 4
	theirs := models.NewAccount(uuid.New(), "theirs", "", "hash", auth.RoleOperator)
	theirs.FailedOrdersCount = 4
	repo := newFakeAccounts(mine, theirs)
	svc := NewBlockingService(repo, nil, logger.Nop())
	admin := auth.Identity{AccountID: uuid.New(), CompanyID: company, Role: auth.RoleAdmin}
	ctx := context.Background()

	blocked, err := svc.BlockOverThreshold(ctx, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocked) != 1 || blocked[0] != mine.ID {
		t.Fatalf("expected only own account blocked, got %v", blocked)
	}

	n, err := svc.ResetFailures(ctx, admin, []uuid.UUID{mine.ID, theirs.ID})
	if err != nil || n != 1 {
		t.Fatalf("ResetFailures: n=%d err=%v", n, err)
	}
	n, err = svc.Unblock(ctx, admin, []uuid.UUID{mine.ID})
	if err != nil || n != 1 {
		t.Fatalf("Unblock: n=%d err=%v", n, err)
	}

	if blocked, _ := svc.BlockOverThreshold(ctx, admin); len(blocked) != 0 {
		t.Fatalf("reset account must not be re-blocked, got %v", blocked)
	}

	got, _ := repo.GetByID(ctx, theirs.ID)
	if got.IsBlocked || got.FailedOrdersCount != 4 {
		t.Fatal("account of another company was modified")
	}
}

func TestBlockingService_ReconcileBlocksAcrossCompanies(t *testing.T) {
	a := models.NewAccount(uuid.New(), "a", "", "hash", auth.RoleOperator)
	a.FailedOrdersCount = 3
	b := models.NewAccount(uuid.New(), "b", "", "hash", auth.RoleOperator)
	b.FailedOrdersCount = 5
	c := models.NewAccount(uuid.New(), "c", "", "hash", auth.RoleOperator)
	c.FailedOrdersCount = 2
	svc := NewBlockingService(newFakeAccounts(a, b, c), nil, logger.Nop())

	n, err := svc.ReconcileBlocks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 accounts blocked, got %d", n)
	}
	if n, _ := svc.ReconcileBlocks(context.Background()); n != 0 {
		t.Fatalf("second run must be a no-op, got %d", n)
	}
}

package models

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	orderdomain "github.com/ghuser/orderdesk/services/order/domain"
)

func TestNewOrder(t *testing.T) {
	product := ProductSnapshot{ID: uuid.New(), CompanyID: uuid.New(), StockQuantity: 5, IsActive: true}
	creator := uuid.New()
	o := NewOrder(product, creator, 2)

	if o.Status != StatusPending || o.HasBeenProcessed || o.Attempts != 0 {
		t.Fatalf("new order must be pending and unprocessed: %+v", o)
	}
	if o.CompanyID != product.CompanyID {
		t.Error("company must come from the product")
	}
	if o.ReferenceCode == uuid.Nil || o.ReferenceCode == o.ID {
		t.Error("expected a distinct reference code")
	}
	if err := o.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
	o.Quantity = 0
	if err := o.Validate(); err == nil {
		t.Error("expected error for zero quantity")
	}
}

func TestOrder_Eligibility(t *testing.T) {
	tests := []struct {
		status     Status
		processed  bool
		canProcess bool
		canRetry   bool
	}{
		{StatusPending, false, true, false},
		{StatusProcessing, false, false, false},
		{StatusProcessing, true, false, false},
		{StatusApproved, true, false, false},
		{StatusFailed, true, false, true},
		{StatusFailed, false, false, false},
	}
	for _, tt := range tests {
		o := &Order{Status: tt.status, HasBeenProcessed: tt.processed}
		if got := o.CanProcess(); got != tt.canProcess {
			t.Errorf("%s/processed=%v CanProcess = %v", tt.status, tt.processed, got)
		}
		if got := o.CanRetry(); got != tt.canRetry {
			t.Errorf("%s/processed=%v CanRetry = %v", tt.status, tt.processed, got)
		}
		if got := o.Claimable(0); got != (tt.canProcess || tt.canRetry) {
			t.Errorf("%s/processed=%v Claimable = %v", tt.status, tt.processed, got)
		}
	}
}

func TestOrder_ClaimableAtAttempt(t *testing.T) {
	o := &Order{Status: StatusFailed, HasBeenProcessed: true, Attempts: 1}
	if o.Claimable(0) {
		t.Error("a task from before the first claim must not reclaim a processed failure")
	}
	if !o.Claimable(1) {
		t.Error("a retry published at the current attempt must claim")
	}
	if o.Claimable(2) {
		t.Error("an attempt ahead of the order must not claim")
	}
}

func TestOrder_CorrectStatus(t *testing.T) {
	tests := []struct {
		name       string
		from       Status
		processed  bool
		to         Status
		wantCharge bool
		wantErr    bool
	}{
		{name: "processed approved to failed", from: StatusApproved, processed: true, to: StatusFailed, wantCharge: true},
		{name: "unprocessed pending to failed", from: StatusPending, to: StatusFailed},
		{name: "failed to approved", from: StatusFailed, processed: true, to: StatusApproved},
		{name: "unprocessed failed back to pending", from: StatusFailed, to: StatusPending},
		{name: "processed back to pending", from: StatusFailed, processed: true, to: StatusPending, wantErr: true},
		{name: "held by worker", from: StatusProcessing, to: StatusFailed, wantErr: true},
		{name: "to processing", from: StatusPending, to: StatusProcessing, wantErr: true},
		{name: "no change", from: StatusApproved, processed: true, to: StatusApproved, wantErr: true},
		{name: "unknown", from: StatusPending, to: Status("shipped"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.from, HasBeenProcessed: tt.processed}
			charge, err := o.CorrectStatus(tt.to)
			if tt.wantErr {
				if !errors.Is(err, orderdomain.ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if charge != tt.wantCharge {
				t.Errorf("charge = %v, want %v", charge, tt.wantCharge)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus("approved"); err != nil || s != StatusApproved {
		t.Fatalf("ParseStatus(approved) = %v, %v", s, err)
	}
	if _, err := ParseStatus("ready"); !errors.Is(err, orderdomain.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}
	if !StatusFailed.IsTerminal() || StatusProcessing.IsTerminal() {
		t.Error("IsTerminal mismatch")
	}
}

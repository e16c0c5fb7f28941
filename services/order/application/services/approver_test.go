package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"
)

func TestRandomApprover_Rate(t *testing.T) {
	tests := []struct {
		rate     float64
		min, max int
	}{
		{rate: 0, min: 0, max: 0},
		{rate: 1, min: 1000, max: 1000},
		{rate: 0.5, min: 400, max: 600},
	}
	for _, tt := range tests {
		a := NewRandomApprover(tt.rate, 0, 0, rand.New(rand.NewPCG(1, 2)))
		approved := 0
		for i := 0; i < 1000; i++ {
			ok, err := a.Approve(context.Background(), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok {
				approved++
			}
		}
		if approved < tt.min || approved > tt.max {
			t.Errorf("rate %v: approved %d of 1000, want [%d,%d]", tt.rate, approved, tt.min, tt.max)
		}
	}
}

func TestRandomApprover_Deterministic(t *testing.T) {
	a := NewRandomApprover(0.5, 0, 0, rand.New(rand.NewPCG(7, 7)))
	b := NewRandomApprover(0.5, 0, 0, rand.New(rand.NewPCG(7, 7)))
	for i := 0; i < 50; i++ {
		x, _ := a.Approve(context.Background(), nil)
		y, _ := b.Approve(context.Background(), nil)
		if x != y {
			t.Fatalf("same seed diverged at %d", i)
		}
	}
}

func TestRandomApprover_HonoursContext(t *testing.T) {
	a := NewRandomApprover(1, time.Hour, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Approve(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

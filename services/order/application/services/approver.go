package services

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ghuser/orderdesk/services/order/domain/models"
)

// RandomApprover simulates the external approval service: it waits a random
// latency in [minLatency, maxLatency] and approves with probability rate.
type RandomApprover struct {
	mu         sync.Mutex
	rng        *rand.Rand
	rate       float64
	minLatency time.Duration
	maxLatency time.Duration
}

// NewRandomApprover returns a RandomApprover. A nil rng is seeded randomly.
func NewRandomApprover(rate float64, minLatency, maxLatency time.Duration, rng *rand.Rand) *RandomApprover {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if maxLatency < minLatency {
		maxLatency = minLatency
	}
	return &RandomApprover{rng: rng, rate: rate, minLatency: minLatency, maxLatency: maxLatency}
}

// Approve implements Approver. It returns ctx.Err() when ctx ends during the wait.
func (a *RandomApprover) Approve(ctx context.Context, _ *models.Order) (bool, error) {
	a.mu.Lock()
	delay := a.minLatency
	if span := a.maxLatency - a.minLatency; span > 0 {
		delay += time.Duration(a.rng.Int64N(int64(span) + 1))
	}
	roll := a.rng.Float64()
	a.mu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-t.C:
		}
	}
	return roll < a.rate, nil
}

package domain

import "errors"

// Sentinel errors for the order domain. Use errors.Is() to check these.
var (
	// ErrOrderNotFound indicates the order does not exist or is outside the caller's scope.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidOrder indicates the order violates domain constraints.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInsufficientStock is the advisory creation-time check failing.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrOrderNotRetryable is returned when retrying an order that is not a processed failure.
	ErrOrderNotRetryable = errors.New("order is not retryable")

	// ErrOrderNotPending is returned when asking to process an order that already left pending.
	ErrOrderNotPending = errors.New("order is not pending")

	// ErrOrderNotClaimable means another worker holds the order or it is terminal.
	ErrOrderNotClaimable = errors.New("order is not claimable")

	// ErrStaleClaim means a terminal write lost to a newer claim or to the sweeper.
	ErrStaleClaim = errors.New("order claim is stale")

	// ErrInvalidTransition is returned for a status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
)

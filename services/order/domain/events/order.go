package events

import "github.com/google/uuid"

// TopicProcessOrder carries one processing task per message.
const TopicProcessOrder = "orders.process"

// ProcessOrderTask asks a worker to run the processor on one order. Attempt
// is the order's claim count when the task was published; the claim only
// succeeds while it still matches, so a duplicate delivery, or a second task
// for the same order, finds the order unclaimable.
type ProcessOrderTask struct {
	OrderID uuid.UUID `json:"order_id"`
	Attempt int       `json:"attempt"`
}

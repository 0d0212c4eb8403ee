package orders

import (
	"time"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
)

// allowTransition is the directed graph of legal status moves. The flow is
// forward-only; cancellation is reachable from every non-terminal state.
var allowTransition = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:   {enums.OrderStatusApproved, enums.OrderStatusCancelled},
	enums.OrderStatusApproved:  {enums.OrderStatusOrdered, enums.OrderStatusCancelled},
	enums.OrderStatusOrdered:   {enums.OrderStatusReceived, enums.OrderStatusCancelled},
	enums.OrderStatusReceived:  {},
	enums.OrderStatusCancelled: {},
}

// CanTransition reports whether from -> to is a legal status move.
// Re-asserting the current status is a no-op and always allowed.
func CanTransition(from, to enums.OrderStatus) bool {
	if from == to {
		return true
	}
	allowed, ok := allowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// transitionChanges returns the column updates for a status move,
// stamping the date column on first entry into a dated state.
func transitionChanges(order *models.Order, to enums.OrderStatus, now time.Time) map[string]any {
	changes := map[string]any{"status": to}
	switch to {
	case enums.OrderStatusOrdered:
		if order.OrderedDate == nil {
			changes["ordered_date"] = now
		}
	case enums.OrderStatusReceived:
		if order.ReceivedDate == nil {
			changes["received_date"] = now
		}
	case enums.OrderStatusCancelled:
		if order.CancelledAt == nil {
			changes["cancelled_at"] = now
		}
	}
	return changes
}

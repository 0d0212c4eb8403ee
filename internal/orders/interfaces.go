package orders

import (
	"context"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
)

// Sequences hands out strictly increasing numbers per named counter. The
// production implementation is Redis-backed so concurrent creates never
// collide on an order number.
type Sequences interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Catalog resolves parts when order lines are added. Satisfied by the
// parts repository.
type Catalog interface {
	FindByID(ctx context.Context, id int64) (*models.Part, error)
}

// Notifier pushes order status changes to the order's creator.
// Implementations must not fail the triggering mutation.
type Notifier interface {
	NotifyOrderStatus(ctx context.Context, order *models.Order)
}

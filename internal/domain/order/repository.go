package order

import "context"

// UpdateParams is a partial update: the zero Status leaves the status
// untouched, a nil ReadableID leaves the readable id untouched.
type UpdateParams struct {
	ID         string
	Status     Status
	ReadableID *int
}

type Repository interface {
	GetOrders(ctx context.Context) ([]Order, error)
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	// GetOrderCreatedByID resolves the order only while it still sits in the
	// created state; anything past that returns ErrNotFound.
	GetOrderCreatedByID(ctx context.Context, id string) (*Order, error)
	GetOrdersByStatus(ctx context.Context, status Status) ([]Order, error)
	CreateOrder(ctx context.Context, order *Order) error
	UpdateOrder(ctx context.Context, params UpdateParams) (*Order, error)
	// CountValidOrdersToday counts orders that received a readable id today;
	// it feeds the per-day readable id sequence.
	CountValidOrdersToday(ctx context.Context) (int64, error)
}

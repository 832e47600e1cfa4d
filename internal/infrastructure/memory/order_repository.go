package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/totemfood/orders/internal/domain/order"
)

// OrderRepository keeps orders in insertion order so listings preserve the
// relative order the storage returned them in.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	ids    []string
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*domain.Order)}
}

func (r *OrderRepository) GetOrders(ctx context.Context) ([]domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Order, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, *r.orders[id].Clone())
	}
	return out, nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *OrderRepository) GetOrderCreatedByID(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok || order.Status != domain.StatusCreated {
		return nil, domain.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *OrderRepository) GetOrdersByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Order, 0)
	for _, id := range r.ids {
		if order := r.orders[id]; order.Status == status {
			out = append(out, *order.Clone())
		}
	}
	return out, nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order repository: duplicate id %s", order.ID)
	}
	r.orders[order.ID] = order.Clone()
	r.ids = append(r.ids, order.ID)
	return nil
}

func (r *OrderRepository) UpdateOrder(ctx context.Context, params domain.UpdateParams) (*domain.Order, error) {
	_ = ctx
	if params.ID == "" {
		return nil, domain.ErrMissingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[params.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if params.Status != "" {
		order.Status = params.Status
	}
	if params.ReadableID != nil {
		v := *params.ReadableID
		order.ReadableID = &v
	}
	order.Touch()
	return order.Clone(), nil
}

func (r *OrderRepository) CountValidOrdersToday(ctx context.Context) (int64, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var count int64
	for _, order := range r.orders {
		if order.ReadableID != nil && !order.UpdatedAt.Before(today) {
			count++
		}
	}
	return count, nil
}

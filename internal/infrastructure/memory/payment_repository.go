package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/totemfood/orders/internal/domain/payment"
)

// PaymentOrderRepository enforces the one-payment-order-per-order invariant
// the same way the SQL adapter's unique index does.
type PaymentOrderRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.PaymentOrder
	byOrder map[string]string
	ids     []string
}

func NewPaymentOrderRepository() *PaymentOrderRepository {
	return &PaymentOrderRepository{
		byID:    make(map[string]*domain.PaymentOrder),
		byOrder: make(map[string]string),
	}
}

func (r *PaymentOrderRepository) GetPaymentOrders(ctx context.Context) ([]domain.PaymentOrder, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.PaymentOrder, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, *r.byID[id].Clone())
	}
	return out, nil
}

func (r *PaymentOrderRepository) GetPaymentOrderByID(ctx context.Context, id string) (*domain.PaymentOrder, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	po, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return po.Clone(), nil
}

func (r *PaymentOrderRepository) GetPaymentOrderByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byOrder[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *PaymentOrderRepository) CreatePaymentOrder(ctx context.Context, po *domain.PaymentOrder) error {
	_ = ctx
	if po == nil || po.ID == "" {
		return fmt.Errorf("payment order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byOrder[po.OrderID]; exists {
		return domain.ErrAlreadyExists
	}
	r.byID[po.ID] = po.Clone()
	r.byOrder[po.OrderID] = po.ID
	r.ids = append(r.ids, po.ID)
	return nil
}

func (r *PaymentOrderRepository) UpdatePaymentOrder(ctx context.Context, po *domain.PaymentOrder) error {
	_ = ctx
	if po == nil || po.ID == "" {
		return fmt.Errorf("payment order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[po.ID]; !exists {
		return domain.ErrNotFound
	}
	r.byID[po.ID] = po.Clone()
	return nil
}

package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/totemfood/orders/internal/domain/cart"
)

type CartRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
	ids   []string
}

func NewCartRepository() *CartRepository {
	return &CartRepository{items: make(map[string]*domain.Item)}
}

func (r *CartRepository) AddItem(ctx context.Context, item *domain.Item) error {
	_ = ctx
	if item == nil || item.ID == "" {
		return fmt.Errorf("cart repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("cart repository: duplicate id %s", item.ID)
	}
	clone := *item
	r.items[item.ID] = &clone
	r.ids = append(r.ids, item.ID)
	return nil
}

func (r *CartRepository) UpdateItem(ctx context.Context, item *domain.Item) error {
	_ = ctx
	if item == nil || item.ID == "" {
		return fmt.Errorf("cart repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; !exists {
		return domain.ErrNotFound
	}
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
	return nil
}

func (r *CartRepository) GetItemByID(ctx context.Context, id string) (*domain.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *CartRepository) GetItemsByOrderID(ctx context.Context, orderID string) ([]domain.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Item, 0)
	for _, id := range r.ids {
		if item := r.items[id]; item.OrderID == orderID {
			out = append(out, *item)
		}
	}
	return out, nil
}

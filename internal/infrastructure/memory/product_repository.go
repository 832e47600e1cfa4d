package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/totemfood/orders/internal/domain/product"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	ids      []string
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[string]*domain.Product)}
}

func (r *ProductRepository) GetProducts(ctx context.Context) ([]domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, *r.products[id])
	}
	return out, nil
}

func (r *ProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *ProductRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	_ = ctx
	if product == nil || product.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; exists {
		return fmt.Errorf("product repository: duplicate id %s", product.ID)
	}
	clone := *product
	r.products[product.ID] = &clone
	r.ids = append(r.ids, product.ID)
	return nil
}

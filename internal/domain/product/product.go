package product

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("product: not found")
	ErrInvalidPrice = errors.New("product: price must be greater than zero")
	ErrMissingName  = errors.New("product: name is required")
)

// Product is a catalog entry. Price is in cents.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func New(id, name, description string, price int64) (*Product, error) {
	if name == "" {
		return nil, ErrMissingName
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	now := time.Now().UTC()
	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type Repository interface {
	GetProducts(ctx context.Context) ([]Product, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, product *Product) error
}

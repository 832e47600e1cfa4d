package cart

import "context"

type Repository interface {
	AddItem(ctx context.Context, item *Item) error
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, id string) error
	GetItemByID(ctx context.Context, id string) (*Item, error)
	GetItemsByOrderID(ctx context.Context, orderID string) ([]Item, error)
}

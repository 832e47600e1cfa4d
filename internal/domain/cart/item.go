package cart

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("cart: item not found")
	ErrInvalidQuantity = errors.New("cart: quantity must be between 1 and 99")
)

const (
	MinQuantity = 1
	MaxQuantity = 99
)

// Item is a single product line attached to an order. Value is the price
// snapshot taken when the line was added or last repriced; it is never
// recomputed from the stored product afterwards.
type Item struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	Details   string    `json:"details,omitempty"`
	Value     int64     `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ValidateQuantity(quantity int) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

// New builds a line item pricing quantity against the current unit price
// (cents).
func New(id, orderID, productID string, quantity int, details string, unitPrice int64) (*Item, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Item{
		ID:        id,
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		Details:   details,
		Value:     int64(quantity) * unitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Reprice recomputes the value snapshot from a new quantity and the product's
// current unit price. The item's productID stays authoritative.
func (i *Item) Reprice(quantity int, unitPrice int64) error {
	if err := ValidateQuantity(quantity); err != nil {
		return err
	}
	i.Quantity = quantity
	i.Value = int64(quantity) * unitPrice
	i.UpdatedAt = time.Now().UTC()
	return nil
}

package gormstore

import (
	"context"
	"errors"

	domain "github.com/totemfood/orders/internal/domain/cart"
	"gorm.io/gorm"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) AddItem(ctx context.Context, item *domain.Item) error {
	row := cartItemToRow(item)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *CartRepository) UpdateItem(ctx context.Context, item *domain.Item) error {
	row := cartItemToRow(item)
	result := r.db.WithContext(ctx).
		Model(&cartItemRow{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"quantity":   row.Quantity,
			"details":    row.Details,
			"value":      row.Value,
			"updated_at": row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&cartItemRow{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CartRepository) GetItemByID(ctx context.Context, id string) (*domain.Item, error) {
	var row cartItemRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	item := cartItemToDomain(row)
	return &item, nil
}

func (r *CartRepository) GetItemsByOrderID(ctx context.Context, orderID string) ([]domain.Item, error) {
	var rows []cartItemRow
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, cartItemToDomain(row))
	}
	return out, nil
}

func cartItemToRow(item *domain.Item) cartItemRow {
	return cartItemRow{
		ID:        item.ID,
		OrderID:   item.OrderID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Details:   item.Details,
		Value:     item.Value,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func cartItemToDomain(row cartItemRow) domain.Item {
	return domain.Item{
		ID:        row.ID,
		OrderID:   row.OrderID,
		ProductID: row.ProductID,
		Quantity:  row.Quantity,
		Details:   row.Details,
		Value:     row.Value,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

package gormstore

import (
	"context"
	"errors"
	"time"

	domain "github.com/totemfood/orders/internal/domain/order"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) GetOrders(ctx context.Context) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	return ordersToDomain(rows), nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	var row orderRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return orderToDomain(row), nil
}

func (r *OrderRepository) GetOrderCreatedByID(ctx context.Context, id string) (*domain.Order, error) {
	var row orderRow
	err := r.db.WithContext(ctx).
		First(&row, "id = ? AND status = ?", id, string(domain.StatusCreated)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return orderToDomain(row), nil
}

func (r *OrderRepository) GetOrdersByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	var rows []orderRow
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return ordersToDomain(rows), nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	row := orderRow{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Status:     string(order.Status),
		ReadableID: order.ReadableID,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *OrderRepository) UpdateOrder(ctx context.Context, params domain.UpdateParams) (*domain.Order, error) {
	var row orderRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", params.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if params.Status != "" {
		row.Status = string(params.Status)
	}
	if params.ReadableID != nil {
		v := *params.ReadableID
		row.ReadableID = &v
	}
	row.UpdatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, err
	}
	return orderToDomain(row), nil
}

func (r *OrderRepository) CountValidOrdersToday(ctx context.Context) (int64, error) {
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&orderRow{}).
		Where("readable_id IS NOT NULL AND updated_at >= ?", startOfDay).
		Count(&count).Error
	return count, err
}

func orderToDomain(row orderRow) *domain.Order {
	return &domain.Order{
		ID:         row.ID,
		CustomerID: row.CustomerID,
		Status:     domain.Status(row.Status),
		ReadableID: row.ReadableID,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func ordersToDomain(rows []orderRow) []domain.Order {
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, *orderToDomain(row))
	}
	return out
}

package gormstore

import (
	"context"
	"errors"

	domain "github.com/totemfood/orders/internal/domain/payment"
	"gorm.io/gorm"
)

type PaymentOrderRepository struct {
	db *gorm.DB
}

func NewPaymentOrderRepository(db *gorm.DB) *PaymentOrderRepository {
	return &PaymentOrderRepository{db: db}
}

func (r *PaymentOrderRepository) GetPaymentOrders(ctx context.Context) ([]domain.PaymentOrder, error) {
	var rows []paymentOrderRow
	if err := r.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.PaymentOrder, 0, len(rows))
	for _, row := range rows {
		out = append(out, paymentOrderToDomain(row))
	}
	return out, nil
}

func (r *PaymentOrderRepository) GetPaymentOrderByID(ctx context.Context, id string) (*domain.PaymentOrder, error) {
	var row paymentOrderRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	po := paymentOrderToDomain(row)
	return &po, nil
}

func (r *PaymentOrderRepository) GetPaymentOrderByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	var row paymentOrderRow
	err := r.db.WithContext(ctx).First(&row, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	po := paymentOrderToDomain(row)
	return &po, nil
}

// CreatePaymentOrder relies on the unique index on order_id to resolve the
// race between two concurrent payment attempts for the same order; the loser
// gets ErrAlreadyExists, never a raw driver error.
func (r *PaymentOrderRepository) CreatePaymentOrder(ctx context.Context, po *domain.PaymentOrder) error {
	row := paymentOrderRow{
		ID:        po.ID,
		OrderID:   po.OrderID,
		Status:    string(po.Status),
		Amount:    po.Amount,
		QRData:    po.QRData,
		PaidAt:    po.PaidAt,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *PaymentOrderRepository) UpdatePaymentOrder(ctx context.Context, po *domain.PaymentOrder) error {
	result := r.db.WithContext(ctx).
		Model(&paymentOrderRow{}).
		Where("id = ?", po.ID).
		Updates(map[string]any{
			"status":     string(po.Status),
			"paid_at":    po.PaidAt,
			"updated_at": po.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func paymentOrderToDomain(row paymentOrderRow) domain.PaymentOrder {
	return domain.PaymentOrder{
		ID:        row.ID,
		OrderID:   row.OrderID,
		Status:    domain.Status(row.Status),
		Amount:    row.Amount,
		QRData:    row.QRData,
		PaidAt:    row.PaidAt,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

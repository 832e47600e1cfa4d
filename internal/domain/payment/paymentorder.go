package payment

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound      = errors.New("payment: payment order not found")
	ErrAlreadyExists = errors.New("payment: payment order already exists for order")
	ErrOrderNotFound = errors.New("payment: order not found")
	ErrNotPending    = errors.New("payment: payment order status other than pending")
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusAuthorized  Status = "authorized"
	StatusInProcess   Status = "in_process"
	StatusInMediation Status = "in_mediation"
	StatusRejected    Status = "rejected"
	StatusCancelled   Status = "cancelled"
	StatusRefunded    Status = "refunded"
	StatusChargedBack Status = "charged_back"
)

// PaymentOrder records a single payment attempt for exactly one order. At most
// one payment order exists per order id; the repository enforces that with a
// unique index. Amount is in cents.
type PaymentOrder struct {
	ID        string     `json:"id"`
	OrderID   string     `json:"orderId"`
	Status    Status     `json:"status"`
	Amount    int64      `json:"amount"`
	QRData    string     `json:"qrData,omitempty"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func New(id, orderID string, amount int64, qrData string) *PaymentOrder {
	now := time.Now().UTC()
	return &PaymentOrder{
		ID:        id,
		OrderID:   orderID,
		Status:    StatusPending,
		Amount:    amount,
		QRData:    qrData,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Approve settles a pending payment order.
func (p *PaymentOrder) Approve(paidAt time.Time) error {
	if p.Status != StatusPending {
		return ErrNotPending
	}
	p.Status = StatusApproved
	p.PaidAt = &paidAt
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel voids a pending payment order.
func (p *PaymentOrder) Cancel() error {
	if p.Status != StatusPending {
		return ErrNotPending
	}
	p.Status = StatusCancelled
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (p *PaymentOrder) Clone() *PaymentOrder {
	if p == nil {
		return nil
	}
	clone := *p
	if p.PaidAt != nil {
		v := *p.PaidAt
		clone.PaidAt = &v
	}
	return &clone
}

type Repository interface {
	GetPaymentOrders(ctx context.Context) ([]PaymentOrder, error)
	GetPaymentOrderByID(ctx context.Context, id string) (*PaymentOrder, error)
	GetPaymentOrderByOrderID(ctx context.Context, orderID string) (*PaymentOrder, error)
	// CreatePaymentOrder returns ErrAlreadyExists when the unique index on
	// order id rejects the insert.
	CreatePaymentOrder(ctx context.Context, paymentOrder *PaymentOrder) error
	UpdatePaymentOrder(ctx context.Context, paymentOrder *PaymentOrder) error
}

// GatewayError carries the provider-supplied detail and HTTP status hint for a
// failed gateway call.
type GatewayError struct {
	Details    string
	StatusCode int
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway: %s (status %d)", e.Details, e.StatusCode)
}

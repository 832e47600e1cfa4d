package payment

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	appOrder "github.com/totemfood/orders/internal/application/order"
	domcart "github.com/totemfood/orders/internal/domain/cart"
	domcustomer "github.com/totemfood/orders/internal/domain/customer"
	domorder "github.com/totemfood/orders/internal/domain/order"
	domain "github.com/totemfood/orders/internal/domain/payment"
	domproduct "github.com/totemfood/orders/internal/domain/product"
	"github.com/totemfood/orders/internal/infrastructure/memory"
)

type fakeIDs struct{}

func (fakeIDs) NewID() string { return uuid.NewString() }

type fakeCustomerAPI struct{}

func (fakeCustomerAPI) GetCustomers(ctx context.Context) ([]domcustomer.Customer, error) {
	return nil, nil
}

func (fakeCustomerAPI) GetCustomerByID(ctx context.Context, id string) (*domcustomer.Customer, error) {
	return nil, nil
}

type fakeGateway struct {
	lastRequest *domain.QRRequest
	err         error
}

func (g *fakeGateway) CreateQRPayment(ctx context.Context, req domain.QRRequest) (*domain.QRResponse, error) {
	g.lastRequest = &req
	if g.err != nil {
		return nil, g.err
	}
	return &domain.QRResponse{QRData: "qr-payload", InStoreOrderID: uuid.NewString()}, nil
}

type fixture struct {
	svc      *Service
	orders   *memory.OrderRepository
	carts    *memory.CartRepository
	products *memory.ProductRepository
	payments *memory.PaymentOrderRepository
	gateway  *fakeGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	orders := memory.NewOrderRepository()
	carts := memory.NewCartRepository()
	products := memory.NewProductRepository()
	payments := memory.NewPaymentOrderRepository()
	gateway := &fakeGateway{}

	orderSvc := appOrder.NewService(orders, carts, fakeCustomerAPI{}, payments, fakeIDs{}, nil)
	svc := NewService(payments, orderSvc, orders, carts, products, gateway, fakeIDs{}, nil)
	return &fixture{
		svc:      svc,
		orders:   orders,
		carts:    carts,
		products: products,
		payments: payments,
		gateway:  gateway,
	}
}

// seedPayableOrder creates an order in created status with a single cart line
// worth 2 x 1500 cents.
func (f *fixture) seedPayableOrder(t *testing.T) *domorder.Order {
	t.Helper()
	ctx := context.Background()

	product, err := domproduct.New(uuid.NewString(), "Burger", "", 1500)
	if err != nil {
		t.Fatalf("product.New() error = %v", err)
	}
	if err := f.products.CreateProduct(ctx, product); err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}

	order := domorder.New(uuid.NewString(), "")
	if err := f.orders.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	item, err := domcart.New(uuid.NewString(), order.ID, product.ID, 2, "", product.Price)
	if err != nil {
		t.Fatalf("cart.New() error = %v", err)
	}
	if err := f.carts.AddItem(ctx, item); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	return order
}

func TestMakePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedPayableOrder(t)

	po, err := f.svc.MakePayment(ctx, order.ID)
	if err != nil {
		t.Fatalf("MakePayment() error = %v", err)
	}
	if po.Status != domain.StatusPending {
		t.Errorf("MakePayment().Status = %s, want pending", po.Status)
	}
	if po.Amount != 3000 {
		t.Errorf("MakePayment().Amount = %d, want 3000", po.Amount)
	}
	if po.QRData != "qr-payload" {
		t.Errorf("MakePayment().QRData = %q, want qr-payload", po.QRData)
	}

	req := f.gateway.lastRequest
	if req == nil {
		t.Fatal("gateway was not called")
	}
	if req.ExternalReference != order.ID {
		t.Errorf("QRRequest.ExternalReference = %s, want %s", req.ExternalReference, order.ID)
	}
	if req.TotalAmount != 3000 {
		t.Errorf("QRRequest.TotalAmount = %d, want 3000", req.TotalAmount)
	}
	if len(req.Items) != 1 || req.Items[0].Quantity != 2 || req.Items[0].UnitPrice != 1500 {
		t.Errorf("QRRequest.Items = %+v, want one line of 2 x 1500", req.Items)
	}

	stored, err := f.payments.GetPaymentOrderByOrderID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetPaymentOrderByOrderID() error = %v", err)
	}
	if stored.ID != po.ID {
		t.Errorf("stored payment order id = %s, want %s", stored.ID, po.ID)
	}
}

func TestMakePaymentOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedPayableOrder(t)

	if _, err := f.svc.MakePayment(ctx, order.ID); err != nil {
		t.Fatalf("MakePayment() error = %v", err)
	}
	if _, err := f.svc.MakePayment(ctx, order.ID); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("MakePayment(second) error = %v, want ErrAlreadyExists", err)
	}
}

func TestMakePaymentOrderMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.MakePayment(ctx, uuid.NewString()); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("MakePayment(missing order) error = %v, want ErrOrderNotFound", err)
	}

	// an order past created status cannot be paid for either
	order := f.seedPayableOrder(t)
	if _, err := f.orders.UpdateOrder(ctx, domorder.UpdateParams{ID: order.ID, Status: domorder.StatusReceived}); err != nil {
		t.Fatalf("UpdateOrder() error = %v", err)
	}
	if _, err := f.svc.MakePayment(ctx, order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("MakePayment(received order) error = %v, want ErrOrderNotFound", err)
	}
}

func TestMakePaymentGatewayFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedPayableOrder(t)

	f.gateway.err = &domain.GatewayError{Details: "Error: bad_request, Message: invalid token", StatusCode: http.StatusBadRequest}

	_, err := f.svc.MakePayment(ctx, order.ID)
	var gerr *domain.GatewayError
	if !errors.As(err, &gerr) {
		t.Fatalf("MakePayment(gateway failure) error = %v, want GatewayError", err)
	}
	if gerr.StatusCode != http.StatusBadRequest {
		t.Errorf("GatewayError.StatusCode = %d, want 400", gerr.StatusCode)
	}

	// no payment order may survive a failed gateway call
	if _, err := f.payments.GetPaymentOrderByOrderID(ctx, order.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetPaymentOrderByOrderID() error = %v, want ErrNotFound", err)
	}
}

func notification(state domain.NotificationState, orderID string) domain.Notification {
	return domain.Notification{
		ID:                uuid.NewString(),
		State:             state,
		ExternalReference: orderID,
		Amount:            3000,
	}
}

func TestProcessNotificationFinished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedPayableOrder(t)

	if _, err := f.svc.MakePayment(ctx, order.ID); err != nil {
		t.Fatalf("MakePayment() error = %v", err)
	}
	if err := f.svc.ProcessNotification(ctx, notification(domain.StateFinished, order.ID)); err != nil {
		t.Fatalf("ProcessNotification(FINISHED) error = %v", err)
	}

	po, err := f.payments.GetPaymentOrderByOrderID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetPaymentOrderByOrderID() error = %v", err)
	}
	if po.Status != domain.StatusApproved {
		t.Errorf("payment order status = %s, want approved", po.Status)
	}
	if po.PaidAt == nil {
		t.Error("payment order PaidAt = nil, want settlement time")
	}

	got, err := f.orders.GetOrderByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrderByID() error = %v", err)
	}
	if got.Status != domorder.StatusReceived {
		t.Errorf("order status = %s, want received", got.Status)
	}
	if got.ReadableID == nil || *got.ReadableID != 1 {
		t.Errorf("order ReadableID = %v, want 1", got.ReadableID)
	}
}

func TestProcessNotificationAssignsSequentialReadableIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.seedPayableOrder(t)
	second := f.seedPayableOrder(t)

	for _, order := range []*domorder.Order{first, second} {
		if _, err := f.svc.MakePayment(ctx, order.ID); err != nil {
			t.Fatalf("MakePayment() error = %v", err)
		}
		if err := f.svc.ProcessNotification(ctx, notification(domain.StateFinished, order.ID)); err != nil {
			t.Fatalf("ProcessNotification() error = %v", err)
		}
	}

	got, err := f.orders.GetOrderByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetOrderByID() error = %v", err)
	}
	if got.ReadableID == nil || *got.ReadableID != 2 {
		t.Errorf("second order ReadableID = %v, want 2", got.ReadableID)
	}
}

func TestProcessNotificationCanceled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedPayableOrder(t)

	if _, err := f.svc.MakePayment(ctx, order.ID); err != nil {
		t.Fatalf("MakePayment() error = %v", err)
	}
	if err := f.svc.ProcessNotification(ctx, notification(domain.StateCanceled, order.ID)); err != nil {
		t.Fatalf("ProcessNotification(CANCELED) error = %v", err)
	}

	po, err := f.payments.GetPaymentOrderByOrderID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetPaymentOrderByOrderID() error = %v", err)
	}
	if po.Status != domain.StatusCancelled {
		t.Errorf("payment order status = %s, want cancelled", po.Status)
	}

	got, err := f.orders.GetOrderByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrderByID() error = %v", err)
	}
	if got.Status != domorder.StatusCanceled {
		t.Errorf("order status = %s, want canceled", got.Status)
	}
	if got.ReadableID != nil {
		t.Errorf("canceled order ReadableID = %v, want nil", got.ReadableID)
	}
}

func TestProcessNotificationConfirmationRequired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedPayableOrder(t)

	if _, err := f.svc.MakePayment(ctx, order.ID); err != nil {
		t.Fatalf("MakePayment() error = %v", err)
	}
	if err := f.svc.ProcessNotification(ctx, notification(domain.StateConfirmationRequired, order.ID)); err != nil {
		t.Fatalf("ProcessNotification(CONFIRMATION_REQUIRED) error = %v", err)
	}

	// nothing may move
	po, err := f.payments.GetPaymentOrderByOrderID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetPaymentOrderByOrderID() error = %v", err)
	}
	if po.Status != domain.StatusPending {
		t.Errorf("payment order status = %s, want pending", po.Status)
	}
}

func TestProcessNotificationFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedPayableOrder(t)

	if _, err := f.svc.MakePayment(ctx, order.ID); err != nil {
		t.Fatalf("MakePayment() error = %v", err)
	}
	if err := f.svc.ProcessNotification(ctx, notification(domain.StateFinished, order.ID)); err != nil {
		t.Fatalf("ProcessNotification(FINISHED) error = %v", err)
	}

	var nerr *domain.NotificationError

	tests := []struct {
		name string
		n    domain.Notification
	}{
		{name: "unknown state", n: notification("PAUSED", order.ID)},
		{name: "unknown payment order", n: notification(domain.StateFinished, uuid.NewString())},
		{name: "replayed finish", n: notification(domain.StateFinished, order.ID)},
		{name: "cancel after settle", n: notification(domain.StateCanceled, order.ID)},
		{name: "missing reference", n: notification(domain.StateFinished, "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.ProcessNotification(ctx, tt.n)
			if !errors.As(err, &nerr) {
				t.Errorf("ProcessNotification() error = %v, want NotificationError", err)
			}
		})
	}
}

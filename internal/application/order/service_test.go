package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	domcart "github.com/totemfood/orders/internal/domain/cart"
	domcustomer "github.com/totemfood/orders/internal/domain/customer"
	domain "github.com/totemfood/orders/internal/domain/order"
	"github.com/totemfood/orders/internal/infrastructure/memory"
)

type fakeIDs struct{}

func (fakeIDs) NewID() string { return uuid.NewString() }

type fakeCustomerAPI struct {
	customers []domcustomer.Customer
}

func (f *fakeCustomerAPI) GetCustomers(ctx context.Context) ([]domcustomer.Customer, error) {
	return f.customers, nil
}

func (f *fakeCustomerAPI) GetCustomerByID(ctx context.Context, id string) (*domcustomer.Customer, error) {
	for i := range f.customers {
		if f.customers[i].ID == id {
			return &f.customers[i], nil
		}
	}
	return nil, nil
}

func newTestService(t *testing.T) (*Service, *memory.OrderRepository, *memory.CartRepository, *fakeCustomerAPI) {
	t.Helper()
	orders := memory.NewOrderRepository()
	carts := memory.NewCartRepository()
	payments := memory.NewPaymentOrderRepository()
	customers := &fakeCustomerAPI{}
	svc := NewService(orders, carts, customers, payments, fakeIDs{}, nil)
	return svc, orders, carts, customers
}

func seedOrder(t *testing.T, repo *memory.OrderRepository, status domain.Status) *domain.Order {
	t.Helper()
	order := domain.New(uuid.NewString(), "")
	if err := repo.CreateOrder(context.Background(), order); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if status != domain.StatusCreated {
		if _, err := repo.UpdateOrder(context.Background(), domain.UpdateParams{ID: order.ID, Status: status}); err != nil {
			t.Fatalf("UpdateOrder() error = %v", err)
		}
		order.Status = status
	}
	return order
}

func TestListOrdersKitchenPriority(t *testing.T) {
	svc, orders, _, _ := newTestService(t)
	ctx := context.Background()

	created := seedOrder(t, orders, domain.StatusCreated)
	finished := seedOrder(t, orders, domain.StatusFinished)
	ready := seedOrder(t, orders, domain.StatusReady)
	received := seedOrder(t, orders, domain.StatusReceived)
	preparing := seedOrder(t, orders, domain.StatusPreparation)

	views, err := svc.ListOrders(ctx, "")
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}

	want := []string{ready.ID, preparing.ID, received.ID, created.ID, finished.ID}
	if len(views) != len(want) {
		t.Fatalf("ListOrders() returned %d orders, want %d", len(views), len(want))
	}
	for i, id := range want {
		if views[i].ID != id {
			t.Errorf("ListOrders()[%d].ID = %s (status %s), want %s", i, views[i].ID, views[i].Status, id)
		}
	}
}

func TestListOrdersPriorityTiesAreStable(t *testing.T) {
	svc, orders, _, _ := newTestService(t)
	ctx := context.Background()

	first := seedOrder(t, orders, domain.StatusReady)
	second := seedOrder(t, orders, domain.StatusReady)
	third := seedOrder(t, orders, domain.StatusReady)

	views, err := svc.ListOrders(ctx, "")
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	want := []string{first.ID, second.ID, third.ID}
	for i, id := range want {
		if views[i].ID != id {
			t.Errorf("ListOrders()[%d].ID = %s, want %s", i, views[i].ID, id)
		}
	}
}

func TestListOrdersStatusFilter(t *testing.T) {
	svc, orders, _, _ := newTestService(t)
	ctx := context.Background()

	seedOrder(t, orders, domain.StatusCreated)
	ready := seedOrder(t, orders, domain.StatusReady)

	views, err := svc.ListOrders(ctx, "ready")
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(views) != 1 || views[0].ID != ready.ID {
		t.Fatalf("ListOrders(ready) = %v, want single order %s", views, ready.ID)
	}

	if _, err := svc.ListOrders(ctx, "bogus"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("ListOrders(bogus) error = %v, want ErrInvalidStatus", err)
	}
}

func TestListOrdersEnrichesCustomers(t *testing.T) {
	svc, orders, _, customers := newTestService(t)
	ctx := context.Background()

	customerID := uuid.NewString()
	customers.customers = []domcustomer.Customer{{ID: customerID, Name: "Ana"}}

	order := domain.New(uuid.NewString(), customerID)
	if err := orders.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	views, err := svc.ListOrders(ctx, "")
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if views[0].Customer == nil || views[0].Customer.Name != "Ana" {
		t.Errorf("ListOrders() customer = %v, want Ana", views[0].Customer)
	}
}

func TestGetOrderByID(t *testing.T) {
	svc, orders, _, _ := newTestService(t)
	ctx := context.Background()

	order := seedOrder(t, orders, domain.StatusCreated)

	got, err := svc.GetOrderByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrderByID() error = %v", err)
	}
	if got.ID != order.ID {
		t.Errorf("GetOrderByID().ID = %s, want %s", got.ID, order.ID)
	}

	if _, err := svc.GetOrderByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrInvalidID) {
		t.Errorf("GetOrderByID(not-a-uuid) error = %v, want ErrInvalidID", err)
	}
	if _, err := svc.GetOrderByID(ctx, uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetOrderByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestGetOrderCreatedByID(t *testing.T) {
	svc, orders, _, _ := newTestService(t)
	ctx := context.Background()

	ready := seedOrder(t, orders, domain.StatusReady)
	if _, err := svc.GetOrderCreatedByID(ctx, ready.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetOrderCreatedByID(ready order) error = %v, want ErrNotFound", err)
	}

	created := seedOrder(t, orders, domain.StatusCreated)
	got, err := svc.GetOrderCreatedByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetOrderCreatedByID() error = %v", err)
	}
	if got.Status != domain.StatusCreated {
		t.Errorf("GetOrderCreatedByID().Status = %s, want created", got.Status)
	}
}

func TestCreateOrder(t *testing.T) {
	svc, orders, _, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "customer-1")
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if order.Status != domain.StatusCreated {
		t.Errorf("CreateOrder().Status = %s, want created", order.Status)
	}
	if order.ReadableID != nil {
		t.Errorf("CreateOrder().ReadableID = %v, want nil", order.ReadableID)
	}

	anon, err := svc.CreateOrder(ctx, "")
	if err != nil {
		t.Fatalf("CreateOrder(anonymous) error = %v", err)
	}
	stored, err := orders.GetOrderByID(ctx, anon.ID)
	if err != nil {
		t.Fatalf("GetOrderByID() error = %v", err)
	}
	if stored.CustomerID != "" {
		t.Errorf("anonymous order CustomerID = %q, want empty", stored.CustomerID)
	}
}

func TestUpdateOrderValidation(t *testing.T) {
	svc, orders, _, _ := newTestService(t)
	ctx := context.Background()

	received := seedOrder(t, orders, domain.StatusReceived)

	tests := []struct {
		name    string
		input   UpdateOrderInput
		wantErr error
	}{
		{
			name:    "missing id",
			input:   UpdateOrderInput{Status: "ready"},
			wantErr: domain.ErrMissingID,
		},
		{
			name:    "unknown status",
			input:   UpdateOrderInput{ID: received.ID, Status: "shipped"},
			wantErr: domain.ErrInvalidStatus,
		},
		{
			name:    "backward transition",
			input:   UpdateOrderInput{ID: received.ID, Status: "created"},
			wantErr: domain.ErrInvalidTransition,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.UpdateOrder(ctx, tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("UpdateOrder() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateOrderTransitions(t *testing.T) {
	svc, orders, _, _ := newTestService(t)
	ctx := context.Background()

	order := seedOrder(t, orders, domain.StatusReceived)

	got, err := svc.UpdateOrder(ctx, UpdateOrderInput{ID: order.ID, Status: "preparation"})
	if err != nil {
		t.Fatalf("UpdateOrder(preparation) error = %v", err)
	}
	if got.Status != domain.StatusPreparation {
		t.Errorf("UpdateOrder().Status = %s, want preparation", got.Status)
	}

	// cancel is allowed from any non-terminal status
	got, err = svc.UpdateOrder(ctx, UpdateOrderInput{ID: order.ID, Status: "canceled"})
	if err != nil {
		t.Fatalf("UpdateOrder(canceled) error = %v", err)
	}
	if got.Status != domain.StatusCanceled {
		t.Errorf("UpdateOrder().Status = %s, want canceled", got.Status)
	}

	if _, err := svc.UpdateOrder(ctx, UpdateOrderInput{ID: order.ID, Status: "ready"}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("UpdateOrder(canceled -> ready) error = %v, want ErrInvalidTransition", err)
	}
}

func TestOrderTotalValue(t *testing.T) {
	svc, orders, carts, _ := newTestService(t)
	ctx := context.Background()

	order := seedOrder(t, orders, domain.StatusCreated)

	first, err := domcart.New(uuid.NewString(), order.ID, "prod-1", 2, "", 500)
	if err != nil {
		t.Fatalf("cart.New() error = %v", err)
	}
	second, err := domcart.New(uuid.NewString(), order.ID, "prod-2", 1, "", 1250)
	if err != nil {
		t.Fatalf("cart.New() error = %v", err)
	}
	if err := carts.AddItem(ctx, first); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if err := carts.AddItem(ctx, second); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	total, err := svc.OrderTotalValue(ctx, order.ID)
	if err != nil {
		t.Fatalf("OrderTotalValue() error = %v", err)
	}
	if total != 2250 {
		t.Errorf("OrderTotalValue() = %d, want 2250", total)
	}
}

func TestOrderTotalValueEmptyCart(t *testing.T) {
	svc, orders, _, _ := newTestService(t)
	ctx := context.Background()

	order := seedOrder(t, orders, domain.StatusCreated)
	if _, err := svc.OrderTotalValue(ctx, order.ID); !errors.Is(err, domain.ErrNoItems) {
		t.Errorf("OrderTotalValue(empty cart) error = %v, want ErrNoItems", err)
	}
	if _, err := svc.OrderTotalValue(ctx, ""); !errors.Is(err, domain.ErrMissingID) {
		t.Errorf("OrderTotalValue(\"\") error = %v, want ErrMissingID", err)
	}
}

package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	domcart "github.com/totemfood/orders/internal/domain/cart"
	domcustomer "github.com/totemfood/orders/internal/domain/customer"
	domain "github.com/totemfood/orders/internal/domain/order"
	dompayment "github.com/totemfood/orders/internal/domain/payment"
	"github.com/totemfood/orders/internal/observability"
	"github.com/totemfood/orders/internal/observability/logctx"
)

const componentOrderService = "order_service"

type IDGenerator interface {
	NewID() string
}

// View is an order joined with its customer and payment data for read
// endpoints. Enrichment fields stay nil when the collaborators have nothing.
type View struct {
	domain.Order
	Customer *domcustomer.Customer    `json:"customer,omitempty"`
	Payment  *dompayment.PaymentOrder `json:"payment,omitempty"`
}

// Service owns the order lifecycle: creation, status updates, listing and
// totals. Enrichment data comes from the customer API and the payment order
// repository.
type Service struct {
	orders    domain.Repository
	carts     domcart.Repository
	customers domcustomer.API
	payments  dompayment.Repository
	ids       IDGenerator
	log       observability.Logger

	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewService(
	orders domain.Repository,
	carts domcart.Repository,
	customers domcustomer.API,
	payments dompayment.Repository,
	ids IDGenerator,
	obs observability.Observability,
) *Service {
	if obs == nil {
		obs = observability.Nop()
	}
	return &Service{
		orders:       orders,
		carts:        carts,
		customers:    customers,
		payments:     payments,
		ids:          ids,
		log:          obs.Logger().With(observability.F("component", componentOrderService)),
		reqCounter:   obs.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: obs.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

// observe records RED metrics for one use case invocation.
func (s *Service) observe(useCase string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.reqCounter.Add(1,
		observability.L("use_case", useCase),
		observability.L("outcome", outcome),
	)
	s.durHistogram.Observe(time.Since(start).Seconds(),
		observability.L("use_case", useCase),
	)
}

// ListOrders returns orders enriched with customer and payment data. With a
// status filter the repository order is kept; without one the listing is
// sorted by kitchen priority (ready, preparation, received, created), with
// terminal and unknown statuses last. The sort is stable, so ties keep the
// order the repository returned.
func (s *Service) ListOrders(ctx context.Context, rawStatus string) ([]View, error) {
	logger := logctx.FromOr(ctx, s.log)

	var (
		orders []domain.Order
		err    error
	)
	if rawStatus != "" {
		status, parseErr := domain.ParseStatus(rawStatus)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, rawStatus)
		}
		logger.Info("listing_orders_by_status", observability.F("status", rawStatus))
		orders, err = s.orders.GetOrdersByStatus(ctx, status)
	} else {
		logger.Info("listing_all_orders")
		orders, err = s.orders.GetOrders(ctx)
	}
	if err != nil {
		return nil, err
	}

	views, err := s.enrichAll(ctx, orders)
	if err != nil {
		return nil, err
	}
	if rawStatus == "" {
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Status.ListPriority() < views[j].Status.ListPriority()
		})
	}
	return views, nil
}

// GetOrderByID resolves one order and attaches its customer when there is
// one. A customer lookup that finds nothing is not an error; a failing
// customer API call is.
func (s *Service) GetOrderByID(ctx context.Context, id string) (*View, error) {
	logger := logctx.FromOr(ctx, s.log)

	if err := validateID(id); err != nil {
		return nil, err
	}

	logger.Info("fetching_order", observability.F("order_id", id))
	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &View{Order: *order}
	if order.CustomerID != "" {
		found, err := s.customers.GetCustomerByID(ctx, order.CustomerID)
		if err != nil {
			return nil, err
		}
		view.Customer = found
	}
	return view, nil
}

// GetOrderCreatedByID resolves the order only while it is still awaiting
// payment, enriched with customer and payment-order data.
func (s *Service) GetOrderCreatedByID(ctx context.Context, id string) (*View, error) {
	logger := logctx.FromOr(ctx, s.log)

	if err := validateID(id); err != nil {
		return nil, err
	}

	logger.Info("fetching_created_order", observability.F("order_id", id))
	order, err := s.orders.GetOrderCreatedByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &View{Order: *order}
	if order.CustomerID != "" {
		found, err := s.customers.GetCustomerByID(ctx, order.CustomerID)
		if err != nil {
			return nil, err
		}
		view.Customer = found
	}

	po, err := s.payments.GetPaymentOrderByOrderID(ctx, order.ID)
	switch {
	case err == nil:
		view.Payment = po
	case isNotFound(err):
		// no payment order yet
	default:
		return nil, err
	}
	return view, nil
}

func (s *Service) CreateOrder(ctx context.Context, customerID string) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, s.log)
	start := time.Now()
	defer func() { s.observe("order.create", start, err) }()

	if customerID != "" {
		logger.Info("creating_order", observability.F("customer_id", customerID))
	} else {
		logger.Info("creating_anonymous_order")
	}

	order := domain.New(s.ids.NewID(), customerID)
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("order: create: %w", err)
	}
	return order, nil
}

type UpdateOrderInput struct {
	ID         string
	Status     string
	ReadableID *int
}

// UpdateOrder applies a partial update. Status values must belong to the
// enum and must move the lifecycle forward (or cancel it).
func (s *Service) UpdateOrder(ctx context.Context, in UpdateOrderInput) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, s.log)
	start := time.Now()
	defer func() { s.observe("order.update", start, err) }()

	if in.ID == "" {
		return nil, domain.ErrMissingID
	}

	params := domain.UpdateParams{ID: in.ID, ReadableID: in.ReadableID}
	if in.Status != "" {
		status, err := domain.ParseStatus(in.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, in.Status)
		}
		current, err := s.orders.GetOrderByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		if !current.Status.CanTransitionTo(status) {
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, status)
		}
		params.Status = status
	}

	logger.Info("updating_order",
		observability.F("order_id", in.ID),
		observability.F("status", in.Status),
	)
	return s.orders.UpdateOrder(ctx, params)
}

// OrderTotalValue sums the value snapshots of the order's cart lines.
func (s *Service) OrderTotalValue(ctx context.Context, id string) (int64, error) {
	logger := logctx.FromOr(ctx, s.log)

	if id == "" {
		return 0, domain.ErrMissingID
	}

	items, err := s.carts.GetItemsByOrderID(ctx, id)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrNoItems, id)
	}

	var total int64
	for _, item := range items {
		total += item.Value
	}
	logger.Info("order_total_computed",
		observability.F("order_id", id),
		observability.F("total", total),
	)
	return total, nil
}

func (s *Service) enrichAll(ctx context.Context, orders []domain.Order) ([]View, error) {
	customers, err := s.customers.GetCustomers(ctx)
	if err != nil {
		return nil, err
	}
	paymentOrders, err := s.payments.GetPaymentOrders(ctx)
	if err != nil {
		return nil, err
	}

	customerByID := make(map[string]*domcustomer.Customer, len(customers))
	for i := range customers {
		customerByID[customers[i].ID] = &customers[i]
	}
	paymentByOrder := make(map[string]*dompayment.PaymentOrder, len(paymentOrders))
	for i := range paymentOrders {
		paymentByOrder[paymentOrders[i].OrderID] = &paymentOrders[i]
	}

	views := make([]View, 0, len(orders))
	for _, order := range orders {
		views = append(views, View{
			Order:    order,
			Customer: customerByID[order.CustomerID],
			Payment:  paymentByOrder[order.ID],
		})
	}
	return views, nil
}

func validateID(id string) error {
	if id == "" || uuid.Validate(id) != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, dompayment.ErrNotFound)
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	appOrder "github.com/totemfood/orders/internal/application/order"
	domcart "github.com/totemfood/orders/internal/domain/cart"
	domorder "github.com/totemfood/orders/internal/domain/order"
	domain "github.com/totemfood/orders/internal/domain/payment"
	domproduct "github.com/totemfood/orders/internal/domain/product"
	"github.com/totemfood/orders/internal/observability"
	"github.com/totemfood/orders/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	componentPaymentService = "payment_service"
	qrExpiration            = time.Hour
	qrUnitMeasure           = "unit"
)

type IDGenerator interface {
	NewID() string
}

// Service creates payment orders and reconciles provider notifications
// against them. The pending-status guard is the only idempotency mechanism:
// a replayed terminal notification is rejected, never silently accepted.
type Service struct {
	payments  domain.Repository
	orders    *appOrder.Service
	orderRepo domorder.Repository
	carts     domcart.Repository
	products  domproduct.Repository
	gateway   domain.Gateway
	ids       IDGenerator
	log       observability.Logger
	tracer    observability.Tracer
	notifs    observability.Counter
}

func NewService(
	payments domain.Repository,
	orders *appOrder.Service,
	orderRepo domorder.Repository,
	carts domcart.Repository,
	products domproduct.Repository,
	gateway domain.Gateway,
	ids IDGenerator,
	obs observability.Observability,
) *Service {
	if obs == nil {
		obs = observability.Nop()
	}
	return &Service{
		payments:  payments,
		orders:    orders,
		orderRepo: orderRepo,
		carts:     carts,
		products:  products,
		gateway:   gateway,
		ids:       ids,
		log:       obs.Logger().With(observability.F("component", componentPaymentService)),
		tracer:    obs.Tracer(),
		notifs:    obs.Metrics().Counter(observability.MNotificationsProcessed),
	}
}

func (s *Service) PaymentOrders(ctx context.Context) ([]domain.PaymentOrder, error) {
	return s.payments.GetPaymentOrders(ctx)
}

func (s *Service) PaymentOrderByID(ctx context.Context, id string) (*domain.PaymentOrder, error) {
	return s.payments.GetPaymentOrderByID(ctx, id)
}

func (s *Service) PaymentOrderByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	return s.payments.GetPaymentOrderByOrderID(ctx, orderID)
}

// MakePayment creates the single payment order for an order awaiting payment:
// it prices the cart, requests a QR payload from the gateway and persists the
// payment order as pending. A concurrent duplicate is resolved by the storage
// unique index and surfaces as ErrAlreadyExists.
func (s *Service) MakePayment(ctx context.Context, orderID string) (_ *domain.PaymentOrder, err error) {
	logger := logctx.FromOr(ctx, s.log)

	ctx, span := s.tracer.Start(ctx, "UC.MakePayment",
		attribute.String("order.id", orderID),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "make_payment_failed")
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()
	}()

	order, err := s.orders.GetOrderCreatedByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domorder.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
		}
		return nil, err
	}

	_, err = s.payments.GetPaymentOrderByOrderID(ctx, orderID)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyExists, orderID)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	total, err := s.orders.OrderTotalValue(ctx, orderID)
	if err != nil {
		return nil, err
	}

	qrReq, err := s.buildQRRequest(ctx, order.ID, total)
	if err != nil {
		return nil, err
	}
	qrResp, err := s.gateway.CreateQRPayment(ctx, qrReq)
	if err != nil {
		logger.Error("qr_payment_failed",
			observability.F("order_id", orderID),
			observability.F("error", err.Error()),
		)
		return nil, err
	}

	logger.Info("creating_payment_order",
		observability.F("order_id", orderID),
		observability.F("amount", total),
	)
	po := domain.New(s.ids.NewID(), orderID, total, qrResp.QRData)
	if err := s.payments.CreatePaymentOrder(ctx, po); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyExists, orderID)
		}
		return nil, fmt.Errorf("payment: create payment order: %w", err)
	}
	return po, nil
}

// buildQRRequest derives the provider request from the order's cart lines.
// Line titles carry the product id, unit prices come from the catalog and
// line totals from the stored value snapshots.
func (s *Service) buildQRRequest(ctx context.Context, orderID string, total int64) (domain.QRRequest, error) {
	items, err := s.carts.GetItemsByOrderID(ctx, orderID)
	if err != nil {
		return domain.QRRequest{}, err
	}

	reqItems := make([]domain.QRRequestItem, 0, len(items))
	for _, item := range items {
		product, err := s.products.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return domain.QRRequest{}, err
		}
		reqItems = append(reqItems, domain.QRRequestItem{
			Title:       item.ProductID,
			Quantity:    item.Quantity,
			UnitMeasure: qrUnitMeasure,
			UnitPrice:   product.Price,
			TotalAmount: item.Value,
		})
	}

	return domain.QRRequest{
		ExternalReference: orderID,
		Title:             fmt.Sprintf("Purchase %s", orderID),
		TotalAmount:       total,
		ExpirationDate:    time.Now().UTC().Add(qrExpiration),
		Items:             reqItems,
	}, nil
}

// ProcessNotification applies an asynchronous provider notification to the
// matching payment order and advances the order lifecycle accordingly.
func (s *Service) ProcessNotification(ctx context.Context, n domain.Notification) (err error) {
	logger := logctx.FromOr(ctx, s.log)

	ctx, span := s.tracer.Start(ctx, "UC.ProcessPaymentNotification",
		attribute.String("notification.state", string(n.State)),
		attribute.String("notification.external_reference", n.ExternalReference),
	)
	outcome := "success"
	defer func() {
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, "notification_failed")
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		s.notifs.Add(1,
			observability.L("state", string(n.State)),
			observability.L("outcome", outcome),
		)
		span.End()
	}()

	if err = n.Validate(); err != nil {
		return err
	}

	switch n.State {
	case domain.StateFinished:
		logger.Info("payment_finished_notification",
			observability.F("external_reference", n.ExternalReference),
		)
		err = s.settleFinished(ctx, n)
	case domain.StateConfirmationRequired:
		// informational only, no state to move
		logger.Info("payment_confirmation_required",
			observability.F("external_reference", n.ExternalReference),
		)
	case domain.StateCanceled:
		logger.Info("payment_canceled_notification",
			observability.F("external_reference", n.ExternalReference),
		)
		err = s.settleCanceled(ctx, n)
	default:
		err = domain.NewNotificationError("invalid payment notification type %s", n.State)
	}
	return err
}

func (s *Service) settleFinished(ctx context.Context, n domain.Notification) error {
	logger := logctx.FromOr(ctx, s.log)

	po, err := s.pendingPaymentOrder(ctx, n.ExternalReference, "finish")
	if err != nil {
		return err
	}

	if err := po.Approve(time.Now().UTC()); err != nil {
		return domain.NewNotificationError(
			"error processing payment finish notification. Payment order %s with status other than pending. Current status: %s",
			n.ExternalReference, po.Status,
		)
	}
	if err := s.payments.UpdatePaymentOrder(ctx, po); err != nil {
		return fmt.Errorf("payment: update payment order: %w", err)
	}

	readable, err := s.nextReadableID(ctx)
	if err != nil {
		return err
	}
	order, err := s.orders.UpdateOrder(ctx, appOrder.UpdateOrderInput{
		ID:         po.OrderID,
		Status:     string(domorder.StatusReceived),
		ReadableID: &readable,
	})
	if err != nil {
		return err
	}

	logger.Info("order_payment_settled",
		observability.F("order_id", order.ID),
		observability.F("readable_id", readable),
	)
	return nil
}

// settleCanceled voids the payment order and cancels the order. No readable
// id is assigned: the daily sequence counts paid orders only.
func (s *Service) settleCanceled(ctx context.Context, n domain.Notification) error {
	logger := logctx.FromOr(ctx, s.log)

	po, err := s.pendingPaymentOrder(ctx, n.ExternalReference, "cancelation")
	if err != nil {
		return err
	}

	if err := po.Cancel(); err != nil {
		return domain.NewNotificationError(
			"error processing payment cancelation notification. Payment order %s with status other than pending. Current status: %s",
			n.ExternalReference, po.Status,
		)
	}
	if err := s.payments.UpdatePaymentOrder(ctx, po); err != nil {
		return fmt.Errorf("payment: update payment order: %w", err)
	}

	order, err := s.orders.UpdateOrder(ctx, appOrder.UpdateOrderInput{
		ID:     po.OrderID,
		Status: string(domorder.StatusCanceled),
	})
	if err != nil {
		return err
	}

	logger.Info("order_payment_canceled", observability.F("order_id", order.ID))
	return nil
}

func (s *Service) pendingPaymentOrder(ctx context.Context, externalReference, kind string) (*domain.PaymentOrder, error) {
	po, err := s.payments.GetPaymentOrderByOrderID(ctx, externalReference)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewNotificationError(
			"error processing payment %s notification. Payment order %s not found",
			kind, externalReference,
		)
	}
	if err != nil {
		return nil, err
	}
	if po.Status != domain.StatusPending {
		return nil, domain.NewNotificationError(
			"error processing payment %s notification. Payment order %s with status other than pending. Current status: %s",
			kind, externalReference, po.Status,
		)
	}
	return po, nil
}

// nextReadableID continues today's sequence; the first paid order of the day
// gets 1.
func (s *Service) nextReadableID(ctx context.Context) (int, error) {
	count, err := s.orderRepo.CountValidOrdersToday(ctx)
	if err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

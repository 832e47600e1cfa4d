package cart

import (
	"context"
	"fmt"

	domcart "github.com/totemfood/orders/internal/domain/cart"
	domorder "github.com/totemfood/orders/internal/domain/order"
	domproduct "github.com/totemfood/orders/internal/domain/product"
	"github.com/totemfood/orders/internal/observability"
	"github.com/totemfood/orders/internal/observability/logctx"
)

const componentCartService = "cart_service"

type IDGenerator interface {
	NewID() string
}

// Service prices cart line items. A line's value is snapshotted from the
// product's current price whenever the line is added or its quantity changes.
type Service struct {
	carts    domcart.Repository
	orders   domorder.Repository
	products domproduct.Repository
	ids      IDGenerator
	log      observability.Logger
}

func NewService(
	carts domcart.Repository,
	orders domorder.Repository,
	products domproduct.Repository,
	ids IDGenerator,
	obs observability.Observability,
) *Service {
	if obs == nil {
		obs = observability.Nop()
	}
	return &Service{
		carts:    carts,
		orders:   orders,
		products: products,
		ids:      ids,
		log:      obs.Logger().With(observability.F("component", componentCartService)),
	}
}

type AddItemInput struct {
	OrderID   string
	ProductID string
	Quantity  int
	Details   string
}

func (s *Service) AddItem(ctx context.Context, in AddItemInput) (*domcart.Item, error) {
	logger := logctx.FromOr(ctx, s.log)

	if err := domcart.ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if _, err := s.orders.GetOrderByID(ctx, in.OrderID); err != nil {
		return nil, err
	}
	product, err := s.products.GetProductByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	item, err := domcart.New(s.ids.NewID(), in.OrderID, in.ProductID, in.Quantity, in.Details, product.Price)
	if err != nil {
		return nil, err
	}
	if err := s.carts.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("cart: add item: %w", err)
	}

	logger.Info("cart_item_added",
		observability.F("order_id", in.OrderID),
		observability.F("product_id", in.ProductID),
		observability.F("quantity", in.Quantity),
		observability.F("value", item.Value),
	)
	return item, nil
}

type UpdateItemInput struct {
	ID       string
	Quantity int
	Details  string
}

// UpdateItem reprices the existing line: the stored productID decides which
// product's current price applies, not anything the caller sends.
func (s *Service) UpdateItem(ctx context.Context, in UpdateItemInput) (*domcart.Item, error) {
	logger := logctx.FromOr(ctx, s.log)

	item, err := s.carts.GetItemByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetProductByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if err := item.Reprice(in.Quantity, product.Price); err != nil {
		return nil, err
	}
	item.Details = in.Details

	if err := s.carts.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("cart: update item: %w", err)
	}

	logger.Info("cart_item_updated",
		observability.F("item_id", item.ID),
		observability.F("quantity", item.Quantity),
		observability.F("value", item.Value),
	)
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	logger := logctx.FromOr(ctx, s.log)

	if err := s.carts.DeleteItem(ctx, id); err != nil {
		return err
	}
	logger.Info("cart_item_deleted", observability.F("item_id", id))
	return nil
}

func (s *Service) GetItem(ctx context.Context, id string) (*domcart.Item, error) {
	return s.carts.GetItemByID(ctx, id)
}

func (s *Service) ItemsByOrder(ctx context.Context, orderID string) ([]domcart.Item, error) {
	return s.carts.GetItemsByOrderID(ctx, orderID)
}

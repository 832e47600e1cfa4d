package product

import (
	"context"

	domain "github.com/totemfood/orders/internal/domain/product"
	"github.com/totemfood/orders/internal/observability"
	"github.com/totemfood/orders/internal/observability/logctx"
)

const componentProductService = "product_service"

type IDGenerator interface {
	NewID() string
}

// Service exposes the catalog reads the ordering flow depends on plus a
// minimal create used to seed it.
type Service struct {
	products domain.Repository
	ids      IDGenerator
	log      observability.Logger
}

func NewService(products domain.Repository, ids IDGenerator, obs observability.Observability) *Service {
	if obs == nil {
		obs = observability.Nop()
	}
	return &Service{
		products: products,
		ids:      ids,
		log:      obs.Logger().With(observability.F("component", componentProductService)),
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.GetProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetProductByID(ctx, id)
}

type CreateProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	logger := logctx.FromOr(ctx, s.log)

	p, err := domain.New(s.ids.NewID(), in.Name, in.Description, in.Price)
	if err != nil {
		return nil, err
	}
	if err := s.products.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	logger.Info("product_created",
		observability.F("product_id", p.ID),
		observability.F("name", p.Name),
	)
	return p, nil
}

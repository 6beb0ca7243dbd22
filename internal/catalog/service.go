package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/clickbrilhe/storefront-backend/pkg/backend"
	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
)

type backendAPI interface {
	ListProducts(ctx context.Context) ([]backend.Product, error)
	CreateProduct(ctx context.Context, product backend.Product) (*backend.Product, error)
	UpdateProduct(ctx context.Context, id string, product backend.Product) (*backend.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListOrders(ctx context.Context) ([]backend.Order, error)
}

// StorefrontProduct is the catalog entry as the storefront renders it:
// the backend payload plus the promotion-adjusted selling price.
type StorefrontProduct struct {
	backend.Product
	SellingPrice decimal.Decimal `json:"precoVenda"`
}

// Service exposes the catalog and the admin passthrough operations.
type Service interface {
	ListProducts(ctx context.Context) ([]StorefrontProduct, error)
	GetProduct(ctx context.Context, id string) (*StorefrontProduct, error)
	CreateProduct(ctx context.Context, product backend.Product) (*backend.Product, error)
	UpdateProduct(ctx context.Context, id string, product backend.Product) (*backend.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListOrders(ctx context.Context) ([]backend.Order, error)
}

type service struct {
	api backendAPI
}

// NewService builds a catalog service over the backend client.
func NewService(api backendAPI) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("backend api required")
	}
	return &service{api: api}, nil
}

// SellingPrice applies the promotion percentage to the list price.
func SellingPrice(price, promotion decimal.Decimal) decimal.Decimal {
	if promotion.IsZero() || promotion.IsNegative() {
		return price
	}
	discount := promotion.Div(decimal.NewFromInt(100)).Mul(price)
	return price.Sub(discount)
}

// ListProducts returns the catalog with selling prices computed.
func (s *service) ListProducts(ctx context.Context) ([]StorefrontProduct, error) {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StorefrontProduct, 0, len(products))
	for _, p := range products {
		out = append(out, StorefrontProduct{
			Product:      p,
			SellingPrice: SellingPrice(p.Price, p.Promotion),
		})
	}
	return out, nil
}

// GetProduct fetches one catalog entry. The backend exposes no per-product
// endpoint, so the list is scanned.
func (s *service) GetProduct(ctx context.Context, id string) (*StorefrontProduct, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
		WithDetails(map[string]string{"id": id})
}

func (s *service) CreateProduct(ctx context.Context, product backend.Product) (*backend.Product, error) {
	if strings.TrimSpace(product.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	return s.api.CreateProduct(ctx, product)
}

func (s *service) UpdateProduct(ctx context.Context, id string, product backend.Product) (*backend.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.api.UpdateProduct(ctx, id, product)
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.api.DeleteProduct(ctx, id)
}

func (s *service) ListOrders(ctx context.Context) ([]backend.Order, error) {
	return s.api.ListOrders(ctx)
}

package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
)

// Service exposes cart mutations. Every mutation returns the full cart
// state after the change so callers never render stale aggregates.
type Service interface {
	Get(ctx context.Context, cartID uuid.UUID) (*State, error)
	AddItem(ctx context.Context, cartID uuid.UUID, input AddItemInput) (*State, error)
	RemoveItem(ctx context.Context, cartID uuid.UUID, productID string) (*State, error)
	UpdateQuantity(ctx context.Context, cartID uuid.UUID, productID string, quantity int) (*State, error)
	Clear(ctx context.Context, cartID uuid.UUID) (*State, error)
}

type service struct {
	store Store
}

// NewService builds a cart service backed by the provided store.
func NewService(store Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &service{store: store}, nil
}

// AddItemInput snapshots the product being added. UnitPrice must already
// carry any promotional discount.
type AddItemInput struct {
	ProductID   string
	Name        string
	UnitPrice   decimal.Decimal
	MaxQuantity int
}

// Get returns the current cart state.
func (s *service) Get(ctx context.Context, cartID uuid.UUID) (*State, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	return s.store.Get(ctx, cartID)
}

// AddItem inserts the product with quantity one, or increments an existing
// line. An increment past MaxQuantity is silently dropped and the current
// state is returned unchanged.
func (s *service) AddItem(ctx context.Context, cartID uuid.UUID, input AddItemInput) (*State, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.MaxQuantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max quantity must be at least one")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be non-negative")
	}

	return s.store.Update(ctx, cartID, func(state *State) error {
		idx := state.lineIndex(input.ProductID)
		if idx < 0 {
			state.Lines = append(state.Lines, Line{
				ProductID:   input.ProductID,
				Name:        input.Name,
				UnitPrice:   input.UnitPrice,
				Quantity:    1,
				MaxQuantity: input.MaxQuantity,
			})
			return nil
		}
		if state.Lines[idx].Quantity < state.Lines[idx].MaxQuantity {
			state.Lines[idx].Quantity++
		}
		return nil
	})
}

// RemoveItem deletes the matching line. Removing an absent product is a
// no-op.
func (s *service) RemoveItem(ctx context.Context, cartID uuid.UUID, productID string) (*State, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	return s.store.Update(ctx, cartID, func(state *State) error {
		idx := state.lineIndex(productID)
		if idx < 0 {
			return nil
		}
		state.Lines = append(state.Lines[:idx], state.Lines[idx+1:]...)
		return nil
	})
}

// UpdateQuantity sets the line quantity, clamped to [1, MaxQuantity].
// Quantity zero or below removes the line. Unknown products are a no-op.
func (s *service) UpdateQuantity(ctx context.Context, cartID uuid.UUID, productID string, quantity int) (*State, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, cartID, productID)
	}

	return s.store.Update(ctx, cartID, func(state *State) error {
		idx := state.lineIndex(productID)
		if idx < 0 {
			return nil
		}
		if quantity > state.Lines[idx].MaxQuantity {
			quantity = state.Lines[idx].MaxQuantity
		}
		state.Lines[idx].Quantity = quantity
		return nil
	})
}

// Clear drops every line.
func (s *service) Clear(ctx context.Context, cartID uuid.UUID) (*State, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	return s.store.Update(ctx, cartID, func(state *State) error {
		state.Lines = state.Lines[:0]
		return nil
	})
}

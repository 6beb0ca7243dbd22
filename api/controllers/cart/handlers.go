package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clickbrilhe/storefront-backend/api/responses"
	"github.com/clickbrilhe/storefront-backend/api/validators"
	cartsvc "github.com/clickbrilhe/storefront-backend/internal/cart"
	"github.com/clickbrilhe/storefront-backend/internal/catalog"
	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
	"github.com/clickbrilhe/storefront-backend/pkg/logger"
)

const maxProductIDLen = 64

// AddItemRequest identifies the product to add. Price and stock are
// snapshotted server-side from the catalog, never trusted from the client.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// UpdateQuantityRequest sets the absolute quantity for a line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// cartContext tags the request logger with the cart id so every log line
// from the service and stores below carries it.
func cartContext(r *http.Request, logg *logger.Logger, cartID uuid.UUID) context.Context {
	if logg == nil {
		return r.Context()
	}
	return logg.WithCartID(r.Context(), cartID.String())
}

func productIDParam(r *http.Request) string {
	return validators.SanitizeString(chi.URLParam(r, "productID"), maxProductIDLen)
}

// Fetch returns the cart state.
func Fetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := validators.ParseUUIDParam(r, "cartID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := cartContext(r, logg, cartID)

		state, err := svc.Get(ctx, cartID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// AddItem snapshots the catalog product into the cart.
func AddItem(svc cartsvc.Service, products catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := validators.ParseUUIDParam(r, "cartID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := cartContext(r, logg, cartID)

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		payload.ProductID = validators.SanitizeString(payload.ProductID, maxProductIDLen)

		product, err := products.GetProduct(ctx, payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if product.StockQuantity < 1 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock"))
			return
		}

		state, err := svc.AddItem(ctx, cartID, cartsvc.AddItemInput{
			ProductID:   product.ID,
			Name:        product.Name,
			UnitPrice:   product.SellingPrice,
			MaxQuantity: product.StockQuantity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// UpdateQuantity sets the quantity for one line; zero removes it.
func UpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := validators.ParseUUIDParam(r, "cartID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := cartContext(r, logg, cartID)

		var payload UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		state, err := svc.UpdateQuantity(ctx, cartID, productIDParam(r), payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// RemoveItem deletes one line.
func RemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := validators.ParseUUIDParam(r, "cartID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := cartContext(r, logg, cartID)

		state, err := svc.RemoveItem(ctx, cartID, productIDParam(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// Clear empties the cart.
func Clear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := validators.ParseUUIDParam(r, "cartID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := cartContext(r, logg, cartID)

		state, err := svc.Clear(ctx, cartID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

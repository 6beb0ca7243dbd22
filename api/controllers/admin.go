package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clickbrilhe/storefront-backend/api/responses"
	"github.com/clickbrilhe/storefront-backend/api/validators"
	"github.com/clickbrilhe/storefront-backend/internal/catalog"
	"github.com/clickbrilhe/storefront-backend/pkg/backend"
	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
	"github.com/clickbrilhe/storefront-backend/pkg/logger"
	"github.com/clickbrilhe/storefront-backend/pkg/redis"
)

// CredentialWriter stores externally supplied credentials.
type CredentialWriter interface {
	StoreCredential(ctx context.Context, slot, value string) error
}

// PaymentKeyRequest carries the gateway API key supplied by the operator.
type PaymentKeyRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

// AdminProductCreate inserts a catalog entry via the backend.
func AdminProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload backend.Product
		if err := decodeProduct(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateProduct(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AdminProductUpdate replaces a catalog entry.
func AdminProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload backend.Product
		if err := decodeProduct(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// AdminProductDelete removes a catalog entry.
func AdminProductDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteProduct(r.Context(), chi.URLParam(r, "productID")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminOrdersList proxies the backend's full order list.
func AdminOrdersList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := svc.ListOrders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// AdminStorePaymentKey writes the payment gateway key into its credential
// slot. The key is write-only through the API; it is never echoed back.
func AdminStorePaymentKey(creds CredentialWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload PaymentKeyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.TrimSpace(payload.APIKey) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "api key is required"))
			return
		}

		if err := creds.StoreCredential(r.Context(), redis.PaymentKeySlot, strings.TrimSpace(payload.APIKey)); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store payment key"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "stored"})
	}
}

// decodeProduct decodes the backend product shape without struct tags
// validation; the catalog service enforces the required fields.
func decodeProduct(r *http.Request, dest *backend.Product) error {
	return validators.DecodeJSONBody(r, dest)
}

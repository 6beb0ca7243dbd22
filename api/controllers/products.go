package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clickbrilhe/storefront-backend/api/responses"
	"github.com/clickbrilhe/storefront-backend/api/validators"
	"github.com/clickbrilhe/storefront-backend/internal/catalog"
	"github.com/clickbrilhe/storefront-backend/pkg/logger"
)

// ProductsList exposes the catalog with selling prices applied.
func ProductsList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// ProductFetch exposes one catalog entry.
func ProductFetch(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.GetProduct(r.Context(), validators.SanitizeString(chi.URLParam(r, "productID"), 64))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

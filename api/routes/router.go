package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clickbrilhe/storefront-backend/api/controllers"
	cartcontrollers "github.com/clickbrilhe/storefront-backend/api/controllers/cart"
	checkoutcontrollers "github.com/clickbrilhe/storefront-backend/api/controllers/checkout"
	"github.com/clickbrilhe/storefront-backend/api/middleware"
	cartsvc "github.com/clickbrilhe/storefront-backend/internal/cart"
	"github.com/clickbrilhe/storefront-backend/internal/catalog"
	checkoutsvc "github.com/clickbrilhe/storefront-backend/internal/checkout"
	"github.com/clickbrilhe/storefront-backend/pkg/config"
	"github.com/clickbrilhe/storefront-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Credentials controllers.CredentialWriter
	Carts       cartsvc.Service
	Catalog     catalog.Service
	Checkout    checkoutsvc.Service
	Gatherer    prometheus.Gatherer
}

// NewRouter assembles the HTTP surface.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, d.Redis, logg))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(d.Catalog, logg))
			r.Get("/{productID}", controllers.ProductFetch(d.Catalog, logg))
		})

		r.Route("/carts/{cartID}", func(r chi.Router) {
			r.Get("/", cartcontrollers.Fetch(d.Carts, logg))
			r.Delete("/", cartcontrollers.Clear(d.Carts, logg))
			r.Post("/items", cartcontrollers.AddItem(d.Carts, d.Catalog, logg))
			r.Put("/items/{productID}", cartcontrollers.UpdateQuantity(d.Carts, logg))
			r.Delete("/items/{productID}", cartcontrollers.RemoveItem(d.Carts, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutcontrollers.Start(d.Checkout, logg))
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", checkoutcontrollers.Fetch(d.Checkout, logg))
				r.Delete("/", checkoutcontrollers.Cancel(d.Checkout, logg))
				r.Post("/customer", checkoutcontrollers.SubmitCustomer(d.Checkout, logg))
				r.Post("/address", checkoutcontrollers.SubmitAddress(d.Checkout, logg))
				r.Post("/payment", checkoutcontrollers.SubmitPayment(d.Checkout, d.Carts, logg))
				r.Post("/back", checkoutcontrollers.GoBack(d.Checkout, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/products", controllers.AdminProductCreate(d.Catalog, logg))
			r.Put("/products/{productID}", controllers.AdminProductUpdate(d.Catalog, logg))
			r.Delete("/products/{productID}", controllers.AdminProductDelete(d.Catalog, logg))
			r.Get("/orders", controllers.AdminOrdersList(d.Catalog, logg))
			r.Put("/payment-key", controllers.AdminStorePaymentKey(d.Credentials, logg))
		})
	})

	return r
}

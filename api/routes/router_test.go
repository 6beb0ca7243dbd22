package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartsvc "github.com/clickbrilhe/storefront-backend/internal/cart"
	"github.com/clickbrilhe/storefront-backend/internal/catalog"
	checkoutsvc "github.com/clickbrilhe/storefront-backend/internal/checkout"
	"github.com/clickbrilhe/storefront-backend/internal/identity"
	"github.com/clickbrilhe/storefront-backend/internal/orders"
	"github.com/clickbrilhe/storefront-backend/internal/shipping"
	"github.com/clickbrilhe/storefront-backend/pkg/backend"
	"github.com/clickbrilhe/storefront-backend/pkg/config"
	"github.com/clickbrilhe/storefront-backend/pkg/pagarme"
	"github.com/clickbrilhe/storefront-backend/pkg/receita"
	"github.com/clickbrilhe/storefront-backend/pkg/viacep"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubCredentials struct {
	stored map[string]string
}

func (s *stubCredentials) StoreCredential(_ context.Context, slot, value string) error {
	s.stored[slot] = value
	return nil
}

func (s *stubCredentials) GetCredential(_ context.Context, slot string) (string, error) {
	return s.stored[slot], nil
}

type stubBackend struct {
	products []backend.Product
	orders   int
	emails   int
}

func (s *stubBackend) ListProducts(context.Context) ([]backend.Product, error) {
	return s.products, nil
}

func (s *stubBackend) CreateProduct(_ context.Context, p backend.Product) (*backend.Product, error) {
	p.ID = "created"
	return &p, nil
}

func (s *stubBackend) UpdateProduct(_ context.Context, id string, p backend.Product) (*backend.Product, error) {
	p.ID = id
	return &p, nil
}

func (s *stubBackend) DeleteProduct(context.Context, string) error { return nil }

func (s *stubBackend) ListOrders(context.Context) ([]backend.Order, error) {
	return []backend.Order{{ID: 1, Status: "em análise"}}, nil
}

func (s *stubBackend) CreateUser(_ context.Context, req backend.CreateUserRequest) (*backend.User, error) {
	return &backend.User{ID: 7, Name: req.Name}, nil
}

func (s *stubBackend) CreateOrder(_ context.Context, req backend.CreateOrderRequest) (*backend.Order, error) {
	s.orders++
	return &backend.Order{ID: int64(s.orders)}, nil
}

func (s *stubBackend) SendEmail(context.Context, backend.SendEmailRequest) error {
	s.emails++
	return nil
}

type stubGateway struct{}

func (stubGateway) CreatePaymentIntent(_ context.Context, _ string, _ pagarme.PaymentIntentRequest) (*pagarme.Charge, error) {
	return &pagarme.Charge{ID: "ch_1", Status: "paid"}, nil
}

type stubDirectory struct{}

func (stubDirectory) Lookup(_ context.Context, cep string) (*viacep.Result, error) {
	return &viacep.Result{CEP: cep, Street: "Praça da Sé", City: "São Paulo", Region: "SP"}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *stubBackend) {
	t.Helper()

	api := &stubBackend{products: []backend.Product{{
		ID:            "lamp-01",
		Name:          "Abajur Cristal",
		Price:         decimal.NewFromInt(100),
		Promotion:     decimal.NewFromInt(10),
		StockQuantity: 3,
	}}}

	carts, err := cartsvc.NewService(cartsvc.NewMemoryStore())
	require.NoError(t, err)
	catalogSvc, err := catalog.NewService(api)
	require.NoError(t, err)
	identitySvc, err := identity.NewService(receita.NewStubResolver())
	require.NoError(t, err)
	resolver, err := shipping.NewResolver(stubDirectory{})
	require.NoError(t, err)
	ordersSvc, err := orders.NewService(api, nil, nil)
	require.NoError(t, err)

	creds := &stubCredentials{stored: map[string]string{"pagarme_api_key": "sk_test"}}
	checkoutService, err := checkoutsvc.NewService(checkoutsvc.Deps{
		Sessions:    checkoutsvc.NewMemorySessionStore(),
		Carts:       carts,
		Identity:    identitySvc,
		Addresses:   resolver,
		Freight:     shipping.NewQuoter(500),
		Orders:      ordersSvc,
		Payments:    stubGateway{},
		Credentials: creds,
	})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.Env = "test"

	return NewRouter(Deps{
		Config:      cfg,
		DB:          stubPinger{},
		Redis:       stubPinger{},
		Credentials: creds,
		Carts:       carts,
		Catalog:     catalogSvc,
		Checkout:    checkoutService,
	}), api
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "live", body["data"].(map[string]any)["status"])

	rec, body = doJSON(t, router, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["data"].(map[string]any)["status"])
}

func TestProductsListIncludesSellingPrice(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	products := body["data"].([]any)
	require.Len(t, products, 1)
	product := products[0].(map[string]any)
	assert.Equal(t, "lamp-01", product["id"])
	assert.Equal(t, "90", product["precoVenda"])
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	router, api := newTestRouter(t)
	cartID := "7ad40f0f-7af5-4bb3-b20a-0d5f39b9c88a"

	rec, body := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/carts/%s/items", cartID),
		map[string]any{"product_id": "lamp-01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cartData := body["data"].(map[string]any)
	assert.Equal(t, float64(1), cartData["total_items"])

	rec, body = doJSON(t, router, http.MethodPost, "/api/v1/checkout",
		map[string]any{"cart_id": cartID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := body["data"].(map[string]any)
	sessionID := session["id"].(string)
	assert.Equal(t, "customer", session["step"])

	rec, body = doJSON(t, router, http.MethodPost,
		"/api/v1/checkout/"+sessionID+"/customer",
		map[string]any{
			"name":               "Heitor A B",
			"cpf":                "529.982.247-25",
			"email":              "heitor@example.com",
			"email_confirmation": "heitor@example.com",
		})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "shipping", body["data"].(map[string]any)["step"])

	rec, body = doJSON(t, router, http.MethodPost,
		"/api/v1/checkout/"+sessionID+"/address",
		map[string]any{"cep": "01001-000"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session = body["data"].(map[string]any)
	assert.Equal(t, "payment", session["step"])
	require.NotNil(t, session["freight"])

	rec, body = doJSON(t, router, http.MethodPost,
		"/api/v1/checkout/"+sessionID+"/payment",
		map[string]any{"method": "pix"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session = body["data"].(map[string]any)
	assert.Equal(t, "success", session["step"])
	assert.Equal(t, "ch_1", session["charge_id"])
	assert.Equal(t, 1, api.orders)

	// the cart is cleared once checkout succeeds.
	rec, body = doJSON(t, router, http.MethodGet, "/api/v1/carts/"+cartID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["data"].(map[string]any)["total_items"])
}

func TestCheckoutStepOrderEnforcedOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)
	cartID := "7ad40f0f-7af5-4bb3-b20a-0d5f39b9c88a"

	_, _ = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/carts/%s/items", cartID),
		map[string]any{"product_id": "lamp-01"})

	rec, body := doJSON(t, router, http.MethodPost, "/api/v1/checkout",
		map[string]any{"cart_id": cartID})
	require.Equal(t, http.StatusCreated, rec.Code)
	sessionID := body["data"].(map[string]any)["id"].(string)

	rec, body = doJSON(t, router, http.MethodPost,
		"/api/v1/checkout/"+sessionID+"/address",
		map[string]any{"cep": "01001-000"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "STATE_CONFLICT", body["error"].(map[string]any)["code"])
}

func TestAdminStoresPaymentKey(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodPut, "/api/v1/admin/payment-key",
		map[string]any{"api_key": "sk_live_xyz"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddItemTrimsProductID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodPost,
		"/api/v1/carts/7ad40f0f-7af5-4bb3-b20a-0d5f39b9c88a/items",
		map[string]any{"product_id": "  lamp-01  "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), body["data"].(map[string]any)["total_items"])
}

func TestAddItemRejectsUnknownProduct(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodPost,
		"/api/v1/carts/7ad40f0f-7af5-4bb3-b20a-0d5f39b9c88a/items",
		map[string]any{"product_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

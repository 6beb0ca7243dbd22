package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient("http://backend.test", WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	return client
}

func TestCreateUserPostsExpectedBody(t *testing.T) {
	var capturedURL string
	var capturedBody map[string]any

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		raw, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &capturedBody))
		return &http.Response{
			StatusCode: http.StatusCreated,
			Body:       io.NopCloser(strings.NewReader(`{"id":42,"nome":"Maria","cpf":"52998224725"}`)),
			Header:     http.Header{},
		}, nil
	})

	user, err := client.CreateUser(context.Background(), CreateUserRequest{
		Name:     "Maria",
		CPF:      "52998224725",
		CEP:      "01000000",
		Login:    "maria@example.com",
		UserType: "comum",
	})
	require.NoError(t, err)
	require.Equal(t, "http://backend.test/usuarios", capturedURL)
	require.Equal(t, "52998224725", capturedBody["cpf"])
	require.Equal(t, "comum", capturedBody["tipoUsuario"])
	require.Equal(t, int64(42), user.ID)
}

func TestCreateOrderSerializesFreight(t *testing.T) {
	var capturedBody map[string]any

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		raw, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &capturedBody))
		return &http.Response{
			StatusCode: http.StatusCreated,
			Body:       io.NopCloser(strings.NewReader(`{"id":7,"quantidade":2}`)),
			Header:     http.Header{},
		}, nil
	})

	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		ProductID:    "p-1",
		UserID:       42,
		Quantity:     2,
		FreightValue: decimal.RequireFromString("25.00"),
	})
	require.NoError(t, err)
	require.Equal(t, "p-1", capturedBody["produtoId"])
	require.EqualValues(t, 42, capturedBody["usuarioId"])
	require.Equal(t, "25", capturedBody["valorFrete"])
	require.Equal(t, int64(7), order.ID)
}

func TestListProductsParsesCatalog(t *testing.T) {
	body := `[{"id":"p-9","nome":"Anel","quantidadeEstoque":3,"preco":120.5,"promocao":10,"imagens":["a.png"],"status":"disponivel","categoria":"aneis"}]`
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodGet, req.Method)
		require.Equal(t, "http://backend.test/produtos", req.URL.String())
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{},
		}, nil
	})

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "p-9", products[0].ID)
	require.Equal(t, 3, products[0].StockQuantity)
	require.True(t, products[0].Price.Equal(decimal.RequireFromString("120.5")))
}

func TestErrorStatusMapping(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		status := http.StatusInternalServerError
		if strings.HasSuffix(req.URL.Path, "/missing") {
			status = http.StatusNotFound
		}
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(`{"message":"nope"}`)),
			Header:     http.Header{},
		}, nil
	})

	err := client.DeleteProduct(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = client.CreateOrder(context.Background(), CreateOrderRequest{ProductID: "p-1", UserID: 1, Quantity: 1, FreightValue: decimal.Zero})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

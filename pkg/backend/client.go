package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	responseBodyReadLimit int64 = 2048
	defaultTimeout              = 10 * time.Second
)

// Client wraps the store backend REST API that owns products, users,
// orders and transactional email.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the backend client given its base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("backend base url is required")
	}

	client := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Product mirrors the backend's product payload.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"nome"`
	Code          string          `json:"codigo"`
	StockQuantity int             `json:"quantidadeEstoque"`
	Price         decimal.Decimal `json:"preco"`
	Promotion     decimal.Decimal `json:"promocao"`
	Width         float64         `json:"largura"`
	Height        float64         `json:"altura"`
	Depth         float64         `json:"profundidade"`
	Images        []string        `json:"imagens"`
	Description   string          `json:"descricao"`
	Status        string          `json:"status"`
	Category      string          `json:"categoria"`
}

// User mirrors the backend's user payload.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"nome"`
	CPF       string `json:"cpf"`
	CEP       string `json:"cep"`
	BirthDate string `json:"dataNascimento"`
	Login     string `json:"login"`
	UserType  string `json:"tipoUsuario"`
}

// CreateUserRequest is the POST /usuarios body. The backend answers with
// the created record, or the existing one when the CPF is already known.
type CreateUserRequest struct {
	Name      string `json:"nome"`
	CPF       string `json:"cpf"`
	CEP       string `json:"cep"`
	BirthDate string `json:"dataNascimento"`
	Login     string `json:"login"`
	Password  string `json:"senha"`
	UserType  string `json:"tipoUsuario"`
}

// CreateOrderRequest is the POST /pedidos body.
type CreateOrderRequest struct {
	ProductID    string          `json:"produtoId"`
	UserID       int64           `json:"usuarioId"`
	Quantity     int             `json:"quantidade"`
	FreightValue decimal.Decimal `json:"valorFrete"`
}

// Order mirrors the backend's order payload.
type Order struct {
	ID           int64           `json:"id"`
	Product      Product         `json:"produto"`
	Quantity     int             `json:"quantidade"`
	Date         time.Time       `json:"data"`
	ProductValue decimal.Decimal `json:"valorProduto"`
	FreightValue decimal.Decimal `json:"valorFrete"`
	Status       string          `json:"status"`
	User         User            `json:"usuario"`
}

// SendEmailRequest is the POST /email/send body.
type SendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// ListProducts fetches the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/produtos", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct inserts a new catalog entry.
func (c *Client) CreateProduct(ctx context.Context, product Product) (*Product, error) {
	var created Product
	if err := c.do(ctx, http.MethodPost, "/produtos", product, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct replaces the catalog entry with the given id.
func (c *Client) UpdateProduct(ctx context.Context, id string, product Product) (*Product, error) {
	var updated Product
	if err := c.do(ctx, http.MethodPut, "/produtos/"+url.PathEscape(id), product, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes the catalog entry with the given id.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/produtos/"+url.PathEscape(id), nil, nil)
}

// CreateUser upserts the customer record keyed by CPF. The backend returns
// the existing record when the CPF was seen before, so the caller always
// gets a usable identifier on success.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/usuarios", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateOrder submits one order line.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/pedidos", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders fetches all orders for administrative review.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/pedidos", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SendEmail fires a notification message. The backend treats it as
// fire-and-forget; a non-2xx response is still surfaced to the caller.
func (c *Client) SendEmail(ctx context.Context, req SendEmailRequest) error {
	return c.do(ctx, http.MethodPost, "/email/send", req, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal backend request")
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build backend request")
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute backend request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode == http.StatusNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, "backend resource not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, fmt.Sprintf("backend %s %s failed", method, path))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode backend response")
	}
	return nil
}

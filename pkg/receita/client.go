package receita

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 1024

// Person is the normalized identity-status record.
type Person struct {
	Name     string
	IDNumber string
	Status   string
}

// Resolver looks up the display name/status for an identity number.
// Implementations must return (nil, nil) when the number is unknown.
type Resolver interface {
	Resolve(ctx context.Context, idNumber string) (*Person, error)
}

// Client queries the external identity-status service.
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

// NewClient builds an identity-status client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("identity service base url is required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Resolve fetches the status record for an identity number.
func (c *Client) Resolve(ctx context.Context, idNumber string) (*Person, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "identity service client not configured")
	}
	trimmed := strings.TrimSpace(idNumber)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identity number is required")
	}

	url := fmt.Sprintf("%s/v1/cpf/%s", c.baseURL, trimmed)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build identity lookup request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute identity lookup request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "identity lookup failed")
	}

	var apiResp struct {
		Status    string `json:"status"`
		Name      string `json:"nome"`
		Situation string `json:"situacao"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode identity lookup response")
	}
	if apiResp.Status != "OK" {
		return nil, nil
	}

	return &Person{
		Name:     apiResp.Name,
		IDNumber: trimmed,
		Status:   apiResp.Situation,
	}, nil
}

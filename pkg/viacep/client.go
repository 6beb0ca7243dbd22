package viacep

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

const (
	defaultBaseURL              = "https://viacep.com.br"
	responseBodyReadLimit int64 = 1024
)

// Client wraps the ViaCEP postal-code directory.
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

// WithBaseURL overrides the directory base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// NewClient builds a ViaCEP client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// errFlag decodes the directory's erro field, which has been seen in the
// wild both as a JSON bool and as the string "true".
type errFlag bool

func (f *errFlag) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "true", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

// Result mirrors the directory payload for one postal code.
type Result struct {
	CEP          string  `json:"cep"`
	Street       string  `json:"logradouro"`
	Complement   string  `json:"complemento"`
	Neighborhood string  `json:"bairro"`
	City         string  `json:"localidade"`
	Region       string  `json:"uf"`
	NotFound     errFlag `json:"erro"`
}

// Lookup resolves an 8-digit postal code. Unknown codes return (nil, nil);
// the directory signals them with an erro flag, not an HTTP error.
func (c *Client) Lookup(ctx context.Context, cep string) (*Result, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "viacep client not configured")
	}
	trimmed := strings.TrimSpace(cep)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "postal code is required")
	}

	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, trimmed)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build postal code request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute postal code request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "postal code request failed")
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode postal code response")
	}
	if result.NotFound {
		return nil, nil
	}
	return &result, nil
}

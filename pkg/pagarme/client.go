package pagarme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL              = "https://api.pagar.me/core/v5"
	responseBodyReadLimit int64 = 2048
	pixExpirySeconds            = 3600
	boletoDueDays               = 3
)

// Client wraps the Pagar.me orders API used to create payment intents.
// The API key is supplied per call; it lives in the credential store, not
// in the client.
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

// WithBaseURL overrides the gateway base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// NewClient builds a Pagar.me client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// CardDetails carries credit card fields for card payments.
type CardDetails struct {
	Number     string `json:"number"`
	HolderName string `json:"holder_name"`
	ExpMonth   string `json:"exp_month"`
	ExpYear    string `json:"exp_year"`
	CVV        string `json:"cvv"`
}

// PaymentIntentRequest describes one charge for the purchase total.
type PaymentIntentRequest struct {
	Amount        decimal.Decimal
	CustomerName  string
	CustomerID    string
	PaymentMethod string
	Card          *CardDetails
}

// Charge is the normalized gateway response.
type Charge struct {
	ID        string
	Status    string
	PixQRCode string
}

// CreatePaymentIntent posts an order with a single payment to the gateway.
// Amounts are converted to centavos as the gateway requires.
func (c *Client) CreatePaymentIntent(ctx context.Context, apiKey string, req PaymentIntentRequest) (*Charge, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway client not configured")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment gateway api key not configured")
	}

	payload := map[string]any{
		"items": []map[string]any{
			{
				"name":       "Compra no site",
				"quantity":   1,
				"unit_price": req.Amount.Mul(decimal.NewFromInt(100)).IntPart(),
			},
		},
		"customer": map[string]any{
			"name": req.CustomerName,
			"code": req.CustomerID,
		},
		"payments": []map[string]any{buildPayment(req)},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal payment request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build payment request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(apiKey, "")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute payment request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		return nil, pkgerrors.Wrap(pkgerrors.CodeSubmission, cause, "payment gateway rejected the charge")
	}

	var apiResp struct {
		Charges []struct {
			ID              string `json:"id"`
			Status          string `json:"status"`
			LastTransaction struct {
				PixQRCodeBase64 string `json:"pix_qr_code_base64"`
			} `json:"last_transaction"`
		} `json:"charges"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment response")
	}
	if len(apiResp.Charges) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeSubmission, "payment response contained no charges")
	}

	charge := apiResp.Charges[0]
	return &Charge{
		ID:        charge.ID,
		Status:    charge.Status,
		PixQRCode: charge.LastTransaction.PixQRCodeBase64,
	}, nil
}

func buildPayment(req PaymentIntentRequest) map[string]any {
	switch req.PaymentMethod {
	case "credit_card":
		return map[string]any{
			"payment_method": "credit_card",
			"credit_card": map[string]any{
				"card": req.Card,
			},
		}
	case "boleto":
		return map[string]any{
			"payment_method": "boleto",
			"boleto": map[string]any{
				"due_in": boletoDueDays,
			},
		}
	default:
		return map[string]any{
			"payment_method": "pix",
			"pix": map[string]any{
				"expires_in": pixExpirySeconds,
			},
		}
	}
}

package orders

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/clickbrilhe/storefront-backend/pkg/backend"
	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
	"github.com/clickbrilhe/storefront-backend/pkg/logger"
	"github.com/clickbrilhe/storefront-backend/pkg/metrics"
)

const (
	defaultBirthDate = "1990-05-10"
	defaultPassword  = "teste"
	defaultUserType  = "comum"

	confirmationSubject = "Confirmação de pedido"
	confirmationText    = "Seu pedido foi confirmado! Consulte o status de seus pedidos em 'Meus pedidos'. Atenciosamente, Equipe Click&Brilhe"
)

type backendAPI interface {
	CreateUser(ctx context.Context, req backend.CreateUserRequest) (*backend.User, error)
	CreateOrder(ctx context.Context, req backend.CreateOrderRequest) (*backend.Order, error)
	SendEmail(ctx context.Context, req backend.SendEmailRequest) error
}

// Customer carries the identity and destination collected during checkout.
type Customer struct {
	Name  string
	CPF   string
	CEP   string
	Email string
}

// LineItem is one cart line to submit as a standalone order.
type LineItem struct {
	ProductID string
	Name      string
	Quantity  int
}

// SubmitInput is everything needed to place the orders for one checkout.
// FreightValue is the full quote; the backend records it on every line the
// same way the storefront always has.
type SubmitInput struct {
	Customer     Customer
	Lines        []LineItem
	FreightValue decimal.Decimal
}

// LineResult reports the outcome of one submitted line.
type LineResult struct {
	ProductID string `json:"product_id"`
	OrderID   int64  `json:"order_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result is the aggregate outcome of a submission.
type Result struct {
	UserID    int64        `json:"user_id"`
	Lines     []LineResult `json:"lines"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// Service places the per-line orders for a checkout against the backend.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*Result, error)
}

type service struct {
	api     backendAPI
	metrics *metrics.CheckoutMetrics
	log     *logger.Logger
}

// NewService builds an order submission service. Metrics and logger may be
// nil in tests.
func NewService(api backendAPI, m *metrics.CheckoutMetrics, log *logger.Logger) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("backend api required")
	}
	return &service{api: api, metrics: m, log: log}, nil
}

// Submit upserts the customer record, then places one order per line
// concurrently. Lines fail independently; a mix of outcomes surfaces as a
// partial-submission error carrying per-line detail, since the customer
// record and any successful orders already exist upstream and are not
// rolled back. Confirmation email failures never fail the submission.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*Result, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order line is required")
	}

	user, err := s.api.CreateUser(ctx, backend.CreateUserRequest{
		Name:      input.Customer.Name,
		CPF:       input.Customer.CPF,
		CEP:       input.Customer.CEP,
		BirthDate: defaultBirthDate,
		Login:     input.Customer.Email,
		Password:  defaultPassword,
		UserType:  defaultUserType,
	})
	if err != nil {
		s.metrics.IncSubmission("user_failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeSubmission, err, "upsert customer record")
	}
	if user == nil || user.ID == 0 {
		s.metrics.IncSubmission("user_failed")
		return nil, pkgerrors.New(pkgerrors.CodeSubmission, "backend returned no usable customer id")
	}

	results := make([]LineResult, len(input.Lines))
	var wg sync.WaitGroup
	for i, line := range input.Lines {
		wg.Add(1)
		go func(i int, line LineItem) {
			defer wg.Done()
			results[i] = s.submitLine(ctx, user.ID, line, input)
		}(i, line)
	}
	wg.Wait()

	result := &Result{UserID: user.ID, Lines: results}
	var lineErrs error
	for _, lr := range results {
		if lr.Error == "" {
			result.Succeeded++
			continue
		}
		result.Failed++
		lineErrs = multierr.Append(lineErrs, fmt.Errorf("product %s: %s", lr.ProductID, lr.Error))
	}

	switch {
	case result.Failed == 0:
		s.metrics.IncSubmission("success")
		return result, nil
	case result.Succeeded == 0:
		s.metrics.IncSubmission("failed")
		return result, pkgerrors.Wrap(pkgerrors.CodeSubmission, lineErrs, "no order line was accepted").
			WithDetails(result)
	default:
		s.metrics.IncSubmission("partial")
		return result, pkgerrors.Wrap(pkgerrors.CodePartialSubmission, lineErrs, "some order lines were rejected").
			WithDetails(result)
	}
}

func (s *service) submitLine(ctx context.Context, userID int64, line LineItem, input SubmitInput) LineResult {
	order, err := s.api.CreateOrder(ctx, backend.CreateOrderRequest{
		ProductID:    line.ProductID,
		UserID:       userID,
		Quantity:     line.Quantity,
		FreightValue: input.FreightValue,
	})
	if err != nil {
		return LineResult{ProductID: line.ProductID, Error: err.Error()}
	}

	if err := s.api.SendEmail(ctx, backend.SendEmailRequest{
		To:      input.Customer.Email,
		Subject: confirmationSubject,
		Text:    confirmationText,
	}); err != nil && s.log != nil {
		s.log.Warn(s.log.WithField(ctx, "product_id", line.ProductID), "confirmation email failed")
	}

	return LineResult{ProductID: line.ProductID, OrderID: order.ID}
}

package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clickbrilhe/storefront-backend/internal/cart"
	"github.com/clickbrilhe/storefront-backend/internal/identity"
	"github.com/clickbrilhe/storefront-backend/internal/orders"
	"github.com/clickbrilhe/storefront-backend/internal/shipping"
	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
	"github.com/clickbrilhe/storefront-backend/pkg/logger"
	"github.com/clickbrilhe/storefront-backend/pkg/metrics"
	"github.com/clickbrilhe/storefront-backend/pkg/pagarme"
	"github.com/clickbrilhe/storefront-backend/pkg/redis"
)

type paymentGateway interface {
	CreatePaymentIntent(ctx context.Context, apiKey string, req pagarme.PaymentIntentRequest) (*pagarme.Charge, error)
}

type credentialSource interface {
	GetCredential(ctx context.Context, slot string) (string, error)
}

// CustomerInput is the payload for the customer step.
type CustomerInput struct {
	Name              string
	IDNumber          string
	Email             string
	EmailConfirmation string
}

// PaymentInput is the payload for the payment step.
type PaymentInput struct {
	Method string
	Card   *pagarme.CardDetails
}

// Service drives the checkout state machine. Each Submit call runs its
// step to completion; guard failures keep the session on its current step
// and record the reason in LastError.
type Service interface {
	Start(ctx context.Context, cartID uuid.UUID) (*Session, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*Session, error)
	SubmitCustomer(ctx context.Context, sessionID uuid.UUID, input CustomerInput) (*Session, error)
	SubmitAddress(ctx context.Context, sessionID uuid.UUID, postalCode string) (*Session, error)
	SubmitPayment(ctx context.Context, sessionID uuid.UUID, input PaymentInput) (*Session, error)
	GoBack(ctx context.Context, sessionID uuid.UUID) (*Session, error)
	Cancel(ctx context.Context, sessionID uuid.UUID) error
}

// Deps wires the orchestrator's collaborators. Metrics and Log may be nil.
type Deps struct {
	Sessions    SessionStore
	Carts       cart.Service
	Identity    identity.Service
	Addresses   *shipping.Resolver
	Freight     *shipping.Quoter
	Orders      orders.Service
	Payments    paymentGateway
	Credentials credentialSource
	Metrics     *metrics.CheckoutMetrics
	Log         *logger.Logger
}

type service struct {
	deps Deps
}

// NewService validates the dependency set and builds the orchestrator.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Sessions == nil:
		return nil, fmt.Errorf("session store required")
	case deps.Carts == nil:
		return nil, fmt.Errorf("cart service required")
	case deps.Identity == nil:
		return nil, fmt.Errorf("identity service required")
	case deps.Addresses == nil:
		return nil, fmt.Errorf("address resolver required")
	case deps.Freight == nil:
		return nil, fmt.Errorf("freight quoter required")
	case deps.Orders == nil:
		return nil, fmt.Errorf("order service required")
	case deps.Payments == nil:
		return nil, fmt.Errorf("payment gateway required")
	case deps.Credentials == nil:
		return nil, fmt.Errorf("credential source required")
	}
	return &service{deps: deps}, nil
}

// Start opens a session for the cart. Empty carts cannot check out.
func (s *service) Start(ctx context.Context, cartID uuid.UUID) (*Session, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	state, err := s.deps.Carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(state.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.New(),
		CartID:    cartID,
		Step:      StepCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.deps.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns the session as stored.
func (s *service) Get(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	return s.deps.Sessions.Get(ctx, sessionID)
}

// SubmitCustomer runs the customer guards: matching email confirmation, a
// checksum-valid CPF, and a known identity. All three must pass before the
// session moves to shipping.
func (s *service) SubmitCustomer(ctx context.Context, sessionID uuid.UUID, input CustomerInput) (*Session, error) {
	session, err := s.require(ctx, sessionID, StepCustomer)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(input.Email)
	if email == "" || email != strings.TrimSpace(input.EmailConfirmation) {
		return nil, s.reject(ctx, session, pkgerrors.New(pkgerrors.CodeValidation, "email and confirmation must match"))
	}

	digits, err := s.deps.Identity.Validate(input.IDNumber)
	if err != nil {
		return nil, s.reject(ctx, session, err)
	}
	person, err := s.deps.Identity.Resolve(ctx, digits)
	if err != nil {
		return nil, s.reject(ctx, session, err)
	}
	if person == nil {
		return nil, s.reject(ctx, session, pkgerrors.New(pkgerrors.CodeNotFound, "identity not found"))
	}

	session.IDNumber = digits
	session.Email = email
	session.CustomerName = strings.TrimSpace(input.Name)
	if session.CustomerName == "" {
		session.CustomerName = person.Name
	}
	return s.advance(ctx, session, StepShipping)
}

// SubmitAddress resolves the postal code and attaches the freight quote
// computed from the cart's total item count.
func (s *service) SubmitAddress(ctx context.Context, sessionID uuid.UUID, postalCode string) (*Session, error) {
	session, err := s.require(ctx, sessionID, StepShipping)
	if err != nil {
		return nil, err
	}

	address, err := s.deps.Addresses.Resolve(ctx, postalCode)
	if err != nil {
		return nil, s.reject(ctx, session, err)
	}

	state, err := s.deps.Carts.Get(ctx, session.CartID)
	if err != nil {
		return nil, s.reject(ctx, session, err)
	}
	quote, err := s.deps.Freight.QuoteForItems(address.CEP, state.TotalItems)
	if err != nil {
		return nil, s.reject(ctx, session, err)
	}

	session.PostalCode = address.CEP
	session.Address = address
	session.Freight = quote
	return s.advance(ctx, session, StepPayment)
}

// SubmitPayment moves the session through processing: it submits one order
// per cart line, then creates the payment intent for the purchase total.
// Orders already placed are not rolled back when payment fails.
func (s *service) SubmitPayment(ctx context.Context, sessionID uuid.UUID, input PaymentInput) (*Session, error) {
	session, err := s.require(ctx, sessionID, StepPayment)
	if err != nil {
		return nil, err
	}

	method := strings.TrimSpace(input.Method)
	switch method {
	case MethodCreditCard, MethodPix, MethodBoleto:
	default:
		return nil, s.reject(ctx, session, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method"))
	}
	if method == MethodCreditCard && input.Card == nil {
		return nil, s.reject(ctx, session, pkgerrors.New(pkgerrors.CodeValidation, "card details are required"))
	}

	apiKey, err := s.deps.Credentials.GetCredential(ctx, redis.PaymentKeySlot)
	if err != nil {
		return nil, s.reject(ctx, session, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment gateway key"))
	}
	if apiKey == "" {
		return nil, s.reject(ctx, session, pkgerrors.New(pkgerrors.CodeValidation, "payment gateway key not configured"))
	}

	state, err := s.deps.Carts.Get(ctx, session.CartID)
	if err != nil {
		return nil, s.reject(ctx, session, err)
	}
	if len(state.Lines) == 0 {
		return nil, s.reject(ctx, session, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"))
	}

	session.Method = method
	if _, err := s.advance(ctx, session, StepProcessing); err != nil {
		return nil, err
	}
	started := time.Now()

	lines := make([]orders.LineItem, 0, len(state.Lines))
	for _, line := range state.Lines {
		lines = append(lines, orders.LineItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
		})
	}
	result, err := s.deps.Orders.Submit(ctx, orders.SubmitInput{
		Customer: orders.Customer{
			Name:  session.CustomerName,
			CPF:   session.IDNumber,
			CEP:   session.PostalCode,
			Email: session.Email,
		},
		Lines:        lines,
		FreightValue: session.Freight.Price,
	})
	if err != nil {
		return nil, s.fail(ctx, session, started, err)
	}

	charge, err := s.deps.Payments.CreatePaymentIntent(ctx, apiKey, pagarme.PaymentIntentRequest{
		Amount:        state.TotalPrice.Add(session.Freight.Price),
		CustomerName:  session.CustomerName,
		CustomerID:    fmt.Sprintf("%d", result.UserID),
		PaymentMethod: method,
		Card:          input.Card,
	})
	if err != nil {
		return nil, s.fail(ctx, session, started, pkgerrors.Wrap(pkgerrors.CodeSubmission, err, "create payment intent"))
	}

	session.ChargeID = charge.ID
	session.ChargeStatus = charge.Status
	session.PixQRCode = charge.PixQRCode
	s.deps.Metrics.ObserveStepDuration(string(StepProcessing), time.Since(started))
	return s.advance(ctx, session, StepSuccess)
}

// GoBack steps shipping back to customer or payment back to shipping.
// Freight is dropped when leaving payment since the destination may change.
func (s *service) GoBack(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	session, err := s.deps.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch session.Step {
	case StepShipping:
		return s.advance(ctx, session, StepCustomer)
	case StepPayment:
		session.PostalCode = ""
		session.Address = nil
		session.Freight = nil
		return s.advance(ctx, session, StepShipping)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot go back from step %q", session.Step))
	}
}

// Cancel discards the session. A session in processing cannot be canceled.
func (s *service) Cancel(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.deps.Sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Step == StepProcessing {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is processing and cannot be canceled")
	}
	return s.deps.Sessions.Delete(ctx, sessionID)
}

// require loads the session and enforces step order: submissions for any
// step other than the current one are state conflicts.
func (s *service) require(ctx context.Context, sessionID uuid.UUID, want Step) (*Session, error) {
	session, err := s.deps.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step == want {
		return session, nil
	}
	if session.Terminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already finished")
	}
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("step %q submitted while checkout is at %q", want, session.Step))
}

// reject records the guard failure on the session without moving it.
func (s *service) reject(ctx context.Context, session *Session, cause error) error {
	session.LastError = cause.Error()
	session.UpdatedAt = time.Now().UTC()
	if err := s.deps.Sessions.Save(ctx, session); err != nil && s.deps.Log != nil {
		s.deps.Log.Error(ctx, "persist checkout guard failure", err)
	}
	s.deps.Metrics.IncStep(string(session.Step), "rejected")
	return cause
}

// fail parks the session in the failed step, keeping the cause visible.
func (s *service) fail(ctx context.Context, session *Session, started time.Time, cause error) error {
	session.LastError = cause.Error()
	session.Step = StepFailed
	session.UpdatedAt = time.Now().UTC()
	if err := s.deps.Sessions.Save(ctx, session); err != nil && s.deps.Log != nil {
		s.deps.Log.Error(ctx, "persist checkout failure", err)
	}
	s.deps.Metrics.IncStep(string(StepProcessing), "failed")
	s.deps.Metrics.ObserveStepDuration(string(StepProcessing), time.Since(started))
	return cause
}

func (s *service) advance(ctx context.Context, session *Session, next Step) (*Session, error) {
	from := session.Step
	session.Step = next
	session.LastError = ""
	session.UpdatedAt = time.Now().UTC()
	if err := s.deps.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	s.deps.Metrics.IncStep(string(from), "advanced")
	return session, nil
}

package checkout

import (
	"context"
	"net/http"

	"github.com/clickbrilhe/storefront-backend/api/responses"
	"github.com/clickbrilhe/storefront-backend/api/validators"
	cartsvc "github.com/clickbrilhe/storefront-backend/internal/cart"
	checkoutsvc "github.com/clickbrilhe/storefront-backend/internal/checkout"
	"github.com/clickbrilhe/storefront-backend/pkg/logger"
	"github.com/clickbrilhe/storefront-backend/pkg/pagarme"
	"github.com/google/uuid"
)

// StartRequest opens a checkout session for a cart.
type StartRequest struct {
	CartID uuid.UUID `json:"cart_id" validate:"required"`
}

// CustomerRequest is the customer step payload. The doubled email field
// exists to catch typos before anything is submitted upstream.
type CustomerRequest struct {
	Name              string `json:"name"`
	CPF               string `json:"cpf" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	EmailConfirmation string `json:"email_confirmation" validate:"required"`
}

// AddressRequest is the shipping step payload.
type AddressRequest struct {
	CEP string `json:"cep" validate:"required"`
}

// CardRequest carries card fields for credit card payments.
type CardRequest struct {
	Number     string `json:"number" validate:"required"`
	HolderName string `json:"holder_name" validate:"required"`
	ExpMonth   string `json:"exp_month" validate:"required"`
	ExpYear    string `json:"exp_year" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
}

// PaymentRequest is the payment step payload.
type PaymentRequest struct {
	Method string       `json:"method" validate:"required,oneof=credit_card pix boleto"`
	Card   *CardRequest `json:"card,omitempty"`
}

// stepContext tags the request logger with the step being submitted so
// failures in the services below are attributable to a screen.
func stepContext(r *http.Request, logg *logger.Logger, step string) context.Context {
	if logg == nil {
		return r.Context()
	}
	return logg.WithCheckoutStep(r.Context(), step)
}

// Start opens a session.
func Start(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload StartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Start(r.Context(), payload.CartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

// Fetch returns the session, including its current step and last error.
func Fetch(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// SubmitCustomer runs the customer step.
func SubmitCustomer(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := stepContext(r, logg, "customer")

		var payload CustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		session, err := svc.SubmitCustomer(ctx, sessionID, checkoutsvc.CustomerInput{
			Name:              payload.Name,
			IDNumber:          payload.CPF,
			Email:             payload.Email,
			EmailConfirmation: payload.EmailConfirmation,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// SubmitAddress runs the shipping step.
func SubmitAddress(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := stepContext(r, logg, "shipping")

		var payload AddressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		session, err := svc.SubmitAddress(ctx, sessionID, payload.CEP)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// SubmitPayment runs the payment step and, on success, clears the cart so
// a finished checkout cannot be replayed from stale cart state.
func SubmitPayment(svc checkoutsvc.Service, carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := stepContext(r, logg, "payment")

		var payload PaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := checkoutsvc.PaymentInput{Method: payload.Method}
		if payload.Card != nil {
			input.Card = &pagarme.CardDetails{
				Number:     payload.Card.Number,
				HolderName: payload.Card.HolderName,
				ExpMonth:   payload.Card.ExpMonth,
				ExpYear:    payload.Card.ExpYear,
				CVV:        payload.Card.CVV,
			}
		}

		session, err := svc.SubmitPayment(ctx, sessionID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if _, err := carts.Clear(ctx, session.CartID); err != nil && logg != nil {
			logg.Error(logg.WithSessionID(ctx, session.ID.String()), "clear cart after checkout", err)
		}

		responses.WriteSuccess(w, session)
	}
}

// GoBack steps the session back one screen.
func GoBack(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.GoBack(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// Cancel abandons the session.
func Cancel(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Cancel(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "canceled"})
	}
}

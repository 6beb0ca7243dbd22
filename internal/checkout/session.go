package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/clickbrilhe/storefront-backend/internal/shipping"
)

// Step is the checkout state machine position.
type Step string

const (
	StepCustomer   Step = "customer"
	StepShipping   Step = "shipping"
	StepPayment    Step = "payment"
	StepProcessing Step = "processing"
	StepSuccess    Step = "success"
	StepFailed     Step = "failed"
)

// Payment methods accepted at SubmitPayment.
const (
	MethodCreditCard = "credit_card"
	MethodPix        = "pix"
	MethodBoleto     = "boleto"
)

// Session is one checkout attempt for one cart. Guard failures keep the
// step and land in LastError; only a passing guard advances Step.
type Session struct {
	ID           uuid.UUID         `json:"id"`
	CartID       uuid.UUID         `json:"cart_id"`
	Step         Step              `json:"step"`
	IDNumber     string            `json:"id_number,omitempty"`
	CustomerName string            `json:"customer_name,omitempty"`
	Email        string            `json:"email,omitempty"`
	PostalCode   string            `json:"postal_code,omitempty"`
	Address      *shipping.Address `json:"address,omitempty"`
	Freight      *shipping.Quote   `json:"freight,omitempty"`
	Method       string            `json:"method,omitempty"`
	ChargeID     string            `json:"charge_id,omitempty"`
	ChargeStatus string            `json:"charge_status,omitempty"`
	PixQRCode    string            `json:"pix_qr_code,omitempty"`
	LastError    string            `json:"last_error,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Terminal reports whether the session accepts no further submissions.
func (s *Session) Terminal() bool {
	return s.Step == StepSuccess || s.Step == StepFailed
}

// Package types holds the JSON envelopes shared by every storefront API
// response. Handlers never write raw payloads; data travels under "data"
// and failures under "error" so the frontend can branch on one shape.
package types

// SuccessEnvelope wraps any successful payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Code matches the application error
// codes (VALIDATION_ERROR, STATE_CONFLICT, ...); Details carries
// structured context such as per-line submission outcomes when the code
// allows it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

package shipping

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
	"github.com/clickbrilhe/storefront-backend/pkg/viacep"
)

// Address is the resolved delivery destination. Street and Neighborhood
// come from the directory; Number and Complement stay with the customer.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	Region       string `json:"region"`
}

type cepDirectory interface {
	Lookup(ctx context.Context, cep string) (*viacep.Result, error)
}

// Resolver turns raw postal codes into delivery addresses.
type Resolver struct {
	directory cepDirectory
}

// NewResolver builds a resolver backed by the postal-code directory.
func NewResolver(directory cepDirectory) (*Resolver, error) {
	if directory == nil {
		return nil, fmt.Errorf("postal code directory required")
	}
	return &Resolver{directory: directory}, nil
}

// NormalizeCEP strips every non-digit and checks for eight digits.
func NormalizeCEP(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 8 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "postal code must have eight digits")
	}
	return digits, nil
}

// Resolve normalizes the postal code and looks it up. Codes unknown to the
// directory fail with a not-found error naming the code.
func (r *Resolver) Resolve(ctx context.Context, rawCEP string) (*Address, error) {
	cep, err := NormalizeCEP(rawCEP)
	if err != nil {
		return nil, err
	}

	result, err := r.directory.Lookup(ctx, cep)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "postal code not found").
			WithDetails(map[string]string{"cep": cep})
	}

	return &Address{
		CEP:          cep,
		Street:       result.Street,
		Neighborhood: result.Neighborhood,
		City:         result.City,
		Region:       result.Region,
	}, nil
}

package identity

import (
	"context"
	"fmt"

	"github.com/clickbrilhe/storefront-backend/pkg/receita"
)

// Service validates CPFs and resolves them against the registry.
type Service interface {
	Validate(raw string) (string, error)
	Resolve(ctx context.Context, raw string) (*receita.Person, error)
}

type service struct {
	resolver receita.Resolver
}

// NewService builds an identity service backed by the provided resolver.
func NewService(resolver receita.Resolver) (Service, error) {
	if resolver == nil {
		return nil, fmt.Errorf("identity resolver required")
	}
	return &service{resolver: resolver}, nil
}

// Validate checks the CPF checksum and returns the normalized digits.
func (s *service) Validate(raw string) (string, error) {
	return Validate(raw)
}

// Resolve validates the CPF locally, then looks it up in the registry.
// A CPF that passes the checksum but is unknown to the registry resolves
// to (nil, nil); the caller decides whether that blocks its flow.
func (s *service) Resolve(ctx context.Context, raw string) (*receita.Person, error) {
	digits, err := Validate(raw)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, digits)
}

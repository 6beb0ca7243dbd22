package receita

import "context"

// StubResolver is the deterministic stand-in used while no live identity
// integration is configured. It answers every lookup with the same record,
// echoing the queried number.
type StubResolver struct {
	Name   string
	Status string
}

// NewStubResolver returns a resolver with the default stub identity.
func NewStubResolver() *StubResolver {
	return &StubResolver{Name: "Heitor A B", Status: "valido"}
}

// Resolve returns the stub record for any identity number.
func (s *StubResolver) Resolve(_ context.Context, idNumber string) (*Person, error) {
	name := s.Name
	if name == "" {
		name = "Heitor A B"
	}
	status := s.Status
	if status == "" {
		status = "valido"
	}
	return &Person{Name: name, IDNumber: idNumber, Status: status}, nil
}

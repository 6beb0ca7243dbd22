package cart

import (
	"context"

	"github.com/google/uuid"
)

// Store persists cart state. Update runs fn against the current state of
// the cart inside a read-modify-write critical section; the state fn
// receives is private to the call and whatever fn leaves behind becomes
// the new authoritative snapshot. A cart that was never written before is
// presented to fn as an empty cart.
type Store interface {
	Get(ctx context.Context, cartID uuid.UUID) (*State, error)
	Update(ctx context.Context, cartID uuid.UUID, fn func(state *State) error) (*State, error)
}

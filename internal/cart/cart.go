package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one product entry in a cart. UnitPrice arrives already
// discount-adjusted and MaxQuantity mirrors available stock at the moment
// the line was added; neither is re-checked against the live catalog.
type Line struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	MaxQuantity int             `json:"max_quantity"`
}

// State is the cart aggregate. TotalItems and TotalPrice are recomputed by
// every mutation before the state becomes visible to any caller.
type State struct {
	ID         uuid.UUID       `json:"id"`
	Lines      []Line          `json:"lines"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// NewState returns an empty cart for the given key.
func NewState(id uuid.UUID) *State {
	return &State{
		ID:         id,
		Lines:      []Line{},
		TotalPrice: decimal.Zero,
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Lines = make([]Line, len(s.Lines))
	copy(clone.Lines, s.Lines)
	return &clone
}

func (s *State) recompute() {
	items := 0
	price := decimal.Zero
	for _, line := range s.Lines {
		items += line.Quantity
		price = price.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	s.TotalItems = items
	s.TotalPrice = price
}

func (s *State) lineIndex(productID string) int {
	for i, line := range s.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

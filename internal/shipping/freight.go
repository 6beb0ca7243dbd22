package shipping

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
)

// Quote is a freight estimate for one destination and payload weight.
type Quote struct {
	Price    decimal.Decimal `json:"price"`
	Estimate string          `json:"estimate"`
}

// Quoter prices freight from the destination's leading postal digit plus a
// weight surcharge. The bands approximate distance from the distribution
// center; no carrier is consulted.
type Quoter struct {
	unitWeightGrams int
}

// NewQuoter builds a quoter that assumes each item weighs unitWeightGrams.
// Non-positive values fall back to 500g.
func NewQuoter(unitWeightGrams int) *Quoter {
	if unitWeightGrams <= 0 {
		unitWeightGrams = 500
	}
	return &Quoter{unitWeightGrams: unitWeightGrams}
}

// QuoteForItems prices freight for totalItems units shipped to cep. The
// postal code must already be normalized to eight digits.
func (q *Quoter) QuoteForItems(cep string, totalItems int) (*Quote, error) {
	return q.QuoteForWeight(cep, totalItems*q.unitWeightGrams)
}

// QuoteForWeight prices freight for an explicit payload weight in grams.
func (q *Quoter) QuoteForWeight(cep string, weightGrams int) (*Quote, error) {
	if len(cep) != 8 || cep[0] < '0' || cep[0] > '9' {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "postal code must be normalized to eight digits")
	}
	if weightGrams < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight must be non-negative")
	}

	base, estimate := regionBand(cep[0])
	surcharge := weightSurcharge(weightGrams)
	return &Quote{
		Price:    base.Add(surcharge),
		Estimate: estimate,
	}, nil
}

func regionBand(leading byte) (decimal.Decimal, string) {
	switch {
	case leading <= '3':
		return decimal.NewFromInt(15), "1-2 dias úteis"
	case leading <= '6':
		return decimal.NewFromInt(25), "2-4 dias úteis"
	default:
		return decimal.NewFromInt(35), "3-7 dias úteis"
	}
}

// weightSurcharge charges 5 per started kilogram.
func weightSurcharge(weightGrams int) decimal.Decimal {
	kilos := (weightGrams + 999) / 1000
	return decimal.NewFromInt(int64(kilos) * 5)
}

package session

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppliedDiscount is either a resolved discount or nothing.
type AppliedDiscount struct {
	id     uuid.UUID
	code   string
	amount decimal.Decimal
	ok     bool
}

func NoDiscount() AppliedDiscount {
	return AppliedDiscount{}
}

func WithDiscount(id uuid.UUID, code string, amount decimal.Decimal) AppliedDiscount {
	return AppliedDiscount{id: id, code: code, amount: amount, ok: true}
}

func (d AppliedDiscount) IsPresent() bool         { return d.ok }
func (d AppliedDiscount) Code() string            { return d.code }
func (d AppliedDiscount) Amount() decimal.Decimal { return d.amount }

func (d AppliedDiscount) ID() *uuid.UUID {
	if !d.ok {
		return nil
	}
	id := d.id
	return &id
}

type PriceCalculator interface {
	Calculate(basePrice decimal.Decimal, discount AppliedDiscount) decimal.Decimal
}

type DefaultPriceCalculator struct{}

func NewDefaultPriceCalculator() *DefaultPriceCalculator {
	return &DefaultPriceCalculator{}
}

// Calculate returns max(0, base - discount). No rounding is applied.
func (DefaultPriceCalculator) Calculate(basePrice decimal.Decimal, discount AppliedDiscount) decimal.Decimal {
	if !discount.IsPresent() {
		return basePrice
	}
	price := basePrice.Sub(discount.Amount())
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

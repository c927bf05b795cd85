// Package pricing computes line prices. It is the single source of truth for
// money math: the cart view and the checkout both go through ComputeLine, so a
// cart preview and the order it turns into always agree.
package pricing

import "github.com/shopspring/decimal"

// Line is the priced result for one (product, quantity) pair.
type Line struct {
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// UnitPrice picks the effective price for a product: the discount price when
// one is set and positive, the selling price otherwise.
func UnitPrice(sellingPrice decimal.Decimal, discountPrice decimal.NullDecimal) decimal.Decimal {
	if discountPrice.Valid && discountPrice.Decimal.GreaterThan(decimal.Zero) {
		return discountPrice.Decimal
	}
	return sellingPrice
}

// ComputeLine returns the unit price and line total for a quantity of a
// product, both rounded to 2 decimal places, half up.
func ComputeLine(sellingPrice decimal.Decimal, discountPrice decimal.NullDecimal, quantity int) Line {
	unit := UnitPrice(sellingPrice, discountPrice).Round(2)
	total := unit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	return Line{UnitPrice: unit, LineTotal: total}
}

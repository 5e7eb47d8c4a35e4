// Package pricing computes order totals in exact decimal arithmetic.
package pricing

import "github.com/shopspring/decimal"

// Line is one priced order line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Value returns UnitPrice * Quantity.
func (l Line) Value() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Subtotal sums the line values.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Value())
	}
	return sum
}

// CalculateTotal returns the line subtotal plus the delivery fee. Prices
// carry two fractional digits, so the result is exact to the cent.
func CalculateTotal(lines []Line, deliveryFee decimal.Decimal) decimal.Decimal {
	return Subtotal(lines).Add(deliveryFee).Round(2)
}

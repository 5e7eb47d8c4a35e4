package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTotal_CheckoutScenario(t *testing.T) {
	lines := []Line{
		{UnitPrice: decimal.RequireFromString("9.99"), Quantity: 2},
		{UnitPrice: decimal.RequireFromString("5.50"), Quantity: 1},
	}
	total := CalculateTotal(lines, decimal.RequireFromString("3.00"))
	assert.Equal(t, "28.48", total.StringFixed(2))
}

func TestCalculateTotal_NoFloatDrift(t *testing.T) {
	// 0.10 is not representable in binary floating point; a thousand of them
	// must still sum to exactly 100.00.
	lines := make([]Line, 1000)
	for i := range lines {
		lines[i] = Line{UnitPrice: decimal.RequireFromString("0.10"), Quantity: 1}
	}
	total := CalculateTotal(lines, decimal.Zero)
	assert.True(t, total.Equal(decimal.RequireFromString("100.00")), "got %s", total)
}

func TestCalculateTotal_MatchesIntegerCents(t *testing.T) {
	prices := []string{"0.01", "1.99", "12.35", "999.99", "7.07", "0.33"}
	var lines []Line
	var cents int64
	for i, p := range prices {
		qty := i%10 + 1
		price := decimal.RequireFromString(p)
		lines = append(lines, Line{UnitPrice: price, Quantity: qty})
		cents += price.Shift(2).IntPart() * int64(qty)
	}
	fee := decimal.RequireFromString("4.99")
	cents += 499

	total := CalculateTotal(lines, fee)
	assert.Equal(t, cents, total.Shift(2).IntPart())
	assert.True(t, total.Equal(decimal.New(cents, -2)))
}

func TestSubtotal_Empty(t *testing.T) {
	assert.True(t, Subtotal(nil).IsZero())
	assert.Equal(t, "2.50", CalculateTotal(nil, decimal.RequireFromString("2.5")).StringFixed(2))
}

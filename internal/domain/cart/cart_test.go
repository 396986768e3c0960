package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name string
		line Line
		want string
	}{
		{
			name: "sale price wins when positive",
			line: Line{Price: decimal.RequireFromString("60"), SalePrice: decimal.RequireFromString("40")},
			want: "40",
		},
		{
			name: "list price when sale price zero",
			line: Line{Price: decimal.RequireFromString("100")},
			want: "100",
		},
		{
			name: "list price when sale price negative",
			line: Line{Price: decimal.RequireFromString("25"), SalePrice: decimal.RequireFromString("-1")},
			want: "25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, decimal.RequireFromString(tt.want).Equal(tt.line.EffectivePrice()))
		})
	}
}

func TestTotal(t *testing.T) {
	c := Cart{
		ID: "cart-1",
		Items: []Line{
			{ProductID: "p1", Price: decimal.RequireFromString("100"), Quantity: 2},
			{ProductID: "p2", Price: decimal.RequireFromString("60"), SalePrice: decimal.RequireFromString("40"), Quantity: 1},
		},
	}

	assert.True(t, decimal.RequireFromString("240").Equal(c.Total()))
}

func TestTotal_EmptyCart(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(Cart{}.Total()))
	assert.True(t, Cart{}.IsEmpty())
}

func TestTotal_FractionalPrices(t *testing.T) {
	c := Cart{
		Items: []Line{
			{ProductID: "p1", Price: decimal.RequireFromString("19.99"), Quantity: 3},
		},
	}

	assert.True(t, decimal.RequireFromString("59.97").Equal(c.Total()))
}

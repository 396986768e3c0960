package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
)

func TestMemory_Empty(t *testing.T) {
	m := NewMemory()

	assert.True(t, m.Cart().IsEmpty())
	_, ok := m.User()
	assert.False(t, ok)
	assert.Equal(t, OrderSlice{}, m.Order())
}

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory()

	c := cart.Cart{
		ID:    "cart-1",
		Items: []cart.Line{{ProductID: "p1", Price: decimal.NewFromInt(10), Quantity: 2}},
	}
	m.SetCart(c)
	assert.Equal(t, c, m.Cart())

	m.SetUser(User{ID: "u1", UserName: "alice", Email: "alice@example.com"})
	u, ok := m.User()
	assert.True(t, ok)
	assert.Equal(t, "alice", u.UserName)

	m.SetOrder(OrderSlice{OrderID: "O1", GatewayOrderID: "G1"})
	assert.Equal(t, "G1", m.Order().GatewayOrderID)
}

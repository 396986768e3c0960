package admin

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	orders []Order
	err    error
}

func (m *mockSource) ListOrders(_ context.Context) ([]Order, error) {
	return m.orders, m.err
}

func (m *mockSource) OrderDetails(_ context.Context, id string) (*Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.orders {
		if m.orders[i].ID == id {
			return &m.orders[i], nil
		}
	}
	return nil, errors.New("not found")
}

func TestBadgeVariant(t *testing.T) {
	assert.Equal(t, BadgeSuccess, BadgeVariant("confirmed"))
	assert.Equal(t, BadgeDestructive, BadgeVariant("rejected"))
	assert.Equal(t, BadgeDefault, BadgeVariant("pending"))
	assert.Equal(t, BadgeDefault, BadgeVariant("inProcess"))
}

func TestRows(t *testing.T) {
	src := &mockSource{orders: []Order{
		{
			ID:          "O1",
			UserName:    "alice",
			OrderDate:   time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC),
			OrderStatus: "confirmed",
			TotalAmount: decimal.RequireFromString("240"),
		},
		{
			ID:          "O2",
			UserName:    "bob",
			OrderDate:   time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
			OrderStatus: "rejected",
			TotalAmount: decimal.RequireFromString("99.50"),
		},
	}}

	rows, err := NewViewer(src).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2025-03-14", rows[0].OrderDate, "date part only")
	assert.Equal(t, BadgeSuccess, rows[0].Badge)
	assert.Equal(t, BadgeDestructive, rows[1].Badge)
	assert.True(t, decimal.RequireFromString("99.50").Equal(rows[1].TotalAmount))
}

func TestRows_SourceError(t *testing.T) {
	_, err := NewViewer(&mockSource{err: errors.New("backend down")}).Rows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list orders")
}

func TestDetails(t *testing.T) {
	src := &mockSource{orders: []Order{{ID: "O1", UserName: "alice"}}}

	o, err := NewViewer(src).Details(context.Background(), "O1")
	require.NoError(t, err)
	assert.Equal(t, "alice", o.UserName)

	_, err = NewViewer(src).Details(context.Background(), "missing")
	require.Error(t, err)
}

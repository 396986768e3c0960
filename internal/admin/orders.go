// Package admin builds the view-models for the admin order screens: the
// order list table and the per-order details dialog.
package admin

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-checkout/internal/domain/checkout"
)

// Order is an order record as returned by the shop API's admin endpoints.
type Order struct {
	ID            string               `json:"_id"`
	UserName      string               `json:"userName"`
	OrderDate     time.Time            `json:"orderDate"`
	OrderStatus   string               `json:"orderStatus"`
	PaymentMethod string               `json:"paymentMethod"`
	PaymentStatus string               `json:"paymentStatus"`
	TotalAmount   decimal.Decimal      `json:"totalAmount"`
	Items         []checkout.OrderLine `json:"cartItems"`
	AddressInfo   checkout.Address     `json:"addressInfo"`
}

// Source provides admin order data.
type Source interface {
	ListOrders(ctx context.Context) ([]Order, error)
	OrderDetails(ctx context.Context, orderID string) (*Order, error)
}

// Badge variants for order status display.
const (
	BadgeSuccess     = "success"
	BadgeDestructive = "destructive"
	BadgeDefault     = "default"
)

// BadgeVariant maps an order status to its display badge variant:
// confirmed orders get the success badge, rejected orders the destructive
// one, everything else the default.
func BadgeVariant(status string) string {
	switch status {
	case "confirmed":
		return BadgeSuccess
	case "rejected":
		return BadgeDestructive
	default:
		return BadgeDefault
	}
}

// Row is one row of the admin order list table.
type Row struct {
	OrderID     string          `json:"orderId"`
	UserName    string          `json:"userName"`
	OrderDate   string          `json:"orderDate"`
	OrderStatus string          `json:"orderStatus"`
	Badge       string          `json:"badge"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Viewer reads orders from a Source and shapes them for display.
type Viewer struct {
	src Source
}

// NewViewer creates a Viewer backed by src.
func NewViewer(src Source) *Viewer {
	return &Viewer{src: src}
}

// Rows returns the order list shaped for the admin table. Order dates are
// reduced to their date part.
func (v *Viewer) Rows(ctx context.Context) ([]Row, error) {
	orders, err := v.src.ListOrders(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	rows := make([]Row, len(orders))
	for i, o := range orders {
		rows[i] = Row{
			OrderID:     o.ID,
			UserName:    o.UserName,
			OrderDate:   o.OrderDate.Format("2006-01-02"),
			OrderStatus: o.OrderStatus,
			Badge:       BadgeVariant(o.OrderStatus),
			TotalAmount: o.TotalAmount,
		}
	}
	return rows, nil
}

// Details returns the full order record for the details dialog.
func (v *Viewer) Details(ctx context.Context, orderID string) (*Order, error) {
	o, err := v.src.OrderDetails(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "order details")
	}
	return o, nil
}

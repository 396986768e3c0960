// Package checkout implements the storefront checkout flow: order draft
// construction and submission, the payment phase state machine, and the
// bridge between the payment widget's completion callback and the capture
// endpoint.
package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Address is the shipping address selected for a checkout session.
type Address struct {
	ID      string `json:"addressId"`
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

// OrderLine is one ordered item inside an order draft. Price is the
// effective unit price at draft time (sale price when positive).
type OrderLine struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderDraft is the locally assembled order payload submitted to the shop
// API's order-creation endpoint.
type OrderDraft struct {
	UserID          string          `json:"userId"`
	UserName        string          `json:"userName"`
	CartID          string          `json:"cartId"`
	Items           []OrderLine     `json:"cartItems"`
	AddressInfo     Address         `json:"addressInfo"`
	OrderStatus     string          `json:"orderStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentStatus   string          `json:"paymentStatus"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	OrderDate       time.Time       `json:"orderDate"`
	OrderUpdateDate time.Time       `json:"orderUpdateDate"`
	PaymentID       string          `json:"paymentId"`
	PayerID         string          `json:"payerId"`
}

// OrderCreated is the shop API's response to an order draft submission.
// Exactly one of GatewayOrderID (widget path) or ApprovalURL (redirect path)
// is populated on success.
type OrderCreated struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	OrderID        string `json:"orderId"`
	GatewayOrderID string `json:"razorpayOrderId"`
	ApprovalURL    string `json:"approvalURL"`
}

// CaptureRequest confirms a gateway-authorized payment with the shop API.
type CaptureRequest struct {
	PaymentID string `json:"paymentId"`
	PayerID   string `json:"payerId"`
	OrderID   string `json:"orderId"`
}

// CaptureResult is the terminal response of the capture endpoint.
type CaptureResult struct {
	Success bool `json:"success"`
}

// API is the shop backend surface the checkout flow submits to.
type API interface {
	CreateOrder(ctx context.Context, draft *OrderDraft) (*OrderCreated, error)
	CapturePayment(ctx context.Context, req CaptureRequest) (*CaptureResult, error)
}

// Notifier surfaces user-visible checkout notifications.
type Notifier interface {
	Success(title, description string)
	Failure(title, description string)
}

// Package store models the client-side application state the checkout flow
// reads from and dispatches to. The flow depends only on the Store interface,
// so tests and alternative frontends can substitute their own state holder.
package store

import (
	"sync"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
)

// User is the authenticated shopper from the auth state slice.
type User struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

// OrderSlice holds the identifiers produced by the last order creation,
// including the approval URL used by the redirect-based payment path.
type OrderSlice struct {
	OrderID        string `json:"orderId"`
	GatewayOrderID string `json:"gatewayOrderId"`
	ApprovalURL    string `json:"approvalURL"`
}

// Store exposes explicit read and dispatch operations over the shared
// client state: the shop cart, the authenticated user, and the order slice.
type Store interface {
	Cart() cart.Cart
	SetCart(cart.Cart)
	User() (User, bool)
	SetUser(User)
	Order() OrderSlice
	SetOrder(OrderSlice)
}

// Memory is a thread-safe in-memory Store.
type Memory struct {
	mu      sync.RWMutex
	cart    cart.Cart
	user    User
	hasUser bool
	order   OrderSlice
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Cart() cart.Cart {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cart
}

func (m *Memory) SetCart(c cart.Cart) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = c
}

// User returns the authenticated user and whether one is present.
func (m *Memory) User() (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user, m.hasUser
}

func (m *Memory) SetUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = u
	m.hasUser = true
}

func (m *Memory) Order() OrderSlice {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.order
}

func (m *Memory) SetOrder(o OrderSlice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = o
}

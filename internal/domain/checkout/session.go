package checkout

import (
	"sync"

	"github.com/google/uuid"

	"github.com/xenking/storefront-checkout/internal/gateway"
)

// Phase is the payment phase of a checkout session.
//
// The machine is linear: Idle → AwaitingOrderCreation → AwaitingCapture →
// {Succeeded | Failed | Cancelled}. Succeeded, Failed, and Cancelled are
// terminal for the session; a fresh attempt requires a new session with a
// newly built order draft. Precondition and order-creation failures return
// the session to Idle.
type Phase string

const (
	PhaseIdle                  Phase = "idle"
	PhaseAwaitingOrderCreation Phase = "awaiting_order_creation"
	PhaseAwaitingCapture       Phase = "awaiting_capture"
	PhaseSucceeded             Phase = "succeeded"
	PhaseFailed                Phase = "failed"
	PhaseCancelled             Phase = "cancelled"
)

// Terminal reports whether the phase ends the session.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseSucceeded, PhaseFailed, PhaseCancelled:
		return true
	}
	return false
}

// Session is the process-local state of one checkout attempt. It lives for
// a single checkout session and is never persisted. All methods are safe
// for concurrent use; each interaction event runs to completion under the
// session lock before the next is observed.
type Session struct {
	id string

	mu         sync.Mutex
	phase      Phase
	address    *Address
	orderID    string
	gatewayOID string
	redirect   string
	navigateTo string
	pending    *gateway.Checkout
}

// NewSession creates an idle checkout session.
func NewSession() *Session {
	return &Session{
		id:    uuid.New().String(),
		phase: PhaseIdle,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Phase returns the current payment phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// SelectAddress sets the shipping address for this session.
func (s *Session) SelectAddress(a Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = &a
}

// SelectedAddress returns the selected address, if any.
func (s *Session) SelectedAddress() (Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.address == nil {
		return Address{}, false
	}
	return *s.address, true
}

// OrderID returns the backend order id once the order has been created.
func (s *Session) OrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderID
}

// GatewayOrderID returns the gateway order id for the widget path.
func (s *Session) GatewayOrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gatewayOID
}

// RedirectURL returns the approval URL when the redirect path was taken.
func (s *Session) RedirectURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redirect
}

// NavigateTo returns the view the shopper should be sent to after a
// successful capture, or empty when no navigation has been triggered.
func (s *Session) NavigateTo() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigateTo
}

// beginCheckout atomically validates the re-entry guard and the checkout
// preconditions, then moves the session to AwaitingOrderCreation. On a
// precondition failure the phase is left untouched.
func (s *Session) beginCheckout(cartEmpty bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseAwaitingOrderCreation, PhaseAwaitingCapture:
		return ErrCheckoutInProgress
	case PhaseSucceeded, PhaseFailed, PhaseCancelled:
		return ErrCheckoutInProgress
	}

	// Precondition order matters: the cart check wins over the address check.
	if cartEmpty {
		return ErrEmptyCart
	}
	if s.address == nil {
		return ErrNoAddressSelected
	}

	s.phase = PhaseAwaitingOrderCreation
	return nil
}

// resetToIdle returns the session to Idle after a failed order creation.
func (s *Session) resetToIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseIdle
}

// orderCreated records the identifiers from a successful order creation and
// advances the session to AwaitingCapture on the widget path. On the
// redirect path no further phase transition happens; the redirect target
// owns the rest of the flow.
func (s *Session) orderCreated(orderID, gatewayOrderID, approvalURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orderID = orderID
	s.gatewayOID = gatewayOrderID
	s.redirect = approvalURL
	if gatewayOrderID != "" {
		s.phase = PhaseAwaitingCapture
	}
}

func (s *Session) setPending(c *gateway.Checkout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = c
}

func (s *Session) pendingCheckout() *gateway.Checkout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// settle records the terminal phase of the session and, on success, the
// navigation target. Navigation is recorded at most once.
func (s *Session) settle(phase Phase, navigateTo string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = phase
	s.pending = nil
	if navigateTo != "" && s.navigateTo == "" {
		s.navigateTo = navigateTo
	}
}

// fail marks the session Failed.
func (s *Session) fail() {
	s.settle(PhaseFailed, "")
}

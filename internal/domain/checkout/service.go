package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/gateway"
	"github.com/xenking/storefront-checkout/internal/store"
)

// Widget is the payment widget surface the coordinator drives.
type Widget interface {
	Open(ctx context.Context, gatewayOrderID string, amount decimal.Decimal, prefill gateway.Prefill) (*gateway.Checkout, error)
	Resolve(gatewayOrderID string, conf gateway.Confirmation) error
	Dismiss(gatewayOrderID string) error
}

// Config holds checkout flow settings.
type Config struct {
	// PaymentMethod is recorded on every order draft.
	PaymentMethod string
	// SuccessPath is the view the shopper is sent to after a successful
	// capture.
	SuccessPath string
}

// InitiateResult is the outcome of a successful checkout initiation. On the
// widget path WidgetOptions carries the configuration for the hosted widget;
// on the redirect path RedirectURL carries the approval URL and the redirect
// target owns the rest of the flow.
type InitiateResult struct {
	OrderID        string
	GatewayOrderID string
	WidgetOptions  *gateway.Options
	RedirectURL    string
}

// Service is the order initiator and payment coordinator for checkout
// sessions. It reads cart and user state from the injected store, submits
// order drafts and capture requests to the shop API, and drives the payment
// widget.
type Service struct {
	cfg      Config
	store    store.Store
	api      API
	widget   Widget
	notifier Notifier

	now func() time.Time
}

// NewService creates a checkout Service with the required dependencies.
func NewService(cfg Config, st store.Store, api API, widget Widget, notifier Notifier) *Service {
	if cfg.PaymentMethod == "" {
		cfg.PaymentMethod = "razorpay"
	}
	if cfg.SuccessPath == "" {
		cfg.SuccessPath = "/shop/payment-success"
	}
	return &Service{
		cfg:      cfg,
		store:    st,
		api:      api,
		widget:   widget,
		notifier: notifier,
		now:      time.Now,
	}
}

// NewSession starts a fresh idle checkout session.
func (s *Service) NewSession() *Session {
	return NewSession()
}

// InitiateCheckout validates preconditions, builds an order draft from the
// current cart and user state, submits it, and on success either opens the
// payment widget or requests a redirect to the approval URL.
//
// Precondition failures and re-entry attempts perform no network call. Any
// order-creation failure, transport or application level, returns the
// session to Idle with no partial state retained.
func (s *Service) InitiateCheckout(ctx context.Context, sess *Session) (*InitiateResult, error) {
	lg := zctx.From(ctx).With(zap.String("session_id", sess.ID()))

	c := s.store.Cart()
	if err := sess.beginCheckout(c.IsEmpty()); err != nil {
		s.reportPrecondition(err)
		return nil, err
	}

	addr, _ := sess.SelectedAddress()
	user, _ := s.store.User()
	draft := s.buildDraft(c, addr, user)

	lg.Info("Submitting order draft",
		zap.String("cart_id", draft.CartID),
		zap.Int("items", len(draft.Items)),
		zap.String("total", draft.TotalAmount.String()),
	)

	created, err := s.api.CreateOrder(ctx, draft)
	if err != nil {
		sess.resetToIdle()
		s.notifier.Failure("Order Failed", "Your order could not be created. Please try again.")
		lg.Error("Order creation failed", zap.Error(err))
		return nil, &OrderCreationFailedError{Err: err}
	}
	if !created.Success || (created.GatewayOrderID == "" && created.ApprovalURL == "") {
		sess.resetToIdle()
		s.notifier.Failure("Order Failed", "Your order could not be created. Please try again.")
		lg.Warn("Order creation rejected", zap.String("message", created.Message))
		return nil, &OrderCreationFailedError{Message: created.Message}
	}

	s.store.SetOrder(store.OrderSlice{
		OrderID:        created.OrderID,
		GatewayOrderID: created.GatewayOrderID,
		ApprovalURL:    created.ApprovalURL,
	})

	// Redirect path: the approval URL target owns the rest of the flow,
	// so no further local phase transition happens.
	if created.GatewayOrderID == "" {
		sess.orderCreated(created.OrderID, "", created.ApprovalURL)
		lg.Info("Redirecting to approval URL", zap.String("order_id", created.OrderID))
		return &InitiateResult{
			OrderID:     created.OrderID,
			RedirectURL: created.ApprovalURL,
		}, nil
	}

	sess.orderCreated(created.OrderID, created.GatewayOrderID, "")

	pending, err := s.widget.Open(ctx, created.GatewayOrderID, draft.TotalAmount, gateway.Prefill{
		Name:  user.UserName,
		Email: user.Email,
	})
	if err != nil {
		sess.fail()
		s.notifier.Failure("Payment Unavailable", "The payment widget could not be loaded.")
		lg.Error("Widget open failed", zap.Error(err))
		return nil, &WidgetUnavailableError{Err: err}
	}
	sess.setPending(pending)

	opts := pending.Options()
	lg.Info("Payment widget opened",
		zap.String("order_id", created.OrderID),
		zap.String("gateway_order_id", created.GatewayOrderID),
		zap.Int64("amount_minor", opts.Amount),
	)

	return &InitiateResult{
		OrderID:        created.OrderID,
		GatewayOrderID: created.GatewayOrderID,
		WidgetOptions:  &opts,
	}, nil
}

// Confirm feeds the widget's completion callback payload into the pending
// checkout of this session.
func (s *Service) Confirm(sess *Session, conf gateway.Confirmation) error {
	if sess.pendingCheckout() == nil {
		return ErrNoPaymentPending
	}
	return s.widget.Resolve(sess.GatewayOrderID(), conf)
}

// Dismiss marks the pending widget of this session as abandoned by the
// shopper.
func (s *Service) Dismiss(sess *Session) error {
	if sess.pendingCheckout() == nil {
		return ErrNoPaymentPending
	}
	return s.widget.Dismiss(sess.GatewayOrderID())
}

// AwaitOutcome blocks until the pending widget settles, then performs the
// capture step for a confirmation or cancels the session for a dismissal.
// Capture is only ever attempted after a completion callback, which itself
// requires a successfully created order.
func (s *Service) AwaitOutcome(ctx context.Context, sess *Session) (Phase, error) {
	pending := sess.pendingCheckout()
	if pending == nil {
		return sess.Phase(), ErrNoPaymentPending
	}

	select {
	case <-ctx.Done():
		return sess.Phase(), ctx.Err()
	case out := <-pending.Outcome():
		if !out.Confirmed {
			sess.settle(PhaseCancelled, "")
			s.notifier.Failure("Payment Cancelled", "You closed the payment window before completing payment.")
			zctx.From(ctx).Info("Payment dismissed", zap.String("session_id", sess.ID()))
			return PhaseCancelled, nil
		}
		return s.capture(ctx, sess, out.Confirmation)
	}
}

func (s *Service) capture(ctx context.Context, sess *Session, conf gateway.Confirmation) (Phase, error) {
	lg := zctx.From(ctx).With(
		zap.String("session_id", sess.ID()),
		zap.String("order_id", sess.OrderID()),
	)

	res, err := s.api.CapturePayment(ctx, CaptureRequest{
		PaymentID: conf.PaymentID,
		PayerID:   conf.PayerID,
		OrderID:   sess.OrderID(),
	})
	if err != nil {
		sess.fail()
		s.notifier.Failure("Payment Failed!", "There was an issue capturing your payment.")
		lg.Error("Capture request failed", zap.Error(err))
		return PhaseFailed, &CaptureFailedError{Err: err}
	}
	if !res.Success {
		sess.fail()
		s.notifier.Failure("Payment Failed!", "There was an issue capturing your payment.")
		lg.Warn("Capture rejected")
		return PhaseFailed, &CaptureFailedError{Err: errors.New("capture rejected")}
	}

	sess.settle(PhaseSucceeded, s.cfg.SuccessPath)
	s.notifier.Success("Payment Successful!", "Your payment has been successfully processed.")
	lg.Info("Payment captured", zap.String("payment_id", conf.PaymentID))
	return PhaseSucceeded, nil
}

// buildDraft assembles the order payload from the current cart, the selected
// address, and the authenticated user. Every attempt rebuilds the draft from
// current state; drafts are never reused.
func (s *Service) buildDraft(c cart.Cart, addr Address, user store.User) *OrderDraft {
	items := make([]OrderLine, len(c.Items))
	for i, l := range c.Items {
		items[i] = OrderLine{
			ProductID: l.ProductID,
			Title:     l.Title,
			Image:     l.Image,
			Price:     l.EffectivePrice(),
			Quantity:  l.Quantity,
		}
	}

	now := s.now()
	return &OrderDraft{
		UserID:          user.ID,
		UserName:        user.UserName,
		CartID:          c.ID,
		Items:           items,
		AddressInfo:     addr,
		OrderStatus:     "pending",
		PaymentMethod:   s.cfg.PaymentMethod,
		PaymentStatus:   "pending",
		TotalAmount:     c.Total(),
		OrderDate:       now,
		OrderUpdateDate: now,
	}
}

func (s *Service) reportPrecondition(err error) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		s.notifier.Failure("Your cart is empty", "Please add items to proceed.")
	case errors.Is(err, ErrNoAddressSelected):
		s.notifier.Failure("Please select one address to proceed", "")
	case errors.Is(err, ErrCheckoutInProgress):
		s.notifier.Failure("Checkout in progress", "A payment is already being processed for this session.")
	}
}

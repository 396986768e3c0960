// Package gateway bridges the checkout flow to the externally hosted payment
// widget. The widget itself is opaque: this package supplies its configuration,
// keeps track of open checkouts, and delivers each widget's completion (or
// dismissal) as a single-shot notification the coordinator can await.
package gateway

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for widget operations.
var (
	ErrScriptUnavailable = errors.New("checkout script unavailable")
	ErrUnknownCheckout   = errors.New("no open checkout for order")
	ErrAlreadySettled    = errors.New("checkout already settled")
)

// Prefill is the contact information pre-populated into the widget.
type Prefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Theme customizes the widget appearance.
type Theme struct {
	Color string `json:"color"`
}

// Options is the configuration object handed to the hosted widget. Amount is
// in the smallest currency unit expected by the gateway.
type Options struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

// Confirmation is the payment confirmation payload the widget delivers on
// successful authorization.
type Confirmation struct {
	PaymentID string `json:"razorpay_payment_id"`
	PayerID   string `json:"razorpay_payer_id"`
}

// Outcome is the terminal result of one open widget: either a confirmation
// or a dismissal by the shopper.
type Outcome struct {
	Confirmed    bool
	Confirmation Confirmation
}

// Checkout is the handle for one open widget. Its outcome is delivered at
// most once on the channel returned by Outcome.
type Checkout struct {
	opts Options

	once sync.Once
	done chan Outcome
}

func newCheckout(opts Options) *Checkout {
	return &Checkout{
		opts: opts,
		done: make(chan Outcome, 1),
	}
}

// Options returns the widget configuration for this checkout.
func (c *Checkout) Options() Options {
	return c.opts
}

// Outcome returns the channel on which the single terminal outcome of this
// checkout is delivered.
func (c *Checkout) Outcome() <-chan Outcome {
	return c.done
}

// confirm delivers the confirmation payload. Only the first settlement wins.
func (c *Checkout) confirm(conf Confirmation) bool {
	settled := false
	c.once.Do(func() {
		c.done <- Outcome{Confirmed: true, Confirmation: conf}
		settled = true
	})
	return settled
}

// dismiss marks the checkout as abandoned by the shopper.
func (c *Checkout) dismiss() bool {
	settled := false
	c.once.Do(func() {
		c.done <- Outcome{}
		settled = true
	})
	return settled
}

// Config holds the merchant-level widget settings.
type Config struct {
	// KeyID is the publishable gateway key identifying the merchant.
	KeyID string
	// MerchantName is shown in the widget header.
	MerchantName string
	// Description is shown under the merchant name.
	Description string
	// Currency is the ISO currency code; amounts are converted to its
	// smallest unit before being handed to the widget.
	Currency string
	// ThemeColor customizes the widget accent color.
	ThemeColor string
}

// Widget opens hosted payment checkouts and routes completion callbacks back
// to the matching open checkout by gateway order id.
type Widget struct {
	cfg    Config
	loader *ScriptLoader

	mu   sync.Mutex
	open map[string]*Checkout
}

// NewWidget creates a Widget backed by the given script loader.
func NewWidget(cfg Config, loader *ScriptLoader) *Widget {
	return &Widget{
		cfg:    cfg,
		loader: loader,
		open:   make(map[string]*Checkout),
	}
}

// Open registers a checkout for the gateway order and returns its handle.
// The amount is converted to the smallest currency unit (two decimal digits,
// so ×100). Open fails with ErrScriptUnavailable when the checkout script
// could not be loaded; order creation is unaffected by that failure.
func (w *Widget) Open(ctx context.Context, gatewayOrderID string, amount decimal.Decimal, prefill Prefill) (*Checkout, error) {
	if err := w.loader.Load(ctx); err != nil {
		return nil, errors.Wrap(ErrScriptUnavailable, err.Error())
	}

	c := newCheckout(Options{
		Key:         w.cfg.KeyID,
		Amount:      MinorUnits(amount),
		Currency:    w.cfg.Currency,
		Name:        w.cfg.MerchantName,
		Description: w.cfg.Description,
		OrderID:     gatewayOrderID,
		Prefill:     prefill,
		Theme:       Theme{Color: w.cfg.ThemeColor},
	})

	w.mu.Lock()
	w.open[gatewayOrderID] = c
	w.mu.Unlock()

	return c, nil
}

// Resolve delivers a confirmation payload to the open checkout for the
// gateway order and removes it from the open set.
func (w *Widget) Resolve(gatewayOrderID string, conf Confirmation) error {
	c, err := w.take(gatewayOrderID)
	if err != nil {
		return err
	}
	if !c.confirm(conf) {
		return ErrAlreadySettled
	}
	return nil
}

// Dismiss marks the open checkout for the gateway order as abandoned.
func (w *Widget) Dismiss(gatewayOrderID string) error {
	c, err := w.take(gatewayOrderID)
	if err != nil {
		return err
	}
	if !c.dismiss() {
		return ErrAlreadySettled
	}
	return nil
}

func (w *Widget) take(gatewayOrderID string) (*Checkout, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.open[gatewayOrderID]
	if !ok {
		return nil, ErrUnknownCheckout
	}
	delete(w.open, gatewayOrderID)
	return c, nil
}

// MinorUnits converts a decimal amount to the gateway's smallest currency
// unit for a two-decimal-digit currency.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

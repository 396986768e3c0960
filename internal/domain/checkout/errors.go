package checkout

import "fmt"

// Sentinel errors for checkout preconditions and re-entry guards.
var (
	ErrEmptyCart          = fmt.Errorf("cart is empty")
	ErrNoAddressSelected  = fmt.Errorf("no address selected")
	ErrCheckoutInProgress = fmt.Errorf("checkout already in progress")
	ErrNoPaymentPending   = fmt.Errorf("no payment pending")
)

// OrderCreationFailedError covers both an application-level rejection from
// the order-creation endpoint and any transport failure on the way there.
// The two are not distinguished to the user.
type OrderCreationFailedError struct {
	Message string
	Err     error
}

func (e *OrderCreationFailedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("order creation failed: %s", e.Message)
	}
	return "order creation failed"
}

func (e *OrderCreationFailedError) Unwrap() error { return e.Err }

// CaptureFailedError covers both an application-level capture rejection and
// any transport failure during capture.
type CaptureFailedError struct {
	Err error
}

func (e *CaptureFailedError) Error() string { return "payment capture failed" }

func (e *CaptureFailedError) Unwrap() error { return e.Err }

// WidgetUnavailableError indicates the payment widget script failed to load;
// the order was still created, but payment cannot proceed in this session.
type WidgetUnavailableError struct {
	Err error
}

func (e *WidgetUnavailableError) Error() string { return "payment widget unavailable" }

func (e *WidgetUnavailableError) Unwrap() error { return e.Err }

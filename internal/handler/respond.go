package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/gateway"
)

// writeJSON encodes a JSON object built by fn and writes it with the given
// status code.
func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	e := &jx.Encoder{}
	fn(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError maps a flow error to an HTTP status and a JSON error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Unhandled checkout error", zap.Error(err))
	}

	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(err.Error())
		e.ObjEnd()
	})
}

// statusFor converts flow errors to HTTP status codes. Precondition failures
// are client errors; order-creation and capture failures are upstream
// failures; an unavailable widget script is a temporary outage.
func statusFor(err error) int {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrNoAddressSelected):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrCheckoutInProgress),
		errors.Is(err, checkout.ErrNoPaymentPending),
		errors.Is(err, gateway.ErrAlreadySettled):
		return http.StatusConflict
	case errors.Is(err, gateway.ErrUnknownCheckout):
		return http.StatusNotFound
	}

	var (
		ocErr *checkout.OrderCreationFailedError
		cfErr *checkout.CaptureFailedError
		wuErr *checkout.WidgetUnavailableError
	)
	switch {
	case errors.As(err, &ocErr), errors.As(err, &cfErr):
		return http.StatusBadGateway
	case errors.As(err, &wuErr):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/gateway"
	"github.com/xenking/storefront-checkout/internal/store"
)

// initiateRequest is the checkout click payload. Cart and User, when
// present, hydrate the shared store before the flow reads it; SessionID
// resumes an existing session so double-clicks hit the re-entry guard.
type initiateRequest struct {
	SessionID string            `json:"sessionId"`
	Address   *checkout.Address `json:"address"`
	Cart      *cart.Cart        `json:"cart"`
	User      *store.User       `json:"user"`
}

func (h *Handler) initiateCheckout(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, func(e *jx.Encoder) {
			e.ObjStart()
			e.FieldStart("code")
			e.Int(http.StatusBadRequest)
			e.FieldStart("message")
			e.Str("invalid request body")
			e.ObjEnd()
		})
		return
	}

	if req.Cart != nil {
		h.store.SetCart(*req.Cart)
	}
	if req.User != nil {
		h.store.SetUser(*req.User)
	}

	sess, ok := h.sessions.get(req.SessionID)
	if !ok {
		sess = h.svc.NewSession()
		h.sessions.add(sess)
	}
	if req.Address != nil {
		sess.SelectAddress(*req.Address)
	}

	res, err := h.svc.InitiateCheckout(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// The widget's completion callback arrives on a separate request, so the
	// coordinator awaits the outcome detached from this request's lifetime.
	if res.WidgetOptions != nil {
		awaitCtx := zctx.Base(context.Background(), zctx.From(r.Context()))
		go func() {
			if _, err := h.svc.AwaitOutcome(awaitCtx, sess); err != nil {
				zctx.From(awaitCtx).Warn("Checkout settled with error",
					zap.String("session_id", sess.ID()),
					zap.Error(err),
				)
			}
		}()
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("sessionId")
		e.Str(sess.ID())
		e.FieldStart("phase")
		e.Str(string(sess.Phase()))
		e.FieldStart("orderId")
		e.Str(res.OrderID)
		if res.RedirectURL != "" {
			e.FieldStart("redirectURL")
			e.Str(res.RedirectURL)
		}
		if res.WidgetOptions != nil {
			e.FieldStart("widget")
			encodeWidgetOptions(e, *res.WidgetOptions)
		}
		e.ObjEnd()
	})
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.get(r.PathValue("id"))
	if !ok {
		writeError(w, r, gateway.ErrUnknownCheckout)
		return
	}

	var conf gateway.Confirmation
	if err := json.NewDecoder(r.Body).Decode(&conf); err != nil {
		writeJSON(w, http.StatusBadRequest, func(e *jx.Encoder) {
			e.ObjStart()
			e.FieldStart("code")
			e.Int(http.StatusBadRequest)
			e.FieldStart("message")
			e.Str("invalid confirmation payload")
			e.ObjEnd()
		})
		return
	}

	if err := h.svc.Confirm(sess, conf); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("sessionId")
		e.Str(sess.ID())
		e.FieldStart("status")
		e.Str("processing")
		e.ObjEnd()
	})
}

func (h *Handler) dismissPayment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.get(r.PathValue("id"))
	if !ok {
		writeError(w, r, gateway.ErrUnknownCheckout)
		return
	}

	if err := h.svc.Dismiss(sess); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("sessionId")
		e.Str(sess.ID())
		e.FieldStart("status")
		e.Str("cancelled")
		e.ObjEnd()
	})
}

func (h *Handler) checkoutStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.get(r.PathValue("id"))
	if !ok {
		writeError(w, r, gateway.ErrUnknownCheckout)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("sessionId")
		e.Str(sess.ID())
		e.FieldStart("phase")
		e.Str(string(sess.Phase()))
		e.FieldStart("orderId")
		e.Str(sess.OrderID())
		if url := sess.RedirectURL(); url != "" {
			e.FieldStart("redirectURL")
			e.Str(url)
		}
		if nav := sess.NavigateTo(); nav != "" {
			e.FieldStart("navigateTo")
			e.Str(nav)
		}
		e.ObjEnd()
	})
}

// encodeWidgetOptions writes the hosted widget configuration object.
func encodeWidgetOptions(e *jx.Encoder, opts gateway.Options) {
	e.ObjStart()
	e.FieldStart("key")
	e.Str(opts.Key)
	e.FieldStart("amount")
	e.Int64(opts.Amount)
	e.FieldStart("currency")
	e.Str(opts.Currency)
	e.FieldStart("name")
	e.Str(opts.Name)
	e.FieldStart("description")
	e.Str(opts.Description)
	e.FieldStart("order_id")
	e.Str(opts.OrderID)
	e.FieldStart("prefill")
	e.ObjStart()
	e.FieldStart("name")
	e.Str(opts.Prefill.Name)
	e.FieldStart("email")
	e.Str(opts.Prefill.Email)
	e.ObjEnd()
	e.FieldStart("theme")
	e.ObjStart()
	e.FieldStart("color")
	e.Str(opts.Theme.Color)
	e.ObjEnd()
	e.ObjEnd()
}

package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/gateway"
	"github.com/xenking/storefront-checkout/internal/store"
)

// --- Mock implementations ---

type mockAPI struct {
	createResp   *OrderCreated
	createErr    error
	createCalls  int
	lastDraft    *OrderDraft
	captureResp  *CaptureResult
	captureErr   error
	captureCalls int
	lastCapture  CaptureRequest
}

func (m *mockAPI) CreateOrder(_ context.Context, draft *OrderDraft) (*OrderCreated, error) {
	m.createCalls++
	m.lastDraft = draft
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.createResp, nil
}

func (m *mockAPI) CapturePayment(_ context.Context, req CaptureRequest) (*CaptureResult, error) {
	m.captureCalls++
	m.lastCapture = req
	if m.captureErr != nil {
		return nil, m.captureErr
	}
	return m.captureResp, nil
}

type mockNotifier struct {
	successes []string
	failures  []string
}

func (m *mockNotifier) Success(title, _ string) { m.successes = append(m.successes, title) }
func (m *mockNotifier) Failure(title, _ string) { m.failures = append(m.failures, title) }

// countingWidget wraps a real gateway widget to count and inspect opens.
type countingWidget struct {
	*gateway.Widget
	opens       int
	lastOrderID string
	lastPrefill gateway.Prefill
}

func (w *countingWidget) Open(ctx context.Context, id string, amount decimal.Decimal, prefill gateway.Prefill) (*gateway.Checkout, error) {
	w.opens++
	w.lastOrderID = id
	w.lastPrefill = prefill
	return w.Widget.Open(ctx, id, amount, prefill)
}

// --- Helpers ---

func newTestWidget(t *testing.T, scriptOK bool) *countingWidget {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !scriptOK {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	t.Cleanup(srv.Close)

	return &countingWidget{Widget: gateway.NewWidget(gateway.Config{
		KeyID:        "rzp_test_key",
		MerchantName: "Shopping Cart",
		Currency:     "INR",
	}, gateway.NewScriptLoader(srv.URL))}
}

func testCart() cart.Cart {
	return cart.Cart{
		ID: "cart-1",
		Items: []cart.Line{
			{ProductID: "p1", Title: "Widget", Image: "w.jpg", Price: decimal.RequireFromString("100"), Quantity: 2},
			{ProductID: "p2", Title: "Gadget", Image: "g.jpg", Price: decimal.RequireFromString("60"), SalePrice: decimal.RequireFromString("40"), Quantity: 1},
		},
	}
}

type fixture struct {
	svc      *Service
	sess     *Session
	store    *store.Memory
	api      *mockAPI
	widget   *countingWidget
	notifier *mockNotifier
}

func newFixture(t *testing.T, api *mockAPI) *fixture {
	t.Helper()

	st := store.NewMemory()
	st.SetCart(testCart())
	st.SetUser(store.User{ID: "u1", UserName: "alice", Email: "alice@example.com"})

	w := newTestWidget(t, true)
	n := &mockNotifier{}
	svc := NewService(Config{}, st, api, w, n)

	sess := svc.NewSession()
	sess.SelectAddress(Address{ID: "a1", Address: "1 Main St", City: "Pune", Pincode: "411001", Phone: "555"})

	return &fixture{svc: svc, sess: sess, store: st, api: api, widget: w, notifier: n}
}

func createdOK() *OrderCreated {
	return &OrderCreated{Success: true, OrderID: "O1", GatewayOrderID: "G1"}
}

// --- Tests ---

func TestInitiateCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t, &mockAPI{createResp: createdOK()})
	f.store.SetCart(cart.Cart{})

	_, err := f.svc.InitiateCheckout(context.Background(), f.sess)

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, f.api.createCalls, "no network call on precondition failure")
	assert.Equal(t, PhaseIdle, f.sess.Phase())
	assert.NotEmpty(t, f.notifier.failures)
}

func TestInitiateCheckout_NoAddressSelected(t *testing.T) {
	f := newFixture(t, &mockAPI{createResp: createdOK()})
	f.sess = f.svc.NewSession() // no address selected

	_, err := f.svc.InitiateCheckout(context.Background(), f.sess)

	require.ErrorIs(t, err, ErrNoAddressSelected)
	assert.Equal(t, 0, f.api.createCalls)
	assert.Equal(t, PhaseIdle, f.sess.Phase())
}

func TestInitiateCheckout_EmptyCartWinsOverAddress(t *testing.T) {
	f := newFixture(t, &mockAPI{createResp: createdOK()})
	f.store.SetCart(cart.Cart{})
	f.sess = f.svc.NewSession() // neither precondition holds

	_, err := f.svc.InitiateCheckout(context.Background(), f.sess)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestInitiateCheckout_BuildsDraftFromCurrentState(t *testing.T) {
	f := newFixture(t, &mockAPI{createResp: createdOK()})
	fixed := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }

	_, err := f.svc.InitiateCheckout(context.Background(), f.sess)
	require.NoError(t, err)

	draft := f.api.lastDraft
	require.NotNil(t, draft)
	assert.Equal(t, "u1", draft.UserID)
	assert.Equal(t, "alice", draft.UserName)
	assert.Equal(t, "cart-1", draft.CartID)
	assert.Equal(t, "pending", draft.OrderStatus)
	assert.Equal(t, "razorpay", draft.PaymentMethod)
	assert.Equal(t, "pending", draft.PaymentStatus)
	assert.True(t, decimal.RequireFromString("240").Equal(draft.TotalAmount))
	assert.Equal(t, fixed, draft.OrderDate)
	assert.Equal(t, fixed, draft.OrderUpdateDate)
	assert.Empty(t, draft.PaymentID)
	assert.Empty(t, draft.PayerID)
	assert.Equal(t, "Pune", draft.AddressInfo.City)

	require.Len(t, draft.Items, 2)
	assert.True(t, decimal.RequireFromString("100").Equal(draft.Items[0].Price))
	assert.True(t, decimal.RequireFromString("40").Equal(draft.Items[1].Price), "sale price wins")
}

func TestInitiateCheckout_SuccessOpensWidget(t *testing.T) {
	f := newFixture(t, &mockAPI{createResp: createdOK()})

	res, err := f.svc.InitiateCheckout(context.Background(), f.sess)
	require.NoError(t, err)

	assert.Equal(t, PhaseAwaitingCapture, f.sess.Phase())
	assert.Equal(t, "O1", res.OrderID)
	assert.Equal(t, "G1", res.GatewayOrderID)
	require.NotNil(t, res.WidgetOptions)
	assert.Equal(t, "G1", res.WidgetOptions.OrderID)
	assert.Equal(t, int64(24000), res.WidgetOptions.Amount, "240 in minor units")
	assert.Equal(t, "alice", f.widget.lastPrefill.Name)
	assert.Equal(t, "alice@example.com", f.widget.lastPrefill.Email)

	// Created identifiers are dispatched to the order slice.
	assert.Equal(t, store.OrderSlice{OrderID: "O1", GatewayOrderID: "G1"}, f.store.Order())
}

func TestInitiateCheckout_CreationRejected(t *testing.T) {
	f := newFixture(t, &mockAPI{createResp: &OrderCreated{Success: false, Message: "out of stock"}})

	_, err := f.svc.InitiateCheckout(context.Background(), f.sess)

	var ocErr *OrderCreationFailedError
	require.ErrorAs(t, err, &ocErr)
	assert.Equal(t, "out of stock", ocErr.Message)
	assert.Equal(t, PhaseIdle, f.sess.Phase())
	assert.Equal(t, 0, f.widget.opens, "widget must not open on creation failure")
}

func TestInitiateCheckout_TransportFailure(t *testing.T) {
	f := newFixture(t, &mockAPI{createErr: errors.New("connection refused")})

	_, err := f.svc.InitiateCheckout(context.Background(), f.sess)

	var ocErr *OrderCreationFailedError
	require.ErrorAs(t, err, &ocErr)
	assert.Equal(t, PhaseIdle, f.sess.Phase())
	assert.Equal(t, 0, f.widget.opens)
}

func TestInitiateCheckout_ReentryGuard(t *testing.T) {
	f := newFixture(t, &mockAPI{createResp: createdOK()})

	_, err := f.svc.InitiateCheckout(context.Background(), f.sess)
	require.NoError(t, err)
	require.Equal(t, PhaseAwaitingCapture, f.sess.Phase())

	_, err = f.svc.InitiateCheckout(context.Background(), f.sess)
	require.ErrorIs(t, err, ErrCheckoutInProgress)
	assert.Equal(t, 1, f.api.createCalls, "no duplicate order submission")
}

func TestInitiateCheckout_RedirectPath(t *testing.T) {
	f := newFixture(t, &mockAPI{createResp: &OrderCreated{
		Success:     true,
		OrderID:     "O2",
		ApprovalURL: "https://gateway.example.com/approve/abc",
	}})

	res, err := f.svc.InitiateCheckout(context.Background(), f.sess)
	require.NoError(t, err)

	assert.Equal(t, "https://gateway.example.com/approve/abc", res.RedirectURL)
	assert.Nil(t, res.WidgetOptions)
	assert.Equal(t, 0, f.widget.opens, "redirect path never opens the widget")
	assert.Equal(t, PhaseAwaitingOrderCreation, f.sess.Phase(), "redirect target owns the rest of the flow")
}

func TestInitiateCheckout_WidgetUnavailable(t *testing.T) {
	f := newFixture(t, &mockAPI{createResp: createdOK()})
	f.svc.widget = newTestWidget(t, false)

	_, err := f.svc.InitiateCheckout(context.Background(), f.sess)

	var wuErr *WidgetUnavailableError
	require.ErrorAs(t, err, &wuErr)
	assert.ErrorIs(t, err, gateway.ErrScriptUnavailable)
	assert.Equal(t, 1, f.api.createCalls, "order creation still happened")
	assert.Equal(t, PhaseFailed, f.sess.Phase())
}

func TestAwaitOutcome_CaptureSucceeds(t *testing.T) {
	f := newFixture(t, &mockAPI{createResp: createdOK(), captureResp: &CaptureResult{Success: true}})

	_, err := f.svc.InitiateCheckout(context.Background(), f.sess)
	require.NoError(t, err)

	require.NoError(t, f.svc.Confirm(f.sess, gateway.Confirmation{PaymentID: "pay_1", PayerID: "payer_1"}))

	phase, err := f.svc.AwaitOutcome(context.Background(), f.sess)
	require.NoError(t, err)
	assert.Equal(t, PhaseSucceeded, phase)
	assert.Equal(t, PhaseSucceeded, f.sess.Phase())

	assert.Equal(t, 1, f.api.captureCalls)
	assert.Equal(t, CaptureRequest{PaymentID: "pay_1", PayerID: "payer_1", OrderID: "O1"}, f.api.lastCapture)

	assert.Equal(t, "/shop/payment-success", f.sess.NavigateTo(), "navigation to success view")
	assert.Contains(t, f.notifier.successes, "Payment Successful!")
}

func TestAwaitOutcome_CaptureRejected(t *testing.T) {
	f := newFixture(t, &mockAPI{createResp: createdOK(), captureResp: &CaptureResult{Success: false}})

	_, err := f.svc.InitiateCheckout(context.Background(), f.sess)
	require.NoError(t, err)
	require.NoError(t, f.svc.Confirm(f.sess, gateway.Confirmation{PaymentID: "pay_1", PayerID: "payer_1"}))

	phase, err := f.svc.AwaitOutcome(context.Background(), f.sess)

	var cfErr *CaptureFailedError
	require.ErrorAs(t, err, &cfErr)
	assert.Equal(t, PhaseFailed, phase)
	assert.Empty(t, f.sess.NavigateTo(), "no navigation on capture failure")
	assert.Contains(t, f.notifier.failures, "Payment Failed!")
}

func TestAwaitOutcome_CaptureTransportFailure(t *testing.T) {
	f := newFixture(t, &mockAPI{createResp: createdOK(), captureErr: errors.New("timeout")})

	_, err := f.svc.InitiateCheckout(context.Background(), f.sess)
	require.NoError(t, err)
	require.NoError(t, f.svc.Confirm(f.sess, gateway.Confirmation{PaymentID: "pay_1"}))

	phase, err := f.svc.AwaitOutcome(context.Background(), f.sess)

	var cfErr *CaptureFailedError
	require.ErrorAs(t, err, &cfErr)
	assert.Equal(t, PhaseFailed, phase)
}

func TestAwaitOutcome_Dismissal(t *testing.T) {
	f := newFixture(t, &mockAPI{createResp: createdOK(), captureResp: &CaptureResult{Success: true}})

	_, err := f.svc.InitiateCheckout(context.Background(), f.sess)
	require.NoError(t, err)
	require.NoError(t, f.svc.Dismiss(f.sess))

	phase, err := f.svc.AwaitOutcome(context.Background(), f.sess)
	require.NoError(t, err)
	assert.Equal(t, PhaseCancelled, phase)
	assert.Equal(t, 0, f.api.captureCalls, "no capture after dismissal")
}

func TestAwaitOutcome_NoPaymentPending(t *testing.T) {
	f := newFixture(t, &mockAPI{})

	_, err := f.svc.AwaitOutcome(context.Background(), f.sess)
	require.ErrorIs(t, err, ErrNoPaymentPending)
}

func TestConfirm_NoPaymentPending(t *testing.T) {
	f := newFixture(t, &mockAPI{})

	err := f.svc.Confirm(f.sess, gateway.Confirmation{PaymentID: "pay_1"})
	require.ErrorIs(t, err, ErrNoPaymentPending)
}

func TestPhase_Terminal(t *testing.T) {
	assert.True(t, PhaseSucceeded.Terminal())
	assert.True(t, PhaseFailed.Terminal())
	assert.True(t, PhaseCancelled.Terminal())
	assert.False(t, PhaseIdle.Terminal())
	assert.False(t, PhaseAwaitingOrderCreation.Terminal())
	assert.False(t, PhaseAwaitingCapture.Terminal())
}

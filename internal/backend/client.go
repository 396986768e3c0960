// Package backend is the HTTP client for the external shop API: order
// creation, payment capture, and the admin order endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/storefront-checkout/internal/admin"
	"github.com/xenking/storefront-checkout/internal/domain/checkout"
)

// Compile-time checks: the client serves both the checkout flow and the
// admin order views.
var (
	_ checkout.API = (*Client)(nil)
	_ admin.Source = (*Client)(nil)
)

func init() {
	// The shop API expects plain JSON numbers for amounts.
	decimal.MarshalJSONWithoutQuotes = true
}

// Config holds client settings. Zero-value telemetry providers fall back to
// the otel globals.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Client talks to the shop API over an instrumented HTTP transport.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a shop API client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(tp),
				otelhttp.WithMeterProvider(mp),
			),
		},
	}
}

// CreateOrder submits an order draft to the order-creation endpoint.
func (c *Client) CreateOrder(ctx context.Context, draft *checkout.OrderDraft) (*checkout.OrderCreated, error) {
	body, err := c.post(ctx, "/api/shop/order/create", draft)
	if err != nil {
		return nil, err
	}

	created, err := decodeOrderCreated(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode order creation response")
	}

	zctx.From(ctx).Debug("Order creation response",
		zap.Bool("success", created.Success),
		zap.String("order_id", created.OrderID),
	)
	return created, nil
}

// CapturePayment confirms a gateway-authorized payment with the capture
// endpoint.
func (c *Client) CapturePayment(ctx context.Context, req checkout.CaptureRequest) (*checkout.CaptureResult, error) {
	body, err := c.post(ctx, "/api/shop/order/capture", req)
	if err != nil {
		return nil, err
	}

	res, err := decodeCaptureResult(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode capture response")
	}
	return res, nil
}

// ListOrders fetches all orders for the admin list view.
func (c *Client) ListOrders(ctx context.Context) ([]admin.Order, error) {
	body, err := c.get(ctx, "/api/admin/orders/get")
	if err != nil {
		return nil, err
	}

	var out struct {
		Success bool          `json:"success"`
		Data    []admin.Order `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, "decode order list")
	}
	if !out.Success {
		return nil, errors.New("order list request rejected")
	}
	return out.Data, nil
}

// OrderDetails fetches a single order for the admin details view.
func (c *Client) OrderDetails(ctx context.Context, orderID string) (*admin.Order, error) {
	body, err := c.get(ctx, "/api/admin/orders/details/"+orderID)
	if err != nil {
		return nil, err
	}

	var out struct {
		Success bool        `json:"success"`
		Data    admin.Order `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, "decode order details")
	}
	if !out.Success {
		return nil, errors.New("order details request rejected")
	}
	return &out.Data, nil
}

// Ping reports whether the shop API is reachable. Used by the readiness
// probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return errors.Wrap(err, "build ping request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "ping shop api")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return errors.Errorf("shop api unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "shop api request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.Errorf("shop api error: status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// decodeOrderCreated decodes the order-creation response, ignoring unknown
// fields.
func decodeOrderCreated(data []byte) (*checkout.OrderCreated, error) {
	var out checkout.OrderCreated
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "success":
			out.Success, err = d.Bool()
		case "message":
			out.Message, err = d.Str()
		case "orderId":
			out.OrderID, err = d.Str()
		case "razorpayOrderId":
			out.GatewayOrderID, err = d.Str()
		case "approvalURL":
			out.ApprovalURL, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// decodeCaptureResult decodes the capture response.
func decodeCaptureResult(data []byte) (*checkout.CaptureResult, error) {
	var out checkout.CaptureResult
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "success":
			out.Success, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

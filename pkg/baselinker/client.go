// Package baselinker is a small client for the BaseLinker order API, used by
// the print agent to fetch shipment labels and keep order statuses in step.
//
// BaseLinker exposes a single connector endpoint: every call is a form POST
// with a method name and a JSON-encoded parameters object, authenticated by
// the X-BLToken header. The HTTP layer goes through the retryx invoker so
// rate limits and transient server errors are retried the same way as every
// other outbound call.
package baselinker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/magsync/pkg/retryx"
)

// DefaultBaseURL is the production connector endpoint.
const DefaultBaseURL = "https://api.baselinker.com/connector.php"

// APIError is a BaseLinker-level failure: the HTTP exchange succeeded but
// the response envelope carries status ERROR.
type APIError struct {
	Method  string
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("baselinker %s: %s (%s)", e.Method, e.Message, e.Code)
}

// Client calls the BaseLinker connector API.
type Client struct {
	BaseURL string
	Token   string

	invoker *retryx.Invoker
}

// NewClient creates a client with the production endpoint and the default
// retry policy.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		BaseURL: DefaultBaseURL,
		Token:   token,
		invoker: retryx.NewInvoker(nil, retryx.DefaultPolicy()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different connector endpoint (tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.BaseURL = baseURL }
}

// WithHTTPClient swaps the underlying HTTP client, keeping the retry policy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Timeout == 0 {
			hc.Timeout = c.invoker.Policy.Timeout
		}
		c.invoker.Client = hc
	}
}

// WithPolicy overrides the retry policy.
func WithPolicy(p retryx.Policy) Option {
	return func(c *Client) { c.invoker.Policy = p }
}

// WithMetrics attaches the invoker metrics.
func WithMetrics(m *retryx.Metrics) Option {
	return func(c *Client) { c.invoker.Metrics = m }
}

// call performs one connector method call and decodes the response into out.
// out must embed (or be) a struct that captures the envelope's status and
// error fields; call checks those and returns an *APIError on status ERROR.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	rawParams, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("baselinker: encode %s parameters: %w", method, err)
	}

	form := url.Values{
		"method":     {method},
		"parameters": {string(rawParams)},
	}.Encode()

	resp, err := c.invoker.Do(ctx, method, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, c.BaseURL, strings.NewReader(form),
		)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-BLToken", c.Token)
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("baselinker: read %s response: %w", method, err)
	}

	var envelope struct {
		Status       string `json:"status"`
		ErrorCode    string `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("baselinker: decode %s response: %w", method, err)
	}
	if envelope.Status != "SUCCESS" {
		return &APIError{Method: method, Code: envelope.ErrorCode, Message: envelope.ErrorMessage}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("baselinker: decode %s response: %w", method, err)
	}
	return nil
}

// Order is a BaseLinker order, mapped down to what the agent needs.
type Order struct {
	OrderID       int64   `json:"order_id"`
	StatusID      int64   `json:"order_status_id"`
	DateAdd       int64   `json:"date_add"` // unix seconds
	DeliveryName  string  `json:"delivery_fullname"`
	DeliveryPrice float64 `json:"delivery_price"`
}

// OrderQuery filters getOrders.
type OrderQuery struct {
	OrderID  int64 // fetch one specific order
	StatusID int64 // orders currently in this status
	DateFrom int64 // unix seconds, orders added since
}

// GetOrders fetches orders by status, id or date window.
func (c *Client) GetOrders(ctx context.Context, q OrderQuery) ([]Order, error) {
	params := map[string]any{}
	if q.OrderID != 0 {
		params["order_id"] = q.OrderID
	}
	if q.StatusID != 0 {
		params["status_id"] = q.StatusID
	}
	if q.DateFrom != 0 {
		params["date_from"] = q.DateFrom
	}

	var out struct {
		Orders []Order `json:"orders"`
	}
	if err := c.call(ctx, "getOrders", params, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// Package is one shipment package of an order.
type Package struct {
	PackageID     int64  `json:"package_id"`
	CourierCode   string `json:"courier_code"`
	PackageNumber string `json:"package_number"`
}

// GetOrderPackages lists the shipment packages of one order.
func (c *Client) GetOrderPackages(ctx context.Context, orderID int64) ([]Package, error) {
	var out struct {
		Packages []Package `json:"packages"`
	}
	err := c.call(ctx, "getOrderPackages", map[string]any{"order_id": orderID}, &out)
	if err != nil {
		return nil, err
	}
	return out.Packages, nil
}

// Label is a shipment label document, base64-encoded.
type Label struct {
	Data      string // base64 document bytes
	Extension string // file extension, usually "pdf"
}

// GetLabel fetches the shipment label for one package.
func (c *Client) GetLabel(ctx context.Context, courierCode string, packageID int64) (*Label, error) {
	var out struct {
		Label     string `json:"label"`
		Extension string `json:"extension"`
	}
	err := c.call(ctx, "getLabel", map[string]any{
		"courier_code": courierCode,
		"package_id":   packageID,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Label == "" {
		return nil, fmt.Errorf("baselinker: no label for package %d", packageID)
	}
	if out.Extension == "" {
		out.Extension = "pdf"
	}
	return &Label{Data: out.Label, Extension: out.Extension}, nil
}

// SetOrderStatus moves one order to another status.
func (c *Client) SetOrderStatus(ctx context.Context, orderID, statusID int64) error {
	return c.call(ctx, "setOrderStatus", map[string]any{
		"order_id":  orderID,
		"status_id": statusID,
	}, nil)
}

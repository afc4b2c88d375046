package allegro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/magsync/pkg/retryx"
)

const (
	// DefaultBaseURL is the production Allegro REST API.
	DefaultBaseURL = "https://api.allegro.pl"

	// DefaultAuthURL is the production OAuth token endpoint.
	DefaultAuthURL = "https://allegro.pl/auth/oauth/token"

	// acceptHeader is required by every Allegro REST endpoint.
	acceptHeader = "application/vnd.allegro.public.v1+json"
)

// Client is an Allegro marketplace API client. Every request goes through
// the retryx invoker; the bearer token is read from the TokenStore on each
// attempt so a mid-call refresh is picked up transparently.
type Client struct {
	BaseURL string
	AuthURL string
	Tokens  TokenStore

	invoker *retryx.Invoker
}

// NewClient creates a client with the production endpoints, the default
// retry policy and a gentle client-side throttle. Override BaseURL/AuthURL
// for the sandbox environment.
func NewClient(tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		BaseURL: DefaultBaseURL,
		AuthURL: DefaultAuthURL,
		Tokens:  tokens,
		invoker: retryx.NewInvoker(nil, retryx.DefaultPolicy()),
	}
	// Allegro allows 9000 req/min per client; stay an order of magnitude under.
	c.invoker.Limiter = rate.NewLimiter(rate.Limit(10), 20)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host (sandbox, tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.BaseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithAuthURL points the client at a different OAuth token endpoint.
func WithAuthURL(authURL string) Option {
	return func(c *Client) { c.AuthURL = authURL }
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

// WithLimiter replaces the client-side throttle. Nil disables it.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.invoker.Limiter = l }
}

// accessToken reads the current bearer token from the store.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	token, err := c.Tokens.Get(ctx, KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("allegro: read access token: %w", err)
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// get performs an authorized GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	resp, err := c.invoker.Do(ctx, endpoint, func(ctx context.Context) (*http.Request, error) {
		u := c.BaseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return c.authorize(ctx, req)
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

// post performs an authorized POST with a JSON body, decoding into out when
// out is non-nil.
func (c *Client) post(ctx context.Context, endpoint, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("allegro: encode %s request: %w", endpoint, err)
	}

	resp, err := c.invoker.Do(ctx, endpoint, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload),
		)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", acceptHeader)
		return c.authorize(ctx, req)
	})
	if err != nil {
		return err
	}
	if out == nil {
		drainBody(resp)
		return nil
	}
	return decodeJSON(resp, out)
}

// authorize attaches the bearer token and Accept header.
func (c *Client) authorize(ctx context.Context, req *http.Request) (*http.Request, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", acceptHeader)
	return req, nil
}

// decodeJSON decodes a success response body into out and closes it.
func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("allegro: decode response: %w", err)
	}
	return nil
}

func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// maskToken shortens a token for log output, keeping the edges.
func maskToken(token string) string {
	if token == "" {
		return "none"
	}
	if len(token) <= 8 {
		return token
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// defaultTimeout for direct (non-invoker) OAuth endpoint calls.
const defaultTimeout = 10 * time.Second

// Package gateway is the request layer for the WAHA REST API, reached
// directly or through wahabridge's /api proxy.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const maxBody = 16 << 20

// Client issues gateway requests for one session.
type Client struct {
	base    *url.URL
	session string
	apiKey  string
	webhook WebhookTarget
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAPIKey sends X-Api-Key on every request. Not needed behind the bridge.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithWebhook sets where sessions created or reconfigured by this client
// deliver their events.
func WithWebhook(target WebhookTarget) Option {
	return func(c *Client) { c.webhook = target }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for baseURL (e.g. http://localhost:8001/api) bound
// to the named gateway session.
func New(baseURL, session string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("gateway url %q: scheme must be http or https", baseURL)
	}
	if session == "" {
		return nil, fmt.Errorf("gateway session name is required")
	}
	c := &Client{
		base:    u,
		session: session,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the gateway session name the client is bound to.
func (c *Client) Session() string { return c.session }

// Get issues a GET and decodes the JSON response into out (may be nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends a request and decodes a JSON response into out. Non-JSON
// success bodies are ignored unless out is *string or *[]byte. Non-2xx
// responses become *RequestError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	data, _, err := c.roundTrip(ctx, method, path, body)
	if err != nil {
		return err
	}
	switch v := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*v = data
		return nil
	case *string:
		*v = string(data)
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RequestError{Method: method, Path: path, StatusCode: http.StatusOK,
			Message: "invalid JSON response", Body: data, Err: err}
	}
	return nil
}

// roundTrip returns the raw response body and content type.
func (c *Client) roundTrip(ctx context.Context, method, path string, body any) ([]byte, string, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, "", fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	return c.send(req, path)
}

// send executes req and maps non-2xx responses to *RequestError.
func (c *Client) send(req *http.Request, path string) ([]byte, string, error) {
	method := req.Method
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("gateway request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, "", &RequestError{Method: method, Path: path,
			Message: "cannot reach gateway", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, "", &RequestError{Method: method, Path: path, StatusCode: resp.StatusCode,
			Message: "read response", Err: err}
	}
	ctype := resp.Header.Get("Content-Type")

	c.logger.Debug("gateway request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ctype, &RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, ctype, data),
			Body:       data,
		}
	}
	return data, ctype, nil
}

// url joins path, which must already be escaped, onto the base URL.
func (c *Client) url(path string) string {
	return strings.TrimRight(c.base.String(), "/") + "/" + strings.TrimLeft(path, "/")
}

// errorMessage picks the JSON "message" field, then "error", then "HTTP n".
func errorMessage(code int, ctype string, data []byte) string {
	if isJSON(ctype) || json.Valid(data) {
		var body struct {
			Message any `json:"message"`
			Error   any `json:"error"`
		}
		if json.Unmarshal(data, &body) == nil {
			if s := text(body.Message); s != "" {
				return s
			}
			if s := text(body.Error); s != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("HTTP %d", code)
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s := text(p); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func isJSON(ctype string) bool {
	mt, _, err := mime.ParseMediaType(ctype)
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

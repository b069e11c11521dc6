package irisfast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/woofer-bot/internal/obslog"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 10 * time.Second
	// how often a request Iris may safely see twice is tried
	idempotentAttempts = 3
	maxErrorBody       = 512
)

// ErrUnreachable wraps transport failures: dial, timeout, reset.
var ErrUnreachable = errors.New("iris unreachable")

// APIError is a non-2xx answer from Iris.
type APIError struct {
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("iris %s: status %d: %s", e.Path, e.Status, e.Body)
}

// Temporary reports whether the same request may succeed later.
func (e *APIError) Temporary() bool {
	switch e.Status {
	case fasthttp.StatusInternalServerError, fasthttp.StatusBadGateway,
		fasthttp.StatusServiceUnavailable, fasthttp.StatusGatewayTimeout:
		return true
	}
	return false
}

// HeaderProvider returns headers added to every request and handshake.
type HeaderProvider func() map[string]string

// IdentityHeaders sends the X-User-* / X-Session-Id headers Iris uses to
// identify the bot account. Empty values are skipped.
func IdentityHeaders(userID, email, sessionID string) HeaderProvider {
	return func() map[string]string {
		m := map[string]string{}
		for k, v := range map[string]string{"X-User-Id": userID, "X-User-Email": email, "X-Session-Id": sessionID} {
			if v != "" {
				m[k] = v
			}
		}
		return m
	}
}

// Client talks to the Iris HTTP API: replies, config and record decryption.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider
	timeout time.Duration
}

type Option func(*Client)

// WithTimeout bounds each attempt; a shorter ctx deadline still wins.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

// WithHTTPClient replaces the fasthttp client, e.g. to dial an in-memory listener in tests.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &fasthttp.Client{ReadTimeout: defaultTimeout, WriteTimeout: defaultTimeout, MaxConnsPerHost: 64},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call is one JSON round trip. Idempotent calls are retried on transport
// errors and temporary statuses; replies are not, so a room never gets a
// message twice.
type call struct {
	method     string
	path       string
	in, out    any
	idempotent bool
}

func (c *Client) GetConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := c.do(ctx, call{method: fasthttp.MethodGet, path: "/config", out: &cfg, idempotent: true}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decrypt turns a record body Iris forwarded still encrypted into plain text.
func (c *Client) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	var out DecryptResponse
	err := c.do(ctx, call{
		method:     fasthttp.MethodPost,
		path:       "/decrypt",
		in:         DecryptRequest{Data: ciphertext},
		out:        &out,
		idempotent: true,
	})
	if err != nil {
		return "", err
	}
	return out.Decrypted, nil
}

func (c *Client) SendMessage(ctx context.Context, room, message string) error {
	return c.reply(ctx, ReplyRequest{Type: "text", Room: room, Data: message})
}

func (c *Client) SendImage(ctx context.Context, room, imageBase64 string) error {
	return c.reply(ctx, ReplyRequest{Type: "image", Room: room, Data: imageBase64})
}

func (c *Client) reply(ctx context.Context, r ReplyRequest) error {
	return c.do(ctx, call{method: fasthttp.MethodPost, path: "/reply", in: r})
}

func (c *Client) do(ctx context.Context, cl call) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	if err := c.build(req, cl); err != nil {
		return err
	}
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	attempts := 1
	if cl.idempotent {
		attempts = idempotentAttempts
	}
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.roundTrip(ctx, req, resp, cl)
		if err == nil || attempt == attempts || !retryable(err) {
			return err
		}
		obslog.L().Debug("iris_http_retry", zap.String("path", cl.path), zap.Int("attempt", attempt), zap.Error(err))
		if sleepCtx(ctx, backoffDuration(attempt)) != nil {
			return err
		}
	}
}

func (c *Client) build(req *fasthttp.Request, cl call) error {
	req.Header.SetMethod(cl.method)
	req.SetRequestURI(c.baseURL + cl.path)
	req.Header.SetContentType("application/json")
	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}
	if cl.in == nil {
		return nil
	}
	payload, err := json.Marshal(cl.in)
	if err != nil {
		return fmt.Errorf("iris %s: marshal request: %w", cl.path, err)
	}
	req.SetBody(payload)
	return nil
}

func (c *Client) roundTrip(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response, cl call) error {
	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnreachable, cl.path, err)
	}
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		body := resp.Body()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &APIError{Path: cl.path, Status: status, Body: string(body)}
	}
	if cl.out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), cl.out); err != nil {
		return fmt.Errorf("iris %s: decode response: %w", cl.path, err)
	}
	return nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	own := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(own) {
		return dl
	}
	return own
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return errors.Is(err, ErrUnreachable)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoffDuration doubles from 100ms, capped at 3.2s.
func backoffDuration(attempt int) time.Duration {
	attempt = min(max(attempt, 1), 6)
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

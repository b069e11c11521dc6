package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

var (
	ErrNotFound   = errors.New("lookup: no data")
	ErrBadRequest = errors.New("lookup: bad request")
)

// Client performs the small outbound lookups behind the stonk and no commands.
type Client struct {
	http      *fasthttp.Client
	timeout   time.Duration
	stonkBase string
	noURL     string
	userAgent string
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the fasthttp client, e.g. to dial an in-memory listener in tests.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithEndpoints overrides the quote chart base URL and the reason URL.
func WithEndpoints(stonkBase, noURL string) Option {
	return func(c *Client) {
		if stonkBase != "" {
			c.stonkBase = stonkBase
		}
		if noURL != "" {
			c.noURL = noURL
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		http:      &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second},
		timeout:   10 * time.Second,
		stonkBase: "https://query1.finance.yahoo.com/v8/finance/chart",
		noURL:     "https://naas.isalman.dev/no",
		userAgent: "curl/7.68.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(url)
	req.Header.SetUserAgent(c.userAgent)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}

	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusNotFound:
		return ErrNotFound
	case status >= 400 && status < 500:
		return fmt.Errorf("%w: status=%d", ErrBadRequest, status)
	case status < 200 || status >= 300:
		return fmt.Errorf("get %s: status=%d", url, status)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

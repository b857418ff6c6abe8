// Package api is the client for the ratings REST API. Every payload is
// normalized here, so callers only ever see the canonical models.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/binhbb2204/RateMyProf-Group13/pkg/logger"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/metrics"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 30 * time.Second
	maxBodyBytes    = 4 << 20
)

type Client struct {
	baseURL  *url.URL
	http     *http.Client
	cache    *responseCache
	validate *validator.Validate
	log      *logger.Logger
	metrics  *metrics.ClientMetrics
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse base url: unsupported scheme %q", u.Scheme)
	}

	o := options{
		timeout:   defaultTimeout,
		cacheTTL:  defaultCacheTTL,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.WithContext("component", "api_client")
	}
	if o.metrics == nil {
		o.metrics = metrics.NewClientMetrics(nil)
	}

	// Outermost first: limiter, bearer, metrics, logging, network.
	var rt http.RoundTripper = loggingTransport{next: o.transport, log: o.log}
	rt = metricsTransport{next: rt, metrics: o.metrics}
	rt = bearerTransport{next: rt}
	if o.rps > 0 {
		rt = rateLimitTransport{next: rt, limiter: rate.NewLimiter(rate.Limit(o.rps), max(o.burst, 1))}
	}

	return &Client{
		baseURL:  u,
		http:     &http.Client{Timeout: o.timeout, Transport: rt},
		cache:    newResponseCache(o.cacheTTL, o.timeout, o.metrics),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      o.log,
		metrics:  o.metrics,
	}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Invalidate drops cached responses for the given API paths.
func (c *Client) Invalidate(paths ...string) { c.cache.invalidate(paths...) }

// FlushCache drops every cached response.
func (c *Client) FlushCache() { c.cache.flush() }

// getJSON performs a cached GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	_, err := c.getJSONFresh(ctx, endpoint, path, query, out)
	return err
}

// getJSONFresh is getJSON that also reports whether this call loaded the body
// from the API rather than from the cache or another caller's load.
func (c *Client) getJSONFresh(ctx context.Context, endpoint, path string, query url.Values, out any) (bool, error) {
	body, fresh, err := c.cache.fetch(ctx, cacheKey(path, query), func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, endpoint, http.MethodGet, path, query, nil)
	})
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return fresh, nil
}

// sendJSON performs an uncached request with a JSON body.
func (c *Client) sendJSON(ctx context.Context, endpoint, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	body, err := c.do(ctx, endpoint, method, path, nil, payload)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, payload []byte) ([]byte, error) {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(withEndpoint(ctx, endpoint), method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{status: resp.StatusCode, detail: detailFromBody(data)}
	}
	return data, nil
}

// Health checks GET /health. It bypasses the cache.
func (c *Client) Health(ctx context.Context) error {
	if _, err := c.do(ctx, "health", http.MethodGet, "/health", nil, nil); err != nil {
		return fetchError("health check", err)
	}
	return nil
}

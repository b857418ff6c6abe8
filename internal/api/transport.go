package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/binhbb2204/RateMyProf-Group13/pkg/logger"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/metrics"
	"github.com/rs/xid"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// bearerTransport sets the Authorization header from the credentials carried
// by the request context, if any.
type bearerTransport struct {
	next http.RoundTripper
}

func (t bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	creds, ok := CredentialsFrom(req.Context())
	if !ok {
		return t.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+creds.Token)
	return t.next.RoundTrip(r)
}

// loggingTransport tags each request with an id and logs its outcome.
// Bodies are never logged: login requests carry passwords.
type loggingTransport struct {
	next http.RoundTripper
	log  *logger.Logger
}

func (t loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := xid.New().String()
	r := req.Clone(req.Context())
	r.Header.Set(requestIDHeader, requestID)

	start := time.Now()
	resp, err := t.next.RoundTrip(r)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		t.log.Warn("api_request_failed",
			"request_id", requestID,
			"method", req.Method,
			"url", req.URL.Redacted(),
			"duration_ms", elapsed,
			logger.Err(err),
		)
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	t.log.Debug("api_request",
		"request_id", requestID,
		"endpoint", endpointFrom(req.Context()),
		"method", req.Method,
		"url", req.URL.Redacted(),
		"status", resp.StatusCode,
		"duration_ms", elapsed,
	)
	return resp, nil
}

type metricsTransport struct {
	next    http.RoundTripper
	metrics *metrics.ClientMetrics
}

func (t metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	endpoint := endpointFrom(req.Context())
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	t.metrics.Duration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	t.metrics.Requests.WithLabelValues(endpoint, req.Method, status).Inc()
	return resp, err
}

// rateLimitTransport blocks until the limiter admits the request or the
// request context is done.
type rateLimitTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return t.next.RoundTrip(req)
}

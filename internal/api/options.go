package api

import (
	"net/http"
	"time"

	"github.com/binhbb2204/RateMyProf-Group13/pkg/logger"
	"github.com/binhbb2204/RateMyProf-Group13/pkg/metrics"
)

type options struct {
	timeout   time.Duration
	cacheTTL  time.Duration
	transport http.RoundTripper
	rps       float64
	burst     int
	log       *logger.Logger
	metrics   *metrics.ClientMetrics
}

type Option func(*options)

// WithTimeout bounds every request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithCacheTTL sets how long GET responses are reused. Zero disables the cache.
func WithCacheTTL(d time.Duration) Option {
	return func(o *options) { o.cacheTTL = d }
}

// WithTransport replaces the network transport under the client's own chain.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		if rt != nil {
			o.transport = rt
		}
	}
}

// WithRateLimit caps outgoing requests per second. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rps = rps
		o.burst = burst
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(o *options) { o.metrics = m }
}

package metrics_test

import (
	"testing"

	"github.com/binhbb2204/RateMyProf-Group13/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMetrics_RegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewClientMetrics(reg)

	m.Requests.WithLabelValues("professor_detail", "GET", "200").Inc()
	m.Requests.WithLabelValues("professor_detail", "GET", "200").Inc()
	m.Requests.WithLabelValues("submit_rating", "POST", "401").Inc()
	m.CacheHits.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("professor_detail", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CacheMisses))
}

func TestSnapshot_FlattensAndSorts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewClientMetrics(reg)
	m.Requests.WithLabelValues("ratings", "GET", "200").Inc()
	m.Duration.WithLabelValues("ratings").Observe(0.02)
	m.IgnoredRatings.Add(3)

	samples, err := metrics.Snapshot(reg)
	require.NoError(t, err)

	byName := map[string]metrics.Sample{}
	for _, s := range samples {
		byName[s.Name+"{"+s.Labels+"}"] = s
	}

	assert.Equal(t, 1.0, byName["rmp_api_requests_total{endpoint=ratings,method=GET,status=200}"].Value)
	assert.Equal(t, 1.0, byName["rmp_api_request_duration_seconds_count{endpoint=ratings}"].Value)
	assert.Equal(t, 3.0, byName["rmp_ratings_malformed_total{}"].Value)

	for i := 1; i < len(samples); i++ {
		assert.LessOrEqual(t, samples[i-1].Name, samples[i].Name)
	}
}

func TestNewClientMetrics_NilRegistererDoesNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		metrics.NewClientMetrics(nil)
		metrics.NewClientMetrics(nil)
	})
}

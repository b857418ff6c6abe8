package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/binhbb2204/RateMyProf-Group13/pkg/metrics"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// responseCache stores raw GET bodies by request key and collapses
// concurrent fetches of the same key.
type responseCache struct {
	store   *cache.Cache // nil when caching is disabled
	group   singleflight.Group
	epoch   atomic.Uint64
	timeout time.Duration
	metrics *metrics.ClientMetrics
}

func newResponseCache(ttl, loadTimeout time.Duration, m *metrics.ClientMetrics) *responseCache {
	rc := &responseCache{timeout: loadTimeout, metrics: m}
	if ttl > 0 {
		rc.store = cache.New(ttl, 2*ttl)
	}
	return rc
}

// cacheKey covers everything that changes a GET response. url.Values.Encode
// sorts by key so parameter order does not matter.
func cacheKey(path string, query url.Values) string {
	key := "GET " + path
	if enc := query.Encode(); enc != "" {
		key += "?" + enc
	}
	return key
}

// fetch returns the body for key, loading it at most once for all concurrent
// callers. fresh is true for the caller whose load went to the network.
//
// The shared load is detached from the cancellation of whoever started it and
// bounded by the client timeout instead, so one caller giving up does not fail
// the others. Each caller still returns as soon as its own ctx is done.
func (rc *responseCache) fetch(ctx context.Context, key string, load func(context.Context) ([]byte, error)) (body []byte, fresh bool, err error) {
	if rc.store != nil {
		if v, ok := rc.store.Get(key); ok {
			rc.metrics.CacheHits.Inc()
			return v.([]byte), false, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	rc.metrics.CacheMisses.Inc()

	// A fetch started before an invalidation must neither be joined by later
	// callers nor be stored, so the epoch is part of the flight key.
	epoch := rc.epoch.Load()
	ran := false
	ch := rc.group.DoChan(key+"#"+strconv.FormatUint(epoch, 10), func() (any, error) {
		ran = true
		lctx := context.WithoutCancel(ctx)
		if rc.timeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(lctx, rc.timeout)
			defer cancel()
		}
		body, err := load(lctx)
		if err != nil {
			return nil, err
		}
		if rc.store != nil && rc.epoch.Load() == epoch {
			rc.store.SetDefault(key, body)
		}
		return body, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.([]byte), ran, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// invalidate drops every cached response for the given paths, whatever
// their query strings.
func (rc *responseCache) invalidate(paths ...string) {
	rc.epoch.Add(1)
	if rc.store == nil {
		return
	}
	for key := range rc.store.Items() {
		for _, p := range paths {
			if key == "GET "+p || strings.HasPrefix(key, "GET "+p+"?") {
				rc.store.Delete(key)
				break
			}
		}
	}
}

func (rc *responseCache) flush() {
	rc.epoch.Add(1)
	if rc.store != nil {
		rc.store.Flush()
	}
}

package cache

import (
	"context"
	"time"
)

// FetchThrough implements the fetch-on-miss composition used by every
// report handler: look up key, and on a miss call fetch, store the
// result under ttl, and return it. The second return reports whether
// the value came from cache so handlers can surface it upstream.
//
// A fetch failure propagates unmodified and writes nothing, so a prior
// live entry (if any) stays untouched and errors are never cached.
// Concurrent misses for the same key may each call fetch; last write
// wins, which is acceptable for idempotent report reads.
func FetchThrough[T any](ctx context.Context, c *ResponseCache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, bool, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, true, nil
		}
		// Payload of an unexpected type under this key; refetch and overwrite.
	}

	var zero T
	v, err := fetch(ctx)
	if err != nil {
		return zero, false, err
	}

	c.Set(key, v, ttl)
	return v, false, nil
}

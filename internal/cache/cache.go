// Package cache memoizes expensive fetches for a bounded time window.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Func loads the value for a key.
type Func[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Cache wraps one fetch function with a TTL store and single-flight loading.
// Errors are handed to every waiting caller but never stored.
type Cache[K comparable, V any] struct {
	name         string
	ttl          time.Duration
	fetch        Func[K, V]
	fetchTimeout time.Duration
	store        *expirable.LRU[K, V]
	group        singleflight.Group
}

type options struct {
	size         int
	fetchTimeout time.Duration
}

type Option func(*options)

// WithSize bounds the number of stored entries; the least recently used
// entry is evicted first. Zero means unbounded.
func WithSize(n int) Option {
	return func(o *options) { o.size = n }
}

// WithFetchTimeout bounds a shared load. Loads are detached from the
// callers' cancellation, so this is the only deadline they get.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) { o.fetchTimeout = d }
}

// New builds a cache around fetch. A ttl <= 0 disables storage; concurrent
// loads for the same key are still collapsed.
func New[K comparable, V any](name string, ttl time.Duration, fetch Func[K, V], opts ...Option) *Cache[K, V] {
	o := options{fetchTimeout: time.Minute}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[K, V]{
		name:         name,
		ttl:          ttl,
		fetch:        fetch,
		fetchTimeout: o.fetchTimeout,
	}
	if ttl > 0 {
		c.store = expirable.NewLRU[K, V](o.size, nil, ttl)
	}
	return c
}

// Name identifies the wrapped function in logs.
func (c *Cache[K, V]) Name() string {
	return c.name
}

// Get returns the stored value for key or loads it. The load is shared by
// every concurrent caller and keeps running when the caller that started it
// goes away; a cancelled ctx only stops this caller from waiting.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, error) {
	var zero V
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	ch := c.group.DoChan(flightKey(key), func() (interface{}, error) {
		// another flight may have filled the entry while we queued
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		loadCtx := context.WithoutCancel(ctx)
		if c.fetchTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, c.fetchTimeout)
			defer cancel()
		}

		v, err := c.fetch(loadCtx, key)
		if err != nil {
			return nil, err
		}
		if c.store != nil {
			c.store.Add(key, v)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, fmt.Errorf("%s: %w", c.name, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return zero, fmt.Errorf("%s: %w", c.name, res.Err)
		}
		v, _ := res.Val.(V)
		return v, nil
	}
}

// Purge drops every stored entry.
func (c *Cache[K, V]) Purge() {
	if c.store != nil {
		c.store.Purge()
	}
}

// Len reports the number of live entries.
func (c *Cache[K, V]) Len() int {
	if c.store == nil {
		return 0
	}
	return c.store.Len()
}

func (c *Cache[K, V]) lookup(key K) (V, bool) {
	if c.store == nil {
		var zero V
		return zero, false
	}
	return c.store.Get(key)
}

func flightKey(key any) string {
	return fmt.Sprintf("%#v", key)
}

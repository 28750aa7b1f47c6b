// Package cache provides the short-lived, read-mostly value cache used for
// active delivery-provider settings.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc fetches the current value. found=false means the value is absent.
type LoadFunc[T any] func(ctx context.Context) (value T, found bool, err error)

// Value caches the result of a LoadFunc for a fixed TTL.
//
// When a refresh fails the last known value is served until the next attempt;
// if nothing was ever loaded the value is reported as absent. Callers that
// arrive while a refresh is running share its result, and the mutex is never
// held across a load.
type Value[T any] struct {
	name  string
	ttl   time.Duration
	load  LoadFunc[T]
	now   func() time.Time
	group singleflight.Group

	mu        sync.Mutex
	value     T
	found     bool
	loaded    bool
	fetchedAt time.Time
	gen       uint64
}

type entry[T any] struct {
	value T
	found bool
}

// NewValue creates a cached value. name is used only for logging.
func NewValue[T any](name string, ttl time.Duration, load LoadFunc[T]) *Value[T] {
	return &Value[T]{
		name: name,
		ttl:  ttl,
		load: load,
		now:  time.Now,
	}
}

// Get returns the cached value, refreshing it when the TTL has elapsed.
func (v *Value[T]) Get(ctx context.Context) (T, bool) {
	v.mu.Lock()
	if v.loaded && v.now().Sub(v.fetchedAt) < v.ttl {
		value, found := v.value, v.found
		v.mu.Unlock()
		return value, found
	}
	v.mu.Unlock()

	res, _, _ := v.group.Do(v.name, func() (interface{}, error) {
		return v.refresh(context.WithoutCancel(ctx)), nil
	})
	e := res.(entry[T])
	return e.value, e.found
}

func (v *Value[T]) refresh(ctx context.Context) entry[T] {
	v.mu.Lock()
	gen := v.gen
	v.mu.Unlock()

	value, found, err := v.load(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		slog.Warn("Settings refresh failed, serving last known value",
			"setting", v.name,
			"has_last_known", v.loaded && v.found,
			"error", err,
		)
		if !v.loaded {
			var zero T
			v.value, v.found = zero, false
			v.loaded = true
		}
		// Retry after one TTL.
		if gen == v.gen {
			v.fetchedAt = v.now()
		}
		return entry[T]{value: v.value, found: v.found}
	}

	v.value, v.found = value, found
	v.loaded = true
	// An Invalidate during the load keeps the value stale so the next Get reloads.
	if gen == v.gen {
		v.fetchedAt = v.now()
	}
	return entry[T]{value: value, found: found}
}

// Invalidate forces the next Get to reload.
func (v *Value[T]) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fetchedAt = time.Time{}
	v.gen++
}

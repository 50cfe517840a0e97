// Package datasync keeps the console's read replicas (dashboard stats,
// engagement feed, approval queue, business profile) consistent with
// server state. Caches are only ever written by their own fetch cycle
// or cleared by invalidation after a confirmed mutation, never patched
// optimistically.
package datasync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FetchFunc loads the authoritative value for a resource key.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// flight is one in-flight fetch. Concurrent readers of the same key
// join it instead of issuing duplicate requests.
type flight[T any] struct {
	gen  uint64
	done chan struct{}
	val  T
	err  error
}

// Query is the cached lifecycle of a single resource key.
//
// Staleness: with ttl > 0 the cached value expires after ttl; with
// ttl == 0 it stays trusted until Invalidate.
//
// Ordering: every fetch carries a generation number. A completed fetch
// commits its result only while it is still the latest initiated one,
// so a slow superseded response can never overwrite a newer result
// (last-initiated-wins).
type Query[T any] struct {
	key     string
	ttl     time.Duration
	fetch   FetchFunc[T]
	logger  *zap.Logger
	onError func(error)

	mu        sync.Mutex
	value     T
	valid     bool
	fetchedAt time.Time
	gen       uint64
	inflight  *flight[T]
}

func newQuery[T any](key string, ttl time.Duration, fetch FetchFunc[T], logger *zap.Logger, onError func(error)) *Query[T] {
	return &Query[T]{key: key, ttl: ttl, fetch: fetch, logger: logger, onError: onError}
}

// Key returns the resource key.
func (q *Query[T]) Key() string { return q.key }

// Get returns the cached value when fresh, otherwise fetches. A fetch
// already in flight is joined rather than duplicated.
func (q *Query[T]) Get(ctx context.Context) (T, error) {
	q.mu.Lock()
	if q.valid && (q.ttl == 0 || time.Since(q.fetchedAt) < q.ttl) {
		v := q.value
		q.mu.Unlock()
		return v, nil
	}
	// Join the in-flight fetch only while it is still the latest
	// initiated one. A flight superseded by Invalidate carries a stale
	// generation and must not serve reads issued after the invalidation.
	f := q.inflight
	if f == nil || f.gen != q.gen {
		f = q.startLocked(ctx)
	}
	q.mu.Unlock()

	return q.wait(ctx, f)
}

// Refresh forces a fetch, superseding any in-flight one. The superseded
// fetch's result is discarded when it eventually lands.
func (q *Query[T]) Refresh(ctx context.Context) (T, error) {
	q.mu.Lock()
	f := q.startLocked(ctx)
	q.mu.Unlock()

	return q.wait(ctx, f)
}

// Invalidate marks the cached value stale so the next read re-fetches.
// It also supersedes any in-flight fetch: a response initiated before
// the invalidation must not repopulate the cache.
func (q *Query[T]) Invalidate() {
	q.mu.Lock()
	q.valid = false
	q.gen++
	q.mu.Unlock()
	if q.logger != nil {
		q.logger.Debug("cache invalidated", zap.String("resource", q.key))
	}
}

// Cached returns the current cached value without fetching.
func (q *Query[T]) Cached() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.value, q.valid
}

// startLocked begins a new fetch under q.mu, bumping the generation so
// any previous in-flight fetch becomes stale.
func (q *Query[T]) startLocked(ctx context.Context) *flight[T] {
	q.gen++
	f := &flight[T]{gen: q.gen, done: make(chan struct{})}
	q.inflight = f
	go q.run(ctx, f)
	return f
}

func (q *Query[T]) run(ctx context.Context, f *flight[T]) {
	val, err := q.fetch(ctx)

	q.mu.Lock()
	if q.inflight == f {
		q.inflight = nil
	}
	committed := false
	if err == nil && f.gen == q.gen {
		q.value = val
		q.valid = true
		q.fetchedAt = time.Now()
		committed = true
	}
	q.mu.Unlock()

	if q.logger != nil {
		if err != nil {
			q.logger.Debug("fetch failed", zap.String("resource", q.key), zap.Error(err))
		} else if !committed {
			q.logger.Debug("stale fetch discarded", zap.String("resource", q.key))
		}
	}
	// Delegate before waking waiters, so e.g. an auth rejection has
	// already reached the session controller when the caller resumes.
	if err != nil && q.onError != nil {
		q.onError(err)
	}

	f.val, f.err = val, err
	close(f.done)
}

// wait blocks until f completes or ctx ends. A caller abandoning the
// wait does not disturb the cache; the fetch result is simply applied
// or discarded by run.
func (q *Query[T]) wait(ctx context.Context, f *flight[T]) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

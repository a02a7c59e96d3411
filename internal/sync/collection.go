// Package sync keeps a live, ordered local view of a remote collection.
// Each store emission fully replaces the cached set; a bounded fallback
// timer guarantees consumers are never left waiting on an unreachable
// backend, at the cost of possibly serving stale (or empty) data.
package sync

import (
	"context"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"sales-register/internal/store"
)

// DefaultFallback is how long a fresh subscription waits for its first
// emission before giving up on the loading state. Matches the original
// deployment's 3-second window for unprovisioned or blocked backends.
const DefaultFallback = 3 * time.Second

// Option configures a subscription.
type Option func(*Collection)

// WithFallback overrides the bounded-wait window.
func WithFallback(d time.Duration) Option {
	return func(c *Collection) { c.fallback = d }
}

// WithLogger attaches a logger for delivery diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *Collection) { c.log = log }
}

// Collection is the locally cached view of one remote collection. All
// mutation happens on the single delivery goroutine; accessors take copies
// under the mutex, so consumers never observe a half-applied snapshot.
type Collection struct {
	name       string
	orderField string
	fallback   time.Duration
	log        *zap.Logger

	mu      stdsync.Mutex
	docs    []store.Document
	loading bool
	err     error
	closed  bool

	changes chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
}

// Subscribe opens a continuous ordered subscription on the named collection
// and returns its live local view. The view starts loading with an empty
// cache; the first emission (or the fallback timer) clears the loading flag.
func Subscribe(ctx context.Context, st store.Store, collection, orderField string, opts ...Option) (*Collection, error) {
	c := &Collection{
		name:       collection,
		orderField: orderField,
		fallback:   DefaultFallback,
		log:        zap.NewNop(),
		loading:    true,
		changes:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	events, err := st.Watch(watchCtx, collection, orderField)
	if err != nil {
		cancel()
		return nil, err
	}

	go c.run(watchCtx, events)
	return c, nil
}

func (c *Collection) run(ctx context.Context, events <-chan store.Event) {
	defer close(c.done)

	timer := time.NewTimer(c.fallback)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			// No emission within the window: stop blocking consumers but
			// leave the cache untouched. A later emission still applies.
			if c.forceLoaded() {
				c.log.Warn("subscription fallback expired",
					zap.String("collection", c.name),
					zap.Duration("window", c.fallback))
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			timer.Stop()
			if ev.Err != nil {
				c.applyError(ev.Err)
				continue
			}
			c.applySnapshot(ev.Docs)
		}
	}
}

// applySnapshot replaces the cached set. Emissions that race teardown are
// discarded: once closed, consumer-visible state never changes again.
func (c *Collection) applySnapshot(docs []store.Document) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.docs = docs
	c.loading = false
	c.err = nil
	c.mu.Unlock()
	c.signal()
}

// applyError records the delivery error and clears loading, but keeps the
// existing cache: stale data beats no data.
func (c *Collection) applyError(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.err = err
	c.loading = false
	c.mu.Unlock()
	c.log.Warn("subscription delivery error",
		zap.String("collection", c.name), zap.Error(err))
	c.signal()
}

// forceLoaded clears the loading flag without touching data. Reports
// whether the flag was actually still set.
func (c *Collection) forceLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.loading {
		return false
	}
	c.loading = false
	return true
}

func (c *Collection) signal() {
	select {
	case c.changes <- struct{}{}:
	default: // a notification is already pending; snapshots coalesce
	}
}

// Snapshot returns a copy of the current cached ordered set.
func (c *Collection) Snapshot() []store.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]store.Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// Loading reports whether the view is still waiting for its first emission.
func (c *Collection) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last delivery error, if any. A non-nil error does not
// mean the cached data was cleared.
func (c *Collection) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Changes returns a coalesced notification channel: at least one receive is
// possible after any state change applied since the last receive.
func (c *Collection) Changes() <-chan struct{} {
	return c.changes
}

// Name returns the collection this view observes.
func (c *Collection) Name() string { return c.name }

// Close tears the subscription down: the watch is cancelled, the fallback
// timer dies with the delivery goroutine, and any in-flight emission is
// discarded. Safe to call more than once.
func (c *Collection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	<-c.done
}

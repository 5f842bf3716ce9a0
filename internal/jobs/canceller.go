package jobs

import (
	"context"
	"sync"
)

// Canceller tracks the cancel function of each in-flight review so a
// close/merge event can stop evaluation for that merge request. Cancelled
// work drains; it is not forcibly aborted, and once cancellation is
// observed no further side effects are issued.
type Canceller struct {
	mu     sync.Mutex
	active map[string]context.CancelFunc
}

// NewCanceller creates an empty registry.
func NewCanceller() *Canceller {
	return &Canceller{active: make(map[string]context.CancelFunc)}
}

// Track derives a cancellable context for key and registers it. The
// returned stop function deregisters and releases the context.
func (c *Canceller) Track(ctx context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.active[key] = cancel
	c.mu.Unlock()

	return ctx, func() {
		c.mu.Lock()
		if c.active[key] != nil {
			delete(c.active, key)
		}
		c.mu.Unlock()
		cancel()
	}
}

// Cancel stops the in-flight review for key, if any.
func (c *Canceller) Cancel(key string) {
	c.mu.Lock()
	cancel := c.active[key]
	delete(c.active, key)
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

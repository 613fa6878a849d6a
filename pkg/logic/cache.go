package logic

import (
	"sync"
	"time"
)

// valueCache holds a short-lived adjustment target. Every update restarts the
// expiry timer; the generation counter makes a timer that already fired for
// an older update a no-op.
type valueCache struct {
	expiry time.Duration

	mu    sync.Mutex
	value float64
	set   bool
	gen   uint64
	timer *time.Timer
}

func newValueCache(expiry time.Duration) *valueCache {
	return &valueCache{expiry: expiry}
}

// get returns the cached target, if any.
func (c *valueCache) get() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.set
}

// update seeds the cache when empty, applies next, hands the result to write
// while still holding the lock, and restarts the expiry. When the cache is
// empty and seed has no value, nothing is written and update returns false.
func (c *valueCache) update(seed func() (float64, bool), next func(float64) float64, write func(float64) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.set {
		s, ok := seed()
		if !ok {
			return false
		}
		c.value = s
	}
	c.value = next(c.value)
	c.set = true
	c.restartLocked()
	return write(c.value)
}

func (c *valueCache) restartLocked() {
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.expiry, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen == gen {
			c.set = false
		}
	})
}

// stop cancels the pending expiry and clears the target.
func (c *valueCache) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.set = false
}

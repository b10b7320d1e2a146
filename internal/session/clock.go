package session

import (
	"sync"
	"time"
)

// Clock is a deadline-based countdown. Remaining time is always computed
// from the deadline; Tick only polls it and fires expiry callbacks.
type Clock struct {
	mu        sync.Mutex
	now       func() time.Time
	total     time.Duration
	deadline  time.Time
	last      time.Duration
	started   bool
	stopped   bool
	fired     bool
	callbacks []func()
}

// NewClock returns a clock reading time from now, or time.Now when nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Start arms the clock for d from the current time.
func (c *Clock) Start(d time.Duration) {
	c.StartWithDeadline(c.now().Add(d), d)
}

// StartWithDeadline arms the clock for an absolute deadline, used when a
// session resumes with the server's deadline. total is the full duration
// of the attempt and is only used to report elapsed time.
func (c *Clock) StartWithDeadline(deadline time.Time, total time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deadline = deadline
	c.total = total
	c.last = total
	c.started = true
	c.stopped = false
	c.fired = false
	c.last = c.remainingLocked()
}

// OnExpire registers fn to run once when the countdown reaches zero.
func (c *Clock) OnExpire(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = append(c.callbacks, fn)
}

// Tick polls the clock. The first observation of zero remaining time,
// by Tick or Remaining, runs the expiry callbacks; later calls are no-ops.
func (c *Clock) Tick() time.Duration {
	return c.observe()
}

// Remaining returns the time left. It never increases between calls and
// never goes below zero.
func (c *Clock) Remaining() time.Duration {
	return c.observe()
}

func (c *Clock) observe() time.Duration {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return 0
	}
	remaining := c.remainingLocked()
	if remaining > 0 || c.fired || c.stopped {
		c.mu.Unlock()
		return remaining
	}
	c.fired = true
	callbacks := make([]func(), len(c.callbacks))
	copy(callbacks, c.callbacks)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	return 0
}

func (c *Clock) remainingLocked() time.Duration {
	remaining := c.deadline.Sub(c.now())
	if remaining < 0 {
		remaining = 0
	}
	if remaining > c.last {
		remaining = c.last
	}
	c.last = remaining
	return remaining
}

// Elapsed is the portion of the full duration already used. It reads the
// clock without running expiry callbacks.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return 0
	}
	remaining := c.remainingLocked()
	if c.total <= remaining {
		return 0
	}
	return c.total - remaining
}

// Expired reports whether the expiry callbacks have run.
func (c *Clock) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}

// Stop disarms the clock. Expiry callbacks will not run after Stop.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
}

func (c *Clock) Deadline() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deadline
}

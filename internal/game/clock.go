package game

import (
	"sync"
	"time"
)

// Stopper cancels a pending clock callback. It reports whether the call
// stopped the callback before it ran.
type Stopper interface {
	Stop() bool
}

// Clock is the time source of a session. AfterFunc callbacks must run on
// the goroutine that owns the session.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// RealClock fires callbacks through post, which hands them to the owning
// event loop instead of running them on the timer goroutine.
type RealClock struct {
	post func(func())
}

func NewRealClock(post func(func())) *RealClock {
	return &RealClock{post: post}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

func (c *RealClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, func() {
		c.post(f)
	})
}

// ManualClock is a virtual clock. Time only moves on Advance, and due
// callbacks run synchronously on the caller's goroutine in due order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	clock *ManualClock
	at    time.Time
	seq   uint64
	fn    func()
	done  bool
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d < 0 {
		d = 0
	}
	c.seq++
	t := &manualTimer{clock: c, at: c.now.Add(d), seq: c.seq, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.clock.remove(t)
	return true
}

// remove drops t from the pending list. Caller holds mu.
func (c *ManualClock) remove(t *manualTimer) {
	for i, p := range c.timers {
		if p == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}

// earliest returns the next pending timer due at or before limit. Caller
// holds mu.
func (c *ManualClock) earliest(limit time.Time) *manualTimer {
	var next *manualTimer
	for _, t := range c.timers {
		if t.at.After(limit) {
			continue
		}
		if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

// Advance moves time forward by d, running every callback that falls due,
// including ones scheduled by callbacks along the way.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		t := c.earliest(target)
		if t == nil {
			break
		}
		c.now = t.at
		t.done = true
		c.remove(t)

		c.mu.Unlock()
		t.fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// NextDue reports how long until the next pending callback.
func (c *ManualClock) NextDue() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.earliest(time.Unix(1<<62, 0))
	if t == nil {
		return 0, false
	}
	return t.at.Sub(c.now), true
}

// Pending reports how many callbacks are scheduled.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

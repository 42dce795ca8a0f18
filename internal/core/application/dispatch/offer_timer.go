package dispatch

import (
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/clock"
)

// Handle identifies one countdown started by OfferTimer.
type Handle uint64

// ExpiryFunc receives the single terminal event of a countdown.
type ExpiryFunc func(orderID kernel.UUID, h Handle)

// OfferTimer runs one independent countdown per open offer. The deadline is
// absolute: a timer that fires early re-arms for the remainder, so an expiry is
// never reported before the deadline and is reported at most once.
type OfferTimer struct {
	mu       sync.Mutex
	clock    clock.Clock
	onExpire ExpiryFunc
	next     Handle
	running  map[Handle]*countdown
}

type countdown struct {
	orderID  kernel.UUID
	deadline time.Time
	timer    clock.Timer
}

// NewOfferTimer returns a timer that calls onExpire, outside any lock, once per
// countdown that runs out.
func NewOfferTimer(clk clock.Clock, onExpire ExpiryFunc) *OfferTimer {
	return &OfferTimer{
		clock:    clk,
		onExpire: onExpire,
		running:  make(map[Handle]*countdown),
	}
}

// Start begins a countdown of window from now.
func (t *OfferTimer) Start(orderID kernel.UUID, window time.Duration) Handle {
	return t.StartUntil(orderID, t.clock.Now().Add(window))
}

// StartUntil begins a countdown to an absolute deadline.
func (t *OfferTimer) StartUntil(orderID kernel.UUID, deadline time.Time) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	h := t.next
	c := &countdown{orderID: orderID, deadline: deadline}
	t.running[h] = c
	t.arm(h, c)
	return h
}

// Cancel stops a countdown. It reports false when the countdown already expired
// or was cancelled, in which case nothing happens.
func (t *OfferTimer) Cancel(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.running[h]
	if !ok {
		return false
	}
	delete(t.running, h)
	c.timer.Stop()
	return true
}

// Remaining is the time left on a running countdown; ok is false once it ended.
func (t *OfferTimer) Remaining(h Handle) (remaining time.Duration, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.running[h]
	if !ok {
		return 0, false
	}
	if d := c.deadline.Sub(t.clock.Now()); d > 0 {
		return d, true
	}
	return 0, true
}

// Running is the number of live countdowns.
func (t *OfferTimer) Running() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.running)
}

// Stop cancels every countdown.
func (t *OfferTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for h, c := range t.running {
		c.timer.Stop()
		delete(t.running, h)
	}
}

// arm must be called with mu held.
func (t *OfferTimer) arm(h Handle, c *countdown) {
	c.timer = t.clock.AfterFunc(c.deadline.Sub(t.clock.Now()), func() { t.fire(h) })
}

func (t *OfferTimer) fire(h Handle) {
	t.mu.Lock()
	c, ok := t.running[h]
	if !ok {
		t.mu.Unlock()
		return
	}
	if t.clock.Now().Before(c.deadline) {
		t.arm(h, c)
		t.mu.Unlock()
		return
	}
	delete(t.running, h)
	t.mu.Unlock()

	t.onExpire(c.orderID, h)
}

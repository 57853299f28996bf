package realtime

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is the usual settle time for bursty UI events (e.g. resize).
const DefaultQuietPeriod = 200 * time.Millisecond

// Debouncer coalesces bursts of Trigger calls into a single callback that
// runs once the burst has been quiet for the configured period.
//
// Every Trigger takes a new token. A timer that fires with a token that is no
// longer current does nothing, so stale timers are inert even when Stop on the
// underlying time.Timer loses the race with its goroutine.
type Debouncer struct {
	mu    sync.Mutex
	quiet time.Duration
	token uint64
	timer *time.Timer
}

// NewDebouncer returns a debouncer with the given quiet period. Non-positive
// periods fall back to DefaultQuietPeriod.
func NewDebouncer(quiet time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{quiet: quiet}
}

// Trigger (re)arms the debouncer with fn and returns the token tied to it.
// Only the fn of the latest Trigger in a burst runs.
func (d *Debouncer) Trigger(fn func()) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.token++
	token := d.token
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		d.fire(token, fn)
	})
	return token
}

func (d *Debouncer) fire(token uint64, fn func()) {
	d.mu.Lock()
	if token != d.token {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	fn()
}

// Pending reports whether a callback is armed and has not fired yet.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop invalidates any armed callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.token++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Quiet returns the configured quiet period.
func (d *Debouncer) Quiet() time.Duration {
	return d.quiet
}

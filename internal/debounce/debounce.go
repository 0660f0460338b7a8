// Package debounce coalesces bursts of calls into one deferred call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer groups rapid successive calls into a single call after a quiet
// period. The timer is restarted, never queued: at most one call is pending.
//
// All methods are safe for concurrent use. The callback is never run
// concurrently with itself from the same debouncer.
type Debouncer struct {
	mu       sync.Mutex
	run      sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	pending  bool
	seq      uint64 // detects stale timer callbacks
	callback func()
}

// New creates a debouncer that runs callback once no call has been made for
// delay.
func New(delay time.Duration, callback func()) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
	}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// SetDelay changes the quiet period for subsequent calls.
func (d *Debouncer) SetDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delay = delay
}

// Call (re)starts the quiet period. Any previously scheduled run is dropped.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	currentSeq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.run.Lock()
		defer d.run.Unlock()

		d.mu.Lock()
		if !d.pending || d.seq != currentSeq || d.callback == nil {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.mu.Unlock()
		d.callback()
	})
}

// CallImmediate runs the callback now if a call is pending, cancelling the
// scheduled run. Otherwise it waits for a call that is already running, so
// on return no callback is in progress.
//
// The run lock is always taken before mu, and pending is only cleared while
// holding it.
func (d *Debouncer) CallImmediate() {
	d.run.Lock()
	defer d.run.Unlock()

	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	run := d.pending && d.callback != nil
	d.pending = false
	d.mu.Unlock()

	if run {
		d.callback()
	}
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// IsPending returns true if a call is scheduled.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Package debounce coalesces bursts of triggers into one delayed call.
//
// Every Trigger restarts the timer; only the last scheduled invocation runs.
// A panic in the debounced function is recovered and reported so the timer
// keeps working for the next burst.
package debounce

import (
	"fmt"
	"sync"
	"time"
)

// Timer is the part of *time.Timer a Clock hands out.
type Timer interface {
	Stop() bool
}

// Clock schedules fn to run after d.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SystemClock schedules with time.AfterFunc.
type SystemClock struct{}

func (SystemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Debouncer runs fn once after delay has passed without a new Trigger.
type Debouncer struct {
	mu      sync.Mutex
	clock   Clock
	delay   time.Duration
	fn      func()
	onPanic func(err error)
	timer   Timer
	gen     uint64
}

// New creates a debouncer. onPanic receives recovered panics and may be nil.
func New(clock Clock, delay time.Duration, fn func(), onPanic func(err error)) *Debouncer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Debouncer{clock: clock, delay: delay, fn: fn, onPanic: onPanic}
}

// Trigger (re)starts the timer.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels a scheduled call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Flush runs a scheduled call immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	gen := d.gen
	d.mu.Unlock()
	d.fire(gen)
}

// fire runs fn if gen is still the latest trigger. A stale timer whose Stop
// lost the race against expiry is ignored here.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	defer func() {
		if r := recover(); r != nil && d.onPanic != nil {
			d.onPanic(fmt.Errorf("debounce: recovered panic: %v", r))
		}
	}()
	d.fn()
}

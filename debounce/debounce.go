// Package debounce collapses bursts of rapid updates into a single
// delayed write carrying the most recent value.
package debounce

import (
	"sync"
	"time"
)

type Debouncer[T any] struct {
	delay time.Duration
	write func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	has     bool
	stopped bool
}

// New returns a debouncer that calls write with the latest value given
// to Set, delay after the last Set in a burst. write runs on a timer
// goroutine; it must be safe to call from there.
func New[T any](delay time.Duration, write func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, write: write}
}

func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = v
	d.has = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
	} else {
		d.timer.Reset(d.delay)
	}
}

func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	if !d.has || d.stopped {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.has = false
	d.mu.Unlock()
	d.write(v)
}

// Flush writes any pending value immediately. Used at shutdown so the
// last burst is not lost to a still-running timer.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	if !d.has || d.stopped {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.has = false
	d.mu.Unlock()
	d.write(v)
}

// Stop cancels any pending write. The debouncer accepts no further
// values after Stop.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.has = false
}

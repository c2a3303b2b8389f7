// Package query provides the client-side data plumbing for the desk:
// a trailing-edge debouncer for fast-changing input values and a cached
// fetch layer with stale-while-revalidate semantics.
package query

import (
	"sync"
	"time"
)

// Debouncer delays propagation of a rapidly-changing value. The debounced
// value is delivered on C only after the input has remained unchanged for
// the full delay; any Set within the window restarts it. A zero delay
// still defers delivery by one timer tick. Values are replaced, not
// compared: the latest Set always wins.
type Debouncer[T any] struct {
	delay time.Duration
	out   chan T

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer with the given delay.
func NewDebouncer[T any](delay time.Duration) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		out:   make(chan T, 1),
	}
}

// Set feeds a new value. The previous pending timer, if any, is cancelled
// so only the final value of a burst is ever delivered.
func (d *Debouncer[T]) Set(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen, value)
	})
}

// fire delivers the value unless a newer Set superseded this timer.
func (d *Debouncer[T]) fire(gen uint64, value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.gen {
		return
	}

	// Latest value wins: drop an undelivered previous value.
	select {
	case <-d.out:
	default:
	}
	d.out <- value
}

// C returns the channel on which debounced values are delivered.
func (d *Debouncer[T]) C() <-chan T {
	return d.out
}

// Stop cancels any pending delivery and releases the timer.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

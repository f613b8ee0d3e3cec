package completion

import (
	"sync"
	"time"
)

// Debouncer delays fn until Trigger has not been called for the delay.
// Each Trigger resets the timer; only the last pending call fires. A timer
// that already expired but has not yet run fn is superseded too.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer returns a debouncer for fn.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn, cancelling any pending call.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen

	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Stop cancels a pending call. It reports whether a call was cancelled.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++

	if d.timer == nil {
		return false
	}

	stopped := d.timer.Stop()
	d.timer = nil

	return stopped
}

// fire runs fn if no Trigger or Stop happened since generation gen was
// scheduled.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	current := gen == d.gen
	d.mu.Unlock()

	if current {
		d.fn()
	}
}

// Retrigger re-issues a completion request after text changes settle, but
// only while the completion popup is open.
type Retrigger struct {
	debouncer *Debouncer
}

// NewRetrigger returns a scheduler that, delay after the last TextChanged,
// calls fire if isOpen reports an open popup.
func NewRetrigger(delay time.Duration, isOpen func() bool, fire func()) *Retrigger {
	return &Retrigger{
		debouncer: NewDebouncer(delay, func() {
			if isOpen() {
				fire()
			}
		}),
	}
}

// TextChanged records an accepted text change.
func (r *Retrigger) TextChanged() {
	r.debouncer.Trigger()
}

// Stop cancels a pending retrigger.
func (r *Retrigger) Stop() {
	r.debouncer.Stop()
}

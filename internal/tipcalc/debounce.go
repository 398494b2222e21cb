package tipcalc

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a deferred recalculation runs.
const DefaultDebounce = 150 * time.Millisecond

// Token identifies one pending recalculation. Only the latest token issued
// by a Debouncer is live; older ones are superseded.
type Token uint64

// Debouncer defers work until edits stop arriving. Hosts with their own
// scheduler use Next and Latest; others use Trigger.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	latest Token
	timer  *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

func (d *Debouncer) Delay() time.Duration { return d.delay }

// Next issues a new token, superseding all earlier ones.
func (d *Debouncer) Next() Token {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.latest++
	return d.latest
}

// Latest reports whether t is still the most recent token.
func (d *Debouncer) Latest(t Token) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return t == d.latest
}

// Trigger schedules fn after the delay and cancels any pending call.
// fn runs on its own goroutine.
func (d *Debouncer) Trigger(fn func()) Token {
	t := d.Next()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		if d.Latest(t) {
			fn()
		}
	})
	return t
}

// Stop drops any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.latest++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

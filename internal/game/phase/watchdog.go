package phase

import (
	"sync"
	"time"
)

// Watchdog fires a callback when an armed wait outlives its timeout. Each Arm
// supersedes the previous one; a stale timer never fires.
// It is safe for concurrent use.
type Watchdog struct {
	mu      sync.Mutex
	timeout time.Duration
	timer   *time.Timer
	gen     uint64
}

// NewWatchdog returns a disarmed watchdog. A zero timeout disables it.
//
// Precondition: timeout >= 0.
func NewWatchdog(timeout time.Duration) *Watchdog {
	return &Watchdog{timeout: timeout}
}

// Timeout returns the configured timeout.
func (w *Watchdog) Timeout() time.Duration { return w.timeout }

// Arm starts the timeout for a new wait. onFire runs on its own goroutine.
//
// Postcondition: onFire is called once after Timeout unless Disarm or a later
// Arm happens first.
func (w *Watchdog) Arm(onFire func()) {
	if w.timeout <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	gen := w.gen
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.timeout, func() {
		w.mu.Lock()
		live := gen == w.gen
		w.mu.Unlock()
		if live {
			onFire()
		}
	})
}

// Disarm cancels the pending timeout. Safe to call multiple times.
//
// Postcondition: no callback armed before Disarm returns will fire.
func (w *Watchdog) Disarm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

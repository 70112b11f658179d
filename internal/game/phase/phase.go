// Package phase provides the single-current-phase scheduler that sequences
// every battle step.
package phase

// Phase is one unit of battle work. Start performs the work and eventually
// hands control back with Scheduler.End, either before Start returns or
// later from an asynchronous completion.
//
// Implementations embed Base.
type Phase interface {
	// Name identifies the phase in logs.
	Name() string
	// Start runs the phase. It is called exactly once, by the scheduler.
	Start()
	base() *Base
}

// Base carries the scheduler bookkeeping shared by every phase.
type Base struct {
	cancelled bool
	started   bool
	ended     bool
}

func (b *Base) base() *Base { return b }

// Cancel marks the phase cancelled. A cancelled phase still runs and ends,
// but skips its work.
func (b *Base) Cancel() { b.cancelled = true }

// Cancelled reports whether Cancel was called.
func (b *Base) Cancelled() bool { return b.cancelled }

// Started reports whether the scheduler has started the phase.
func (b *Base) Started() bool { return b.started }

// Ended reports whether the phase has been ended.
func (b *Base) Ended() bool { return b.ended }

// Func adapts a function to a Phase. The function receives the phase so it
// can end itself.
type Func struct {
	Base
	name string
	fn   func(*Func)
}

// NewFunc returns a Phase named name running fn.
func NewFunc(name string, fn func(*Func)) *Func {
	return &Func{name: name, fn: fn}
}

// Name returns the phase name.
func (f *Func) Name() string { return f.name }

// Start calls the wrapped function.
func (f *Func) Start() { f.fn(f) }

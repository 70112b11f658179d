package phase

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Scheduling misuse errors.
var (
	ErrNotCurrent   = errors.New("phase is not the current phase")
	ErrAlreadyEnded = errors.New("phase already ended")
)

// Scheduler is a FIFO phase queue with a prepend buffer and exactly one
// current phase. It is not safe for concurrent use; one worker owns it.
//
// Invariant: at most one phase is current; a phase is started at most once.
type Scheduler struct {
	queue   []Phase
	prepend []Phase
	current Phase
	refill  func()
	strict  bool
	logger  *zap.Logger

	running bool
	pending bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithStrict makes scheduling misuse panic instead of being logged and ignored.
func WithStrict(strict bool) Option {
	return func(s *Scheduler) { s.strict = strict }
}

// WithRefill sets the hook consulted when Shift finds the queue empty. The
// hook may Push phases; if it pushes none the scheduler goes idle.
func WithRefill(fn func()) Option {
	return func(s *Scheduler) { s.refill = fn }
}

// WithLogger sets the scheduler logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// NewScheduler returns an idle scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Push appends p to the tail of the queue.
func (s *Scheduler) Push(p Phase) {
	s.queue = append(s.queue, p)
}

// Unshift buffers p for the queue head. On the next shift the whole buffer
// moves ahead of everything queued, keeping the order of the Unshift calls.
func (s *Scheduler) Unshift(p Phase) {
	s.prepend = append(s.prepend, p)
}

// Shift advances to the next phase if none is current. Nested calls made
// while a phase is starting are deferred to the running loop.
//
// Postcondition: either a phase is current or the queue is empty and the
// scheduler is idle.
func (s *Scheduler) Shift() {
	s.pending = true
	if s.running {
		return
	}
	s.running = true
	defer func() { s.running = false }()

	for s.pending {
		s.pending = false
		if s.current != nil {
			return
		}
		s.flush()
		if len(s.queue) == 0 && s.refill != nil {
			s.refill()
			s.flush()
		}
		if len(s.queue) == 0 {
			s.logger.Debug("scheduler idle")
			return
		}
		p := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.current = p
		p.base().started = true
		s.logger.Debug("phase start", zap.String("phase", p.Name()), zap.Int("queued", len(s.queue)))
		p.Start()
	}
}

func (s *Scheduler) flush() {
	if len(s.prepend) == 0 {
		return
	}
	s.queue = append(s.prepend, s.queue...)
	s.prepend = nil
}

// End completes p and advances to the next phase.
//
// Precondition: p is the current phase and has not ended. Otherwise the call
// panics in strict mode and is logged and ignored in lenient mode.
func (s *Scheduler) End(p Phase) {
	b := p.base()
	switch {
	case b.ended:
		s.misuse(ErrAlreadyEnded, p)
		return
	case s.current != p:
		s.misuse(ErrNotCurrent, p)
		return
	}
	b.ended = true
	s.current = nil
	s.logger.Debug("phase end", zap.String("phase", p.Name()))
	s.Shift()
}

func (s *Scheduler) misuse(err error, p Phase) {
	if s.strict {
		panic(fmt.Errorf("phase %s: %w", p.Name(), err))
	}
	current := ""
	if s.current != nil {
		current = s.current.Name()
	}
	s.logger.Error("scheduling misuse ignored",
		zap.Error(err), zap.String("phase", p.Name()), zap.String("current", current))
}

// Clear drops every queued and prepended phase. The current phase is kept.
func (s *Scheduler) Clear() {
	clear(s.queue)
	s.queue = s.queue[:0]
	s.prepend = nil
}

// Current returns the running phase, or nil when idle.
func (s *Scheduler) Current() Phase { return s.current }

// Len returns the number of phases waiting, prepended ones included.
func (s *Scheduler) Len() int { return len(s.queue) + len(s.prepend) }

// Idle reports whether no phase is current.
func (s *Scheduler) Idle() bool { return s.current == nil }

// Names returns the names of the waiting phases in the order they will run.
func (s *Scheduler) Names() []string {
	names := make([]string, 0, s.Len())
	for _, p := range s.prepend {
		names = append(names, p.Name())
	}
	for _, p := range s.queue {
		names = append(names, p.Name())
	}
	return names
}

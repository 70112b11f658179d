package phase_test

import (
	"errors"
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/monbattle/internal/game/phase"
)

// syncPhase records its start and ends immediately.
func syncPhase(s *phase.Scheduler, log *[]string, name string) *phase.Func {
	return phase.NewFunc(name, func(f *phase.Func) {
		*log = append(*log, name)
		s.End(f)
	})
}

// asyncPhase records its start and waits for an explicit End.
func asyncPhase(log *[]string, name string) *phase.Func {
	return phase.NewFunc(name, func(f *phase.Func) {
		*log = append(*log, name)
	})
}

func TestScheduler_PushRunsInOrder(t *testing.T) {
	var log []string
	s := phase.NewScheduler()
	for _, n := range []string{"a", "b", "c"} {
		s.Push(syncPhase(s, &log, n))
	}
	s.Shift()
	assert.Equal(t, []string{"a", "b", "c"}, log)
	assert.True(t, s.Idle())
	assert.Zero(t, s.Len())
}

func TestScheduler_UnshiftRunsBeforeQueuedInUnshiftOrder(t *testing.T) {
	var log []string
	s := phase.NewScheduler()
	first := phase.NewFunc("first", func(f *phase.Func) {
		log = append(log, "first")
		s.Unshift(syncPhase(s, &log, "u1"))
		s.Unshift(syncPhase(s, &log, "u2"))
		s.Push(syncPhase(s, &log, "tail"))
		s.End(f)
	})
	s.Push(first)
	s.Push(syncPhase(s, &log, "queued"))
	s.Shift()
	assert.Equal(t, []string{"first", "u1", "u2", "queued", "tail"}, log)
}

func TestScheduler_AsyncCompletion(t *testing.T) {
	var log []string
	s := phase.NewScheduler()
	wait := asyncPhase(&log, "wait")
	s.Push(wait)
	s.Push(syncPhase(s, &log, "after"))
	s.Shift()

	assert.Equal(t, []string{"wait"}, log)
	assert.Same(t, wait, s.Current())
	assert.False(t, s.Idle())

	s.Shift()
	assert.Equal(t, []string{"wait"}, log, "shift never preempts the current phase")

	s.End(wait)
	assert.Equal(t, []string{"wait", "after"}, log)
	assert.True(t, wait.Ended())
}

func TestScheduler_Refill(t *testing.T) {
	var log []string
	turns := 0
	var s *phase.Scheduler
	s = phase.NewScheduler(phase.WithRefill(func() {
		if turns < 3 {
			turns++
			s.Push(syncPhase(s, &log, fmt.Sprintf("turn%d", turns)))
		}
	}))
	s.Shift()
	assert.Equal(t, []string{"turn1", "turn2", "turn3"}, log)
	assert.True(t, s.Idle())
}

func TestScheduler_Clear(t *testing.T) {
	var log []string
	s := phase.NewScheduler()
	s.Push(phase.NewFunc("clearer", func(f *phase.Func) {
		s.Unshift(syncPhase(s, &log, "prepended"))
		s.Clear()
		s.Unshift(syncPhase(s, &log, "victory"))
		s.End(f)
	}))
	s.Push(syncPhase(s, &log, "enemy_move"))
	s.Push(syncPhase(s, &log, "turn_end"))
	s.Shift()
	assert.Equal(t, []string{"victory"}, log)
}

func TestScheduler_CancelledPhaseStillRuns(t *testing.T) {
	var log []string
	s := phase.NewScheduler()
	p := phase.NewFunc("move", func(f *phase.Func) {
		if !f.Cancelled() {
			log = append(log, "acted")
		}
		s.End(f)
	})
	p.Cancel()
	s.Push(p)
	s.Push(syncPhase(s, &log, "next"))
	s.Shift()
	assert.Equal(t, []string{"next"}, log)
	assert.True(t, p.Started())
	assert.True(t, p.Ended())
}

func TestScheduler_DeepSynchronousChainDoesNotRecurse(t *testing.T) {
	s := phase.NewScheduler()
	const n = 10000
	count := 0
	depth := 0
	var next func(f *phase.Func)
	next = func(f *phase.Func) {
		count++
		pcs := make([]uintptr, 64)
		depth = max(depth, runtime.Callers(0, pcs))
		if count < n {
			s.Unshift(phase.NewFunc("step", next))
		}
		s.End(f)
	}
	s.Push(phase.NewFunc("step", next))
	s.Shift()
	assert.Equal(t, n, count)
	assert.Less(t, depth, 64, "stack depth stays bounded")
}

func TestScheduler_StrictMisusePanics(t *testing.T) {
	s := phase.NewScheduler(phase.WithStrict(true))
	var log []string
	a := asyncPhase(&log, "a")
	b := asyncPhase(&log, "b")
	s.Push(a)
	s.Push(b)
	s.Shift()

	assertPanicsWith(t, phase.ErrNotCurrent, func() { s.End(b) })
	s.End(a)
	assertPanicsWith(t, phase.ErrAlreadyEnded, func() { s.End(a) })
	assert.Same(t, b, s.Current())
}

func assertPanicsWith(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, want), "got %v", err)
	}()
	fn()
}

func TestScheduler_LenientMisuseIsLoggedAndIgnored(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := phase.NewScheduler(phase.WithLogger(zap.New(core)))
	var log []string
	a := asyncPhase(&log, "a")
	b := asyncPhase(&log, "b")
	s.Push(a)
	s.Push(b)
	s.Shift()

	s.End(b)
	assert.Same(t, a, s.Current())
	assert.False(t, b.Ended())
	s.End(a)
	s.End(a)
	assert.Same(t, b, s.Current())

	entries := logs.FilterMessage("scheduling misuse ignored").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ContextMap()["phase"])
	assert.Equal(t, "a", entries[1].ContextMap()["phase"])
}

func TestScheduler_Names(t *testing.T) {
	s := phase.NewScheduler()
	var log []string
	s.Push(asyncPhase(&log, "queued"))
	s.Unshift(asyncPhase(&log, "front"))
	assert.Equal(t, []string{"front", "queued"}, s.Names())
	assert.Equal(t, 2, s.Len())
}

// Interleaved pushes and unshifts from inside phases run exactly once each, and
// unshifts from one phase run in order before anything queued earlier.
func TestScheduler_OrderingProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := phase.NewScheduler()
		var log []string
		var expected []string
		id := 0
		plan := rapid.SliceOfN(rapid.SliceOfN(rapid.Bool(), 0, 4), 1, 6).Draw(rt, "plan")

		// expected order is simulated with an explicit queue
		type item struct {
			name string
			step int
		}
		queue := []item{{"p0", 0}}
		for len(queue) > 0 {
			head := queue[0]
			queue = queue[1:]
			expected = append(expected, head.name)
			if head.step >= len(plan) {
				continue
			}
			var front []item
			for _, unshift := range plan[head.step] {
				id++
				it := item{fmt.Sprintf("p%d", id), head.step + 1}
				if unshift {
					front = append(front, it)
				} else {
					queue = append(queue, it)
				}
			}
			queue = append(front, queue...)
		}

		id = 0
		var build func(name string, step int) phase.Phase
		build = func(name string, step int) phase.Phase {
			return phase.NewFunc(name, func(f *phase.Func) {
				log = append(log, name)
				if step < len(plan) {
					for _, unshift := range plan[step] {
						id++
						child := build(fmt.Sprintf("p%d", id), step+1)
						if unshift {
							s.Unshift(child)
						} else {
							s.Push(child)
						}
					}
				}
				s.End(f)
			})
		}
		s.Push(build("p0", 0))
		s.Shift()
		assert.Equal(rt, expected, log)
	})
}

package battle

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/monbattle/internal/config"
	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/dice"
	"github.com/cory-johannsen/monbattle/internal/game/move"
	"github.com/cory-johannsen/monbattle/internal/game/phase"
	"github.com/cory-johannsen/monbattle/internal/game/reward"
)

// StruggleMove is used by a combatant with no PP left on any move.
const StruggleMove = "struggle"

// Outcome is how an engine run ended.
type Outcome int

const (
	OutcomeRunning Outcome = iota
	// OutcomeGameOver means the party had nobody left to fight.
	OutcomeGameOver
	// OutcomeWaveLimit means battle.max_waves encounters were completed.
	OutcomeWaveLimit
	// OutcomeAborted means the engine could not continue, e.g. a spawn failed.
	OutcomeAborted
)

var outcomeNames = [...]string{"running", "game_over", "wave_limit", "aborted"}

// String returns the outcome name.
func (o Outcome) String() string {
	if o < OutcomeRunning || o > OutcomeAborted {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// Engine owns every piece of battle state and mutates it only on its worker:
// the goroutine calling Run or Pump. Presenter and DecisionSource callbacks
// may arrive on any goroutine; they are queued on the engine mailbox.
type Engine struct {
	cfg       config.BattleConfig
	data      Data
	pool      *reward.Pool
	rng       dice.Source
	presenter Presenter
	decisions DecisionSource
	enemyAI   EnemyAI
	logger    *zap.Logger

	sched    *phase.Scheduler
	watchdog *phase.Watchdog
	box      *mailbox
	ctx      context.Context

	sessionID string
	party     []*battler.Combatant
	holdings  *reward.Holdings
	battle    *Battle
	outcome   Outcome
	started   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithPresenter sets the output sink. The default completes everything immediately.
func WithPresenter(p Presenter) Option { return func(e *Engine) { e.presenter = p } }

// WithDecisions sets the player decision source. The default is an AutoPlayer.
func WithDecisions(d DecisionSource) Option { return func(e *Engine) { e.decisions = d } }

// WithSource sets the random stream. The default is dice.NewSource(cfg.Seed).
func WithSource(src dice.Source) Option { return func(e *Engine) { e.rng = src } }

// WithEnemyAI sets the enemy move chooser.
func WithEnemyAI(ai EnemyAI) Option { return func(e *Engine) { e.enemyAI = ai } }

// WithHoldings sets the starting holdings.
func WithHoldings(h *reward.Holdings) Option { return func(e *Engine) { e.holdings = h } }

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.logger = l } }

// NewEngine creates an engine for party. Every draw of the random stream is
// logged at Debug.
//
// Precondition: party has at least one member; d and pool are non-nil.
// Postcondition: the engine is idle until Start is called.
func NewEngine(cfg config.BattleConfig, d Data, pool *reward.Pool, party []*battler.Combatant, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		data:      d,
		pool:      pool,
		presenter: NopPresenter{},
		logger:    zap.NewNop(),
		box:       newMailbox(),
		ctx:       context.Background(),
		sessionID: uuid.NewString(),
		party:     party,
	}
	for _, o := range opts {
		o(e)
	}
	if e.rng == nil {
		e.rng = dice.NewSource(cfg.Seed)
	}
	e.rng = dice.NewLoggedRoller(e.rng, e.logger)
	if e.decisions == nil {
		e.decisions = NewAutoPlayer(d)
	}
	if e.holdings == nil {
		e.holdings = reward.NewHoldings()
	}
	e.watchdog = phase.NewWatchdog(cfg.WatchdogTimeout)
	e.sched = phase.NewScheduler(
		phase.WithStrict(cfg.Strict()),
		phase.WithRefill(e.refill),
		phase.WithLogger(e.logger),
	)
	return e
}

// Start queues the first encounter, or resumes a restored battle at its
// next command.
func (e *Engine) Start() {
	e.started = true
	e.post(func() {
		if e.battle == nil {
			e.sched.Push(newEncounterPhase(e))
		}
		e.sched.Shift()
	})
}

// Run processes the mailbox until the run ends or ctx is cancelled.
//
// Postcondition: returns nil iff Done() holds.
func (e *Engine) Run(ctx context.Context) error {
	e.ctx = ctx
	defer e.watchdog.Disarm()
	for {
		for fn, ok := e.box.take(); ok; fn, ok = e.box.take() {
			fn()
		}
		if e.Done() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.box.signal:
		}
	}
}

// Pump synchronously processes up to limit queued callbacks and returns how
// many ran. It never blocks.
func (e *Engine) Pump(limit int) int {
	n := 0
	for ; n < limit; n++ {
		fn, ok := e.box.take()
		if !ok {
			break
		}
		fn()
	}
	return n
}

// Done reports whether the run has ended and no phase is left to run.
func (e *Engine) Done() bool {
	return e.outcome != OutcomeRunning && e.sched.Idle()
}

// Outcome returns how the run ended, or OutcomeRunning.
func (e *Engine) Outcome() Outcome { return e.outcome }

// SessionID identifies this run in persisted snapshots.
func (e *Engine) SessionID() string { return e.sessionID }

// Party returns the player roster.
func (e *Engine) Party() []*battler.Combatant { return e.party }

// Holdings returns the player's modifiers and balls.
func (e *Engine) Holdings() *reward.Holdings { return e.holdings }

// Battle returns the current encounter, or nil before the first.
func (e *Engine) Battle() *Battle { return e.battle }

// Queued returns the names of the phases waiting to run.
func (e *Engine) Queued() []string { return e.sched.Names() }

// Current returns the name of the running phase, or "".
func (e *Engine) Current() string {
	if p := e.sched.Current(); p != nil {
		return p.Name()
	}
	return ""
}

// post queues fn for the worker. Safe from any goroutine.
func (e *Engine) post(fn func()) { e.box.post(fn) }

// await arms the watchdog for one presentation wait and returns the
// completion callback to hand to the presenter. next runs on the worker once,
// on completion or on timeout.
func (e *Engine) await(what string, next func()) func() {
	var once sync.Once
	finish := func(timedOut bool) {
		once.Do(func() {
			e.post(func() {
				e.watchdog.Disarm()
				if timedOut {
					e.logger.Warn("presentation timed out; advancing",
						zap.String("wait", what), zap.Duration("timeout", e.watchdog.Timeout()))
				}
				next()
			})
		})
	}
	e.watchdog.Arm(func() { finish(true) })
	return func() { finish(false) }
}

// replyTo wraps a decision handler so the reply runs on the worker. Replies
// after the first are logged and dropped.
func replyTo[T any](e *Engine, what string, handle func(T)) func(T) {
	var once sync.Once
	return func(v T) {
		first := false
		once.Do(func() {
			first = true
			e.post(func() { handle(v) })
		})
		if !first {
			e.logger.Warn("duplicate decision reply ignored", zap.String("decision", what))
		}
	}
}

// showAll presents lines one after another, then calls then.
func (e *Engine) showAll(lines []string, then func()) {
	if len(lines) == 0 {
		then()
		return
	}
	e.presenter.ShowMessage(lines[0], MessageOptions{}, e.await("message", func() {
		e.showAll(lines[1:], then)
	}))
}

// say queues a message ahead of everything queued so far. Messages said
// while one phase runs are shown in order once it ends.
func (e *Engine) say(text string) {
	if text == "" {
		return
	}
	e.sched.Unshift(newMessagePhase(e, text))
}

// effect queues a presentation effect the same way say does.
func (e *Engine) effect(fx Effect) {
	e.sched.Unshift(newEffectPhase(e, fx))
}

func (e *Engine) end(p phase.Phase) { e.sched.End(p) }

func (e *Engine) finish(o Outcome) {
	if e.outcome != OutcomeRunning {
		return
	}
	e.outcome = o
	e.logger.Info("run finished", zap.Stringer("outcome", o), zap.Int("wave", e.wave()))
}

func (e *Engine) wave() int {
	if e.battle == nil {
		return 0
	}
	return e.battle.Wave
}

// refill starts the next turn when the queue runs dry mid-encounter.
func (e *Engine) refill() {
	if e.outcome != OutcomeRunning {
		return
	}
	b := e.battle
	if b == nil || b.Field[battler.SidePlayer] == nil || b.Field[battler.SideEnemy] == nil {
		e.logger.Error("no phase can follow; aborting run", zap.Int("wave", e.wave()))
		e.finish(OutcomeAborted)
		return
	}
	e.sched.Push(newCommandPhase(e))
}

func (e *Engine) tagEnv(c *battler.Combatant) battler.TagEnv {
	var foe *battler.Combatant
	if e.battle != nil {
		foe = e.battle.Foe(c)
	}
	return battler.TagEnv{Self: c, Opponent: foe, Rand: e.rng, Say: e.say}
}

func (e *Engine) move(id string) *move.Def {
	d, ok := e.data.Move(id)
	if !ok {
		panic(fmt.Sprintf("battle: move %q is not defined", id))
	}
	return d
}

func (e *Engine) moveLabel(id string) string {
	if d, ok := e.data.Move(id); ok {
		return d.Label()
	}
	return id
}

// checkFaints appends a faint phase for every fainted active combatant,
// player side first. The rest of the turn runs before it.
func (e *Engine) checkFaints() {
	for _, side := range []battler.Side{battler.SidePlayer, battler.SideEnemy} {
		c := e.battle.Field[side]
		if c != nil && c.Fainted() && e.battle.markFainting(c) {
			e.sched.Push(newFaintPhase(e, c))
		}
	}
}

// canFight reports whether any party member is standing.
func (e *Engine) canFight() bool {
	for _, c := range e.party {
		if !c.Fainted() {
			return true
		}
	}
	return false
}

// lead returns the member to open an encounter with: the previous active
// member if it is still in the party and standing, else the first standing one.
func (e *Engine) lead() *battler.Combatant {
	if e.battle != nil {
		if prev := e.battle.Field[battler.SidePlayer]; prev != nil && !prev.Fainted() && e.partyIndex(prev) >= 0 {
			return prev
		}
	}
	for _, c := range e.party {
		if !c.Fainted() {
			return c
		}
	}
	return nil
}

func (e *Engine) partyIndex(c *battler.Combatant) int {
	for i, m := range e.party {
		if m == c {
			return i
		}
	}
	return -1
}

// mailbox is an unbounded FIFO of worker callbacks.
type mailbox struct {
	mu     sync.Mutex
	items  []func()
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

func (m *mailbox) post(fn func()) {
	m.mu.Lock()
	m.items = append(m.items, fn)
	m.mu.Unlock()
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) take() (func(), bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) == 0 {
		return nil, false
	}
	fn := m.items[0]
	m.items[0] = nil
	m.items = m.items[1:]
	return fn, true
}

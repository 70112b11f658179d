package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/capture"
	"github.com/cory-johannsen/monbattle/internal/game/phase"
	"github.com/cory-johannsen/monbattle/internal/game/reward"
)

// AttemptCapturePhase throws a ball at the wild combatant.
type AttemptCapturePhase struct {
	phase.Base
	e    *Engine
	Ball capture.Ball
}

func newAttemptCapturePhase(e *Engine, ball capture.Ball) *AttemptCapturePhase {
	return &AttemptCapturePhase{e: e, Ball: ball}
}

// Name returns "attempt_capture".
func (p *AttemptCapturePhase) Name() string { return "attempt_capture" }

// Start consumes the ball and resolves the throw. A capture ends the
// encounter: the queue is cleared and victory follows.
func (p *AttemptCapturePhase) Start() {
	defer p.e.end(p)
	e, b := p.e, p.e.battle
	target := b.Field[battler.SideEnemy]
	if p.Cancelled() || target == nil || target.Fainted() {
		return
	}
	if !e.holdings.UseBall(p.Ball) {
		e.say(fmt.Sprintf("You have no %s left!", p.Ball))
		return
	}
	res := capture.Attempt(capture.ParamsFor(target, p.Ball), e.rng)
	e.logger.Debug("capture attempt",
		zap.Stringer("ball", p.Ball), zap.Int("shakes", res.Shakes),
		zap.Int("threshold", res.Threshold), zap.Bool("captured", res.Captured))

	if !res.Captured {
		e.say(fmt.Sprintf("You threw a %s!", p.Ball))
		e.effect(Effect{Kind: EffectThrow, Target: target.ID})
		p.shakes(target, res.Shakes)
		e.say(fmt.Sprintf("Oh no! The wild %s broke free!", target.Name))
		return
	}

	e.sched.Clear()
	e.say(fmt.Sprintf("You threw a %s!", p.Ball))
	e.effect(Effect{Kind: EffectThrow, Target: target.ID})
	p.shakes(target, res.Shakes)
	e.effect(Effect{Kind: EffectCapture, Target: target.ID})
	e.say(fmt.Sprintf("Gotcha! %s was caught!", target.Name))

	b.Field[battler.SideEnemy] = nil
	target.Recall()
	target.Side = battler.SidePlayer
	if len(e.party) < e.cfg.MaxPartySize {
		e.party = append(e.party, target)
	} else {
		e.sched.Unshift(newReleasePhase(e, target))
	}
	e.sched.Unshift(newVictoryPhase(e, target))
}

func (p *AttemptCapturePhase) shakes(target *battler.Combatant, n int) {
	for range n {
		p.e.effect(Effect{Kind: EffectShake, Target: target.ID})
	}
}

// ReleasePhase makes room for a newly caught member when the party is full.
type ReleasePhase struct {
	phase.Base
	e        *Engine
	Newcomer *battler.Combatant
}

func newReleasePhase(e *Engine, newcomer *battler.Combatant) *ReleasePhase {
	return &ReleasePhase{e: e, Newcomer: newcomer}
}

// Name returns "release".
func (p *ReleasePhase) Name() string { return "release" }

// Start asks which member to release.
func (p *ReleasePhase) Start() {
	if p.Cancelled() {
		p.e.end(p)
		return
	}
	p.prompt(nil)
}

func (p *ReleasePhase) prompt(rejected error) {
	e := p.e
	req := ReleaseRequest{Party: e.party, Newcomer: p.Newcomer, Rejected: rejected}
	e.decisions.Release(req, replyTo(e, "release", func(member int) {
		switch {
		case member == reward.NoTarget:
			e.say(fmt.Sprintf("%s was released.", p.Newcomer.Name))
		case member < 0 || member >= len(e.party):
			p.prompt(fmt.Errorf("%w: no party member %d", ErrInvalidCommand, member))
			return
		default:
			old := e.party[member]
			e.party[member] = p.Newcomer
			e.say(fmt.Sprintf("%s was released.", old.Name))
		}
		e.end(p)
	}))
}

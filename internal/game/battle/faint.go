package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/phase"
)

// FaintPhase announces a faint and, once shown, removes the combatant from
// the field and queues what follows: a forced switch or game over for the
// player, victory for the enemy.
type FaintPhase struct {
	phase.Base
	e      *Engine
	Victim *battler.Combatant
}

func newFaintPhase(e *Engine, c *battler.Combatant) *FaintPhase {
	return &FaintPhase{e: e, Victim: c}
}

// Name returns "faint".
func (p *FaintPhase) Name() string { return "faint" }

// Start shows the message and effect, then resolves.
func (p *FaintPhase) Start() {
	e := p.e
	e.showAll([]string{p.Victim.Label() + " fainted!"}, func() {
		e.presenter.PlayEffect(Effect{Kind: EffectFaint, Target: p.Victim.ID}, e.await("faint", p.resolve))
	})
}

func (p *FaintPhase) resolve() {
	e, c := p.e, p.Victim
	b := e.battle
	c.Recall()
	if b.OnField(c) {
		b.Field[c.Side] = nil
	}
	e.logger.Debug("fainted", zap.String("combatant", c.ID), zap.Stringer("side", c.Side))
	switch {
	case c.Side == battler.SideEnemy:
		e.sched.Push(newVictoryPhase(e, c))
	case e.canFight():
		e.sched.Push(newSwitchPhase(e))
	default:
		e.sched.Push(newGameOverPhase(e))
	}
	e.end(p)
}

// SwitchPhase asks for a replacement after the player's active member fainted.
type SwitchPhase struct {
	phase.Base
	e *Engine
}

func newSwitchPhase(e *Engine) *SwitchPhase { return &SwitchPhase{e: e} }

// Name returns "switch".
func (p *SwitchPhase) Name() string { return "switch" }

// Start asks the decision source. An occupied field needs no replacement.
func (p *SwitchPhase) Start() {
	if p.Cancelled() || p.e.battle.Field[battler.SidePlayer] != nil || !p.e.canFight() {
		p.e.end(p)
		return
	}
	p.prompt(nil)
}

func (p *SwitchPhase) prompt(rejected error) {
	p.e.decisions.Switch(SwitchRequest{Party: p.e.party, Rejected: rejected}, replyTo(p.e, "switch", func(member int) {
		if err := p.e.validateSwitch(member); err != nil {
			p.prompt(err)
			return
		}
		p.e.sched.Unshift(newSwitchSummonPhase(p.e, battler.SidePlayer, member))
		p.e.end(p)
	}))
}

// SwitchSummonPhase recalls the active member of a side and sends in a party member.
type SwitchSummonPhase struct {
	phase.Base
	e      *Engine
	Side   battler.Side
	Member int
}

func newSwitchSummonPhase(e *Engine, side battler.Side, member int) *SwitchSummonPhase {
	return &SwitchSummonPhase{e: e, Side: side, Member: member}
}

// Name returns "switch_summon".
func (p *SwitchSummonPhase) Name() string { return "switch_summon" }

// Start performs the swap.
//
// Postcondition: the member is active, without tags or stages, and is a participant.
func (p *SwitchSummonPhase) Start() {
	defer p.e.end(p)
	e, b := p.e, p.e.battle
	if p.Cancelled() {
		return
	}
	if old := b.Field[p.Side]; old != nil {
		old.Recall()
		e.say(fmt.Sprintf("Come back, %s!", old.Name))
		e.effect(Effect{Kind: EffectRecall, Source: old.ID})
	}
	next := e.party[p.Member]
	next.Recall()
	b.Field[p.Side] = next
	b.AddParticipant(next.ID)
	e.say(fmt.Sprintf("Go! %s!", next.Name))
	e.effect(Effect{Kind: EffectSummon, Source: next.ID})
}

// GameOverPhase ends the run when the party has nobody left to fight.
type GameOverPhase struct {
	phase.Base
	e *Engine
}

func newGameOverPhase(e *Engine) *GameOverPhase { return &GameOverPhase{e: e} }

// Name returns "game_over".
func (p *GameOverPhase) Name() string { return "game_over" }

// Start clears the queue and stops the run.
func (p *GameOverPhase) Start() {
	p.e.sched.Clear()
	p.e.finish(OutcomeGameOver)
	p.e.say("You have no more fighters that can battle!")
	p.e.end(p)
}

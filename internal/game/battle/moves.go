package battle

import (
	"fmt"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/move"
	"github.com/cory-johannsen/monbattle/internal/game/phase"
)

// MovePhase declares one combatant's move: tag and status gates, PP use,
// the announcement, then the effect and after-move phases.
type MovePhase struct {
	phase.Base
	e      *Engine
	User   *battler.Combatant
	MoveID string
	// Forced continuations (charge release, frenzy, recharge) use no PP.
	Forced bool
}

func newMovePhase(e *Engine, user *battler.Combatant, moveID string, forced bool) *MovePhase {
	return &MovePhase{e: e, User: user, MoveID: moveID, Forced: forced}
}

// Name returns "move".
func (p *MovePhase) Name() string { return "move" }

// Start runs the declaration.
func (p *MovePhase) Start() {
	defer p.e.end(p)
	e, user := p.e, p.User
	if p.Cancelled() || user.Fainted() || !e.battle.OnField(user) {
		return
	}
	target := e.battle.Foe(user)
	if target == nil {
		return
	}
	if res := user.Tags.LapseAll(battler.LapseMove, e.tagEnv(user)); res.Cancel || user.Fainted() {
		e.checkFaints()
		return
	}
	if !p.statusAllows() {
		return
	}

	def := e.move(p.MoveID)
	if i := user.MoveIndex(def.ID); i >= 0 && !p.Forced {
		user.Moves[i].PPUsed++
	}
	user.Turn.LastMove = def.ID
	e.say(fmt.Sprintf("%s used %s!", user.Label(), def.Label()))

	if def.Charge != 0 && !user.Tags.Has(def.Charge) {
		user.Tags.Add(battler.NewTag(def.Charge, 1, def.ID, user.ID), e.tagEnv(user))
		return
	}
	if def.Frenzy && !user.Tags.Has(battler.TagFrenzy) {
		user.Tags.Add(battler.RollTag(battler.TagFrenzy, e.rng, def.ID, user.ID), e.tagEnv(user))
	}
	e.effect(Effect{Kind: EffectMove, Source: user.ID, Target: target.ID, Move: def.ID})
	e.sched.Unshift(newMoveEffectPhase(e, user, target, def, 0))
	e.sched.Unshift(newAfterMovePhase(e, user, def))
}

// statusAllows applies the persistent-status gates: full paralysis, sleep
// countdown and freeze thaw.
func (p *MovePhase) statusAllows() bool {
	e, user := p.e, p.User
	label := user.Label()
	switch user.Status.Effect {
	case battler.StatusParalysis:
		if e.rng.Intn(4) == 0 {
			e.say(label + " is paralyzed! It can't move!")
			return false
		}
	case battler.StatusSleep:
		user.Status.Turns--
		if user.Status.Turns > 0 {
			e.say(label + " is fast asleep.")
			return false
		}
		e.say(user.CureStatus().CureText(label))
	case battler.StatusFreeze:
		if e.rng.Intn(5) != 0 {
			e.say(label + " is frozen solid!")
			return false
		}
		e.say(user.CureStatus().CureText(label))
	}
	return true
}

// MoveEffectPhase resolves one hit of a declared move. Hit 0 runs the
// protect, hidden-target and accuracy checks and rolls the hit count; later
// hits are queued one at a time while hits remain and both sides stand.
type MoveEffectPhase struct {
	phase.Base
	e      *Engine
	User   *battler.Combatant
	Target *battler.Combatant
	Def    *move.Def
	Hit    int
}

func newMoveEffectPhase(e *Engine, user, target *battler.Combatant, def *move.Def, hit int) *MoveEffectPhase {
	return &MoveEffectPhase{e: e, User: user, Target: target, Def: def, Hit: hit}
}

// Name returns "move_effect".
func (p *MoveEffectPhase) Name() string { return "move_effect" }

// Start resolves the hit.
func (p *MoveEffectPhase) Start() {
	defer p.e.end(p)
	e, user, target, def := p.e, p.User, p.Target, p.Def
	if p.Cancelled() || user.Fainted() || !e.battle.OnField(user) {
		return
	}
	if p.Hit == 0 {
		if !p.connects() {
			p.finish()
			return
		}
		user.Turn.HitsLeft = move.Hits(def.Hits, e.rng)
		user.Turn.HitCount = 0
	}

	res := move.Resolve(move.Strike{Def: def, User: user, Target: target, Chart: e.data, Rand: e.rng, Say: e.say})
	user.Turn.HitCount++
	user.Turn.HitsLeft--
	if !res.Damage.Immune() && user.Turn.HitsLeft > 0 && !target.Fainted() && !user.Fainted() {
		e.sched.Unshift(newMoveEffectPhase(e, user, target, def, p.Hit+1))
		return
	}
	if def.Hits != move.HitsOne && !res.Damage.Immune() {
		e.say(hitCountText(user.Turn.HitCount))
	}
	if def.Recharge && res.Dealt > 0 {
		user.Tags.Add(battler.NewTag(battler.TagRecharging, 1, def.ID, user.ID), e.tagEnv(user))
	}
	p.finish()
}

// connects runs the pre-hit checks against a move that reaches the target.
func (p *MoveEffectPhase) connects() bool {
	e, user, target, def := p.e, p.User, p.Target, p.Def
	if !reachesTarget(def) {
		return true
	}
	if target.Fainted() || !e.battle.OnField(target) {
		e.say("But it failed!")
		return false
	}
	if r := target.Tags.Lapse(battler.TagProtected, battler.LapseCustom, e.tagEnv(target)); r.Blocked {
		return false
	}
	if kind, hidden := target.Tags.Hidden(); hidden && !def.ReachesHidden(kind) {
		e.say(user.Label() + "'s attack missed!")
		return false
	}
	if !move.HitCheck(def, user, target, e.rng) {
		e.say(user.Label() + "'s attack missed!")
		return false
	}
	return true
}

// finish releases the user's charge tag and queues any faints.
func (p *MoveEffectPhase) finish() {
	p.User.Tags.LapseAll(battler.LapseMoveEffect, p.e.tagEnv(p.User))
	p.e.checkFaints()
}

// reachesTarget reports whether def affects the opposing combatant at all.
func reachesTarget(def *move.Def) bool {
	if def.Damaging() {
		return true
	}
	for _, eff := range def.Effects {
		if !eff.Self {
			return true
		}
	}
	return false
}

func hitCountText(n int) string {
	if n == 1 {
		return "Hit 1 time!"
	}
	return fmt.Sprintf("Hit %d times!", n)
}

// AfterMovePhase runs once a declared move has resolved: after-move tag
// lapses such as seed drain, the frenzy countdown, and faint checks.
type AfterMovePhase struct {
	phase.Base
	e    *Engine
	User *battler.Combatant
	Def  *move.Def
}

func newAfterMovePhase(e *Engine, user *battler.Combatant, def *move.Def) *AfterMovePhase {
	return &AfterMovePhase{e: e, User: user, Def: def}
}

// Name returns "after_move".
func (p *AfterMovePhase) Name() string { return "after_move" }

// Start runs the lapses.
func (p *AfterMovePhase) Start() {
	defer p.e.end(p)
	e, user := p.e, p.User
	if !p.Cancelled() && !user.Fainted() && e.battle.OnField(user) {
		user.Tags.LapseAll(battler.LapseAfterMove, e.tagEnv(user))
		if p.Def.Frenzy && !user.Fainted() {
			user.Tags.Lapse(battler.TagFrenzy, battler.LapseCustom, e.tagEnv(user))
		}
	}
	e.checkFaints()
}

package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/exp"
	"github.com/cory-johannsen/monbattle/internal/game/learn"
	"github.com/cory-johannsen/monbattle/internal/game/phase"
	"github.com/cory-johannsen/monbattle/internal/game/reward"
)

// EncounterPhase starts the next wave: a new Battle with a freshly spawned
// wild combatant facing the party's lead.
type EncounterPhase struct {
	phase.Base
	e *Engine
}

func newEncounterPhase(e *Engine) *EncounterPhase { return &EncounterPhase{e: e} }

// Name returns "encounter".
func (p *EncounterPhase) Name() string { return "encounter" }

// Start builds the encounter, or ends the run once the wave limit is reached.
//
// Postcondition: on success both field slots are occupied and the lead is a participant.
func (p *EncounterPhase) Start() {
	defer p.e.end(p)
	e := p.e
	if p.Cancelled() || e.outcome != OutcomeRunning {
		return
	}
	wave := e.wave() + 1
	if e.cfg.MaxWaves > 0 && wave > e.cfg.MaxWaves {
		e.finish(OutcomeWaveLimit)
		return
	}
	lead := e.lead()
	if lead == nil {
		e.sched.Unshift(newGameOverPhase(e))
		return
	}
	level := min(e.cfg.StartingLevel+wave-1, exp.MaxLevel)
	species := e.data.RandomSpecies(e.rng)
	foe, err := e.data.Spawn(species, level, battler.SideEnemy, e.rng)
	if err != nil {
		e.logger.Error("spawning encounter", zap.Error(err), zap.Int("wave", wave))
		e.finish(OutcomeAborted)
		return
	}

	prev := e.battle
	b := NewBattle(wave, []*battler.Combatant{foe})
	e.battle = b
	b.Field[battler.SideEnemy] = foe
	lead.Recall()
	b.Field[battler.SidePlayer] = lead
	b.AddParticipant(lead.ID)
	e.logger.Info("encounter",
		zap.Int("wave", wave), zap.String("species", species), zap.Int("level", level), zap.Bool("shiny", foe.Shiny))

	e.effect(Effect{Kind: EffectSummon, Source: foe.ID})
	e.say(fmt.Sprintf("A wild %s appeared!", foe.Name))
	if prev == nil || prev.Field[battler.SidePlayer] != lead {
		e.say(fmt.Sprintf("Go! %s!", lead.Name))
		e.effect(Effect{Kind: EffectSummon, Source: lead.ID})
	}
}

// VictoryPhase awards experience for a defeated or caught opponent and
// queues the reward selection and the next encounter.
type VictoryPhase struct {
	phase.Base
	e        *Engine
	Defeated *battler.Combatant
}

func newVictoryPhase(e *Engine, defeated *battler.Combatant) *VictoryPhase {
	return &VictoryPhase{e: e, Defeated: defeated}
}

// Name returns "victory".
func (p *VictoryPhase) Name() string { return "victory" }

// Start distributes the award: one ExpPhase per member with a non-zero share.
func (p *VictoryPhase) Start() {
	defer p.e.end(p)
	e := p.e
	if p.Cancelled() {
		return
	}
	base := exp.BaseAward(p.Defeated.BaseExp, p.Defeated.Level)
	members := make([]exp.Member, len(e.party))
	participants := 0
	for i, c := range e.party {
		fought := e.battle.Participated(c.ID)
		members[i] = exp.Member{Participated: fought, Fainted: c.Fainted(), Level: c.Level}
		if fought && !c.Fainted() {
			participants++
		}
	}
	shares := exp.Distribute(base, members, participants, e.holdings.Stacks(reward.ExpShare))
	boost := e.holdings.ExpBoostPercent()
	for i, s := range shares {
		if s.Amount > 0 {
			e.sched.Push(newExpPhase(e, e.party[i], exp.Boost(s.Amount, boost)))
		}
	}
	e.sched.Push(newSelectRewardPhase(e))
	e.sched.Push(newEncounterPhase(e))
}

// ExpPhase gives one member its experience.
type ExpPhase struct {
	phase.Base
	e      *Engine
	Member *battler.Combatant
	Amount int
}

func newExpPhase(e *Engine, member *battler.Combatant, amount int) *ExpPhase {
	return &ExpPhase{e: e, Member: member, Amount: amount}
}

// Name returns "exp".
func (p *ExpPhase) Name() string { return "exp" }

// Start adds the experience and queues a level-up when a threshold was crossed.
func (p *ExpPhase) Start() {
	defer p.e.end(p)
	if p.Cancelled() || p.Member.Fainted() {
		return
	}
	p.e.say(fmt.Sprintf("%s gained %d EXP. Points!", p.Member.Name, p.Amount))
	if prog := p.Member.AddExp(p.Amount); prog.Leveled() {
		p.e.sched.Unshift(newLevelUpPhase(p.e, p.Member, prog.FromLevel, prog.ToLevel))
	}
}

// LevelUpPhase announces levels gained and queues the moves they unlock.
type LevelUpPhase struct {
	phase.Base
	e      *Engine
	Member *battler.Combatant
	From   int
	To     int
}

func newLevelUpPhase(e *Engine, member *battler.Combatant, from, to int) *LevelUpPhase {
	return &LevelUpPhase{e: e, Member: member, From: from, To: to}
}

// Name returns "level_up".
func (p *LevelUpPhase) Name() string { return "level_up" }

// Start announces each level and queues one LearnMovePhase per move unlocked
// in (From, To], in ascending level order.
func (p *LevelUpPhase) Start() {
	defer p.e.end(p)
	e := p.e
	if p.Cancelled() {
		return
	}
	e.effect(Effect{Kind: EffectLevelUp, Source: p.Member.ID})
	for lvl := p.From + 1; lvl <= p.To; lvl++ {
		e.say(fmt.Sprintf("%s grew to Lv. %d!", p.Member.Name, lvl))
	}
	for _, lm := range e.data.LevelMoves(p.Member.Species, p.From, p.To) {
		e.sched.Unshift(newLearnMovePhase(e, p.Member, lm.Move))
	}
}

// LearnMovePhase teaches one move, running the replace-a-move dialogue when
// every slot is taken.
type LearnMovePhase struct {
	phase.Base
	e      *Engine
	Member *battler.Combatant
	MoveID string

	flow  *learn.Flow
	lines []string
}

func newLearnMovePhase(e *Engine, member *battler.Combatant, moveID string) *LearnMovePhase {
	return &LearnMovePhase{e: e, Member: member, MoveID: moveID}
}

// Name returns "learn_move".
func (p *LearnMovePhase) Name() string { return "learn_move" }

// Start learns directly when possible and otherwise opens the dialogue.
func (p *LearnMovePhase) Start() {
	e := p.e
	def, ok := e.data.Move(p.MoveID)
	if p.Cancelled() || !ok {
		if !ok {
			e.logger.Warn("learnset move is not defined", zap.String("move", p.MoveID))
		}
		e.end(p)
		return
	}
	switch learn.Direct(p.Member, def.ID, def.PP) {
	case learn.ResultKnown:
		e.end(p)
	case learn.ResultLearned:
		e.say(fmt.Sprintf("%s learned %s!", p.Member.Name, def.Label()))
		e.end(p)
	default:
		p.flow = learn.New(p.Member, def.ID, def.PP, e.moveLabel, func(s string) { p.lines = append(p.lines, s) })
		p.flow.Open()
		p.step()
	}
}

// step shows what the dialogue said, then asks the next question or ends.
func (p *LearnMovePhase) step() {
	lines := p.lines
	p.lines = nil
	p.e.showAll(lines, func() {
		if p.flow.Done() {
			p.e.logger.Debug("learn dialogue finished",
				zap.String("move", p.MoveID), zap.Bool("learned", p.flow.Learned()), zap.String("forgot", p.flow.Forgotten()))
			p.e.end(p)
			return
		}
		p.ask()
	})
}

func (p *LearnMovePhase) ask() {
	e := p.e
	def := e.move(p.MoveID)
	switch p.flow.State() {
	case learn.StateChoose:
		e.decisions.ForgetMove(ForgetRequest{Member: p.Member, Move: def}, replyTo(e, "forget_move", func(slot int) {
			if err := p.flow.Choose(e.ctx, slot); err != nil {
				e.logger.Info("forget choice rejected", zap.Error(err))
				p.ask()
				return
			}
			p.step()
		}))
	default:
		kind := ConfirmReplaceMove
		if p.flow.State() == learn.StateStop {
			kind = ConfirmStopLearning
		}
		req := ConfirmRequest{Kind: kind, Prompt: p.flow.Prompt(), Member: p.Member, Move: def}
		e.decisions.Confirm(req, replyTo(e, "confirm", func(yes bool) {
			if err := p.flow.Answer(e.ctx, yes); err != nil {
				e.logger.Error("learn dialogue rejected answer", zap.Error(err))
				p.e.end(p)
				return
			}
			p.step()
		}))
	}
}

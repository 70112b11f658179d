package battle

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/capture"
	"github.com/cory-johannsen/monbattle/internal/game/phase"
)

// CommandPhase takes the player's turn action and queues the turn.
type CommandPhase struct {
	phase.Base
	e *Engine
}

func newCommandPhase(e *Engine) *CommandPhase { return &CommandPhase{e: e} }

// Name returns "command".
func (p *CommandPhase) Name() string { return "command" }

// Start queues a forced continuation directly, and otherwise asks the
// decision source.
func (p *CommandPhase) Start() {
	b := p.e.battle
	if p.Cancelled() || b.Field[battler.SidePlayer] == nil || b.Field[battler.SideEnemy] == nil {
		p.e.end(p)
		return
	}
	if id, ok := forcedMove(b.Field[battler.SidePlayer]); ok {
		p.e.logger.Debug("forced move", zap.String("move", id))
		p.queue(Fight(0), id)
		p.e.end(p)
		return
	}
	p.prompt(nil)
}

func (p *CommandPhase) prompt(rejected error) {
	e := p.e
	b := e.battle
	e.decisions.Command(CommandRequest{
		Turn:     b.Turn,
		Active:   b.Field[battler.SidePlayer],
		Foe:      b.Field[battler.SideEnemy],
		Party:    e.party,
		Balls:    e.holdings.Balls,
		Rejected: rejected,
	}, replyTo(e, "command", p.handle))
}

func (p *CommandPhase) handle(cmd Command) {
	if err := p.e.validate(cmd); err != nil {
		p.e.logger.Info("command rejected", zap.Error(err))
		p.prompt(err)
		return
	}
	p.queue(cmd, "")
	p.e.end(p)
}

// validate checks cmd against the current battle without changing anything.
func (e *Engine) validate(cmd Command) error {
	active := e.battle.Field[battler.SidePlayer]
	switch cmd.Kind {
	case CommandFight:
		if !active.HasUsableMove() {
			return nil
		}
		if cmd.Move < 0 || cmd.Move >= len(active.Moves) || active.Moves[cmd.Move].Move == "" {
			return fmt.Errorf("%w: no move in slot %d", ErrInvalidCommand, cmd.Move)
		}
		if !active.Moves[cmd.Move].Usable() {
			return fmt.Errorf("%w: %s has no PP left", ErrInvalidCommand, e.moveLabel(active.Moves[cmd.Move].Move))
		}
	case CommandSwitch:
		if active.Tags.BlocksSwitch() {
			return fmt.Errorf("%w: %s can't be switched out", ErrInvalidCommand, active.Name)
		}
		if err := e.validateSwitch(cmd.Member); err != nil {
			return err
		}
	case CommandBall:
		if cmd.Ball < capture.PokeBall || int(cmd.Ball) >= capture.BallCount {
			return fmt.Errorf("%w: unknown ball %d", ErrInvalidCommand, int(cmd.Ball))
		}
		if e.holdings.BallCount(cmd.Ball) == 0 {
			return fmt.Errorf("%w: no %s left", ErrInvalidCommand, cmd.Ball)
		}
	default:
		return fmt.Errorf("%w: unknown command %d", ErrInvalidCommand, int(cmd.Kind))
	}
	return nil
}

func (e *Engine) validateSwitch(member int) error {
	if member < 0 || member >= len(e.party) {
		return fmt.Errorf("%w: no party member %d", ErrInvalidCommand, member)
	}
	c := e.party[member]
	if c.Fainted() {
		return fmt.Errorf("%w: %s has no energy left to battle", ErrInvalidCommand, c.Name)
	}
	if e.battle.OnField(c) {
		return fmt.Errorf("%w: %s is already in battle", ErrInvalidCommand, c.Name)
	}
	return nil
}

// queue lays out the turn. The player's action and the enemy move are
// pushed in acting order, followed by post-turn status and turn end.
// Switching and throwing always act before the enemy.
func (p *CommandPhase) queue(cmd Command, forced string) {
	e := p.e
	player := e.battle.Field[battler.SidePlayer]
	foe := e.battle.Field[battler.SideEnemy]
	foeMove, foeForced := e.enemyMove(foe)
	foePhase := newMovePhase(e, foe, foeMove, foeForced)

	switch cmd.Kind {
	case CommandFight:
		id := forced
		if id == "" {
			id = StruggleMove
			if player.HasUsableMove() {
				id = player.Moves[cmd.Move].Move
			}
		}
		mine := newMovePhase(e, player, id, forced != "")
		if e.actsFirst(player, id, foe, foeMove) {
			e.sched.Push(mine)
			e.sched.Push(foePhase)
		} else {
			e.sched.Push(foePhase)
			e.sched.Push(mine)
		}
	case CommandSwitch:
		e.sched.Unshift(newSwitchSummonPhase(e, battler.SidePlayer, cmd.Member))
		e.sched.Push(foePhase)
	case CommandBall:
		e.sched.Unshift(newAttemptCapturePhase(e, cmd.Ball))
		e.sched.Push(foePhase)
	}
	e.sched.Push(newPostTurnStatusPhase(e, battler.SidePlayer))
	e.sched.Push(newPostTurnStatusPhase(e, battler.SideEnemy))
	e.sched.Push(newTurnEndPhase(e))
	e.logger.Debug("turn queued",
		zap.Int("turn", e.battle.Turn), zap.Stringer("command", cmd.Kind), zap.String("enemy_move", foeMove))
}

// actsFirst orders two moves: higher priority first, then higher effective
// speed, then a coin flip.
func (e *Engine) actsFirst(a *battler.Combatant, aMove string, b *battler.Combatant, bMove string) bool {
	ap, bp := e.move(aMove).Priority, e.move(bMove).Priority
	if ap != bp {
		return ap > bp
	}
	as, bs := a.Effective(battler.StatSpeed), b.Effective(battler.StatSpeed)
	if as != bs {
		return as > bs
	}
	return e.rng.Intn(2) == 0
}

// forcedMove returns the move c is locked into: a recharge turn, the second
// turn of a charge move, or a frenzy.
func forcedMove(c *battler.Combatant) (string, bool) {
	if t, ok := c.Tags.Get(battler.TagRecharging); ok {
		return t.SourceMove, true
	}
	if kind, ok := c.Tags.Hidden(); ok {
		t, _ := c.Tags.Get(kind)
		return t.SourceMove, true
	}
	if t, ok := c.Tags.Get(battler.TagFrenzy); ok {
		return t.SourceMove, true
	}
	return "", false
}

// enemyMove picks the enemy's move: a forced continuation, the EnemyAI's
// choice, or a uniformly random usable move.
func (e *Engine) enemyMove(c *battler.Combatant) (string, bool) {
	if id, ok := forcedMove(c); ok {
		return id, true
	}
	var usable []string
	for _, m := range c.Moves {
		if m.Usable() {
			usable = append(usable, m.Move)
		}
	}
	if len(usable) == 0 {
		return StruggleMove, false
	}
	if e.enemyAI != nil {
		if id, ok := e.enemyAI.ChooseMove(c, e.battle.Foe(c), usable); ok && slices.Contains(usable, id) {
			return id, false
		}
	}
	return usable[e.rng.Intn(len(usable))], false
}

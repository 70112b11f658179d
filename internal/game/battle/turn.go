package battle

import (
	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/phase"
)

// PostTurnStatusPhase applies end-of-turn status damage to one side.
type PostTurnStatusPhase struct {
	phase.Base
	e    *Engine
	Side battler.Side
}

func newPostTurnStatusPhase(e *Engine, side battler.Side) *PostTurnStatusPhase {
	return &PostTurnStatusPhase{e: e, Side: side}
}

// Name returns "post_turn_status".
func (p *PostTurnStatusPhase) Name() string { return "post_turn_status" }

// Start deals poison, toxic or burn damage.
//
// Postcondition: a toxic counter grows by one per damaging turn.
func (p *PostTurnStatusPhase) Start() {
	defer p.e.end(p)
	c := p.e.battle.Field[p.Side]
	if p.Cancelled() || c == nil || c.Fainted() {
		return
	}
	if dmg, text := statusDamage(c); dmg > 0 {
		c.Damage(dmg)
		p.e.say(text)
		p.e.checkFaints()
	}
}

// statusDamage returns the end-of-turn damage of c's status and its message.
func statusDamage(c *battler.Combatant) (int, string) {
	label := c.Label()
	switch c.Status.Effect {
	case battler.StatusPoison:
		return max(c.MaxHP()>>3, 1), label + " is hurt by poison!"
	case battler.StatusToxic:
		c.Status.Turns++
		return max(c.MaxHP()*c.Status.Turns/16, 1), label + " is hurt by poison!"
	case battler.StatusBurn:
		return max(c.MaxHP()>>3, 1), label + " is hurt by its burn!"
	default:
		return 0, ""
	}
}

// TurnEndPhase closes a turn: turn-end tag lapses, turn-scoped tag removal,
// scratch reset and the turn counter.
type TurnEndPhase struct {
	phase.Base
	e *Engine
}

func newTurnEndPhase(e *Engine) *TurnEndPhase { return &TurnEndPhase{e: e} }

// Name returns "turn_end".
func (p *TurnEndPhase) Name() string { return "turn_end" }

// Start ends the turn.
func (p *TurnEndPhase) Start() {
	defer p.e.end(p)
	b := p.e.battle
	for _, c := range b.Field {
		if c == nil || c.Fainted() {
			continue
		}
		c.Tags.EndTurn(p.e.tagEnv(c))
		c.ResetTurn()
		c.TurnsOnField++
	}
	b.Turn++
	p.e.checkFaints()
}

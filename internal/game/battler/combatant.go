// Package battler models one battling creature and the transient battle tags
// attached to it.
package battler

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/monbattle/internal/game/exp"
)

// MaxMoves is the number of move slots a combatant has.
const MaxMoves = 4

// Side identifies which controller a combatant belongs to.
type Side int

const (
	SidePlayer Side = iota
	SideEnemy
)

// String returns "player" or "enemy".
func (s Side) String() string {
	if s == SideEnemy {
		return "enemy"
	}
	return "player"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideEnemy {
		return SidePlayer
	}
	return SideEnemy
}

// MoveSlot is one learned move with its usage counter.
type MoveSlot struct {
	Move   string `json:"move"`
	PPUsed int    `json:"pp_used"`
	MaxPP  int    `json:"max_pp"`
}

// PPLeft returns the remaining uses.
func (m MoveSlot) PPLeft() int { return m.MaxPP - m.PPUsed }

// Usable reports whether the slot holds a move with uses left.
func (m MoveSlot) Usable() bool { return m.Move != "" && m.PPUsed < m.MaxPP }

// TurnData is per-turn scratch state, reset at turn end.
type TurnData struct {
	DamageDealt int
	HitsLeft    int
	HitCount    int
	LastMove    string
}

// Combatant is one creature on a roster or on the field.
// It is not safe for concurrent use; the engine worker owns every Combatant.
type Combatant struct {
	ID        string
	Species   string
	Name      string
	Types     []string
	Side      Side
	Level     int
	Exp       int
	Growth    exp.GrowthRate
	HP        int
	Base      Stats
	IVs       Stats
	Stats     Stats
	Stages    Stages
	Status    Status
	Moves     []MoveSlot
	Tags      *TagSet
	Turn      TurnData
	CatchRate int
	BaseExp   int
	Shiny     bool

	TurnsOnField int
}

// Params describes a combatant to create.
type Params struct {
	Species   string
	Name      string
	Types     []string
	Side      Side
	Level     int
	Growth    exp.GrowthRate
	Base      Stats
	IVs       Stats
	Moves     []MoveSlot
	CatchRate int
	BaseExp   int
	Shiny     bool
}

// New creates a combatant at full health with a fresh id.
//
// Precondition: 1 <= p.Level <= exp.MaxLevel; len(p.Moves) <= MaxMoves.
// Postcondition: HP == MaxHP(); Exp == exp.TotalForLevel(p.Growth, p.Level).
func New(p Params) *Combatant {
	if len(p.Moves) > MaxMoves {
		panic("battler.New: more than four moves")
	}
	c := &Combatant{
		ID:        uuid.NewString(),
		Species:   p.Species,
		Name:      p.Name,
		Types:     append([]string(nil), p.Types...),
		Side:      p.Side,
		Level:     p.Level,
		Exp:       exp.TotalForLevel(p.Growth, p.Level),
		Growth:    p.Growth,
		Base:      p.Base,
		IVs:       p.IVs,
		Moves:     append([]MoveSlot(nil), p.Moves...),
		Tags:      NewTagSet(),
		CatchRate: p.CatchRate,
		BaseExp:   p.BaseExp,
		Shiny:     p.Shiny,
	}
	c.Stats = CalculateStats(c.Base, c.IVs, c.Level)
	c.HP = c.MaxHP()
	return c
}

// Label is the name used in battle messages; opponents are prefixed "Foe".
func (c *Combatant) Label() string {
	if c.Side == SideEnemy {
		return "Foe " + c.Name
	}
	return c.Name
}

// MaxHP returns the HP stat.
func (c *Combatant) MaxHP() int { return c.Stats[StatHP] }

// Fainted reports whether HP is exhausted.
func (c *Combatant) Fainted() bool { return c.HP <= 0 }

// HPRatio returns HP / MaxHP in [0, 1].
func (c *Combatant) HPRatio() float64 {
	if c.MaxHP() == 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP())
}

// HasType reports whether the combatant carries elemental type t.
func (c *Combatant) HasType(t string) bool {
	for _, own := range c.Types {
		if own == t {
			return true
		}
	}
	return false
}

// Damage removes up to n HP and returns the amount actually removed.
//
// Postcondition: 0 <= HP; result == old HP - new HP.
func (c *Combatant) Damage(n int) int {
	if n <= 0 || c.HP <= 0 {
		return 0
	}
	dealt := min(n, c.HP)
	c.HP -= dealt
	return dealt
}

// Heal restores up to n HP and returns the amount actually restored.
// Fainted combatants are not healed; use Revive.
//
// Postcondition: HP <= MaxHP(); result == new HP - old HP.
func (c *Combatant) Heal(n int) int {
	if n <= 0 || c.Fainted() {
		return 0
	}
	healed := min(n, c.MaxHP()-c.HP)
	c.HP += healed
	return healed
}

// Revive restores a fainted combatant to percent of its max HP (at least 1).
//
// Postcondition: returns false and changes nothing if the combatant is standing.
func (c *Combatant) Revive(percent int) bool {
	if !c.Fainted() {
		return false
	}
	c.HP = max(1, c.MaxHP()*percent/100)
	c.Status = Status{}
	return true
}

// Effective returns a stat after stage multipliers and status penalties.
//
// Postcondition: Effective(StatHP) == MaxHP(); every other result >= 1.
func (c *Combatant) Effective(s Stat) int {
	v := c.Stats[s]
	stage, ok := stageFor(s)
	if !ok {
		return v
	}
	num, den := StageRatio(c.Stages[stage])
	v = v * num / den
	if s == StatSpeed && c.Status.Effect == StatusParalysis {
		v /= 4
	}
	return max(1, v)
}

// ChangeStage moves a stage counter by delta, clamped to ±MaxStage, and
// returns the change actually applied.
func (c *Combatant) ChangeStage(s Stage, delta int) int {
	before := c.Stages[s]
	c.Stages[s] = max(-MaxStage, min(MaxStage, before+delta))
	return c.Stages[s] - before
}

// SetStatus applies a persistent status if none is present.
//
// Postcondition: returns false and changes nothing if a status is already active or
// the combatant has fainted.
func (c *Combatant) SetStatus(effect StatusEffect, turns int) bool {
	if c.Status.Active() || c.Fainted() || effect == StatusNone {
		return false
	}
	c.Status = Status{Effect: effect, Turns: turns}
	return true
}

// CureStatus clears the persistent status and returns what was cleared.
func (c *Combatant) CureStatus() StatusEffect {
	prev := c.Status.Effect
	c.Status = Status{}
	return prev
}

// KnowsMove reports whether moveID occupies a slot.
func (c *Combatant) KnowsMove(moveID string) bool {
	return c.MoveIndex(moveID) >= 0
}

// MoveIndex returns the slot holding moveID, or -1.
func (c *Combatant) MoveIndex(moveID string) int {
	for i, m := range c.Moves {
		if m.Move == moveID {
			return i
		}
	}
	return -1
}

// EmptySlot returns the first free move slot index, or -1 when all four are taken.
func (c *Combatant) EmptySlot() int {
	if len(c.Moves) < MaxMoves {
		return len(c.Moves)
	}
	for i, m := range c.Moves {
		if m.Move == "" {
			return i
		}
	}
	return -1
}

// SetMove writes a fresh slot at index i, appending when i == len(Moves).
//
// Precondition: 0 <= i <= len(Moves) and i < MaxMoves.
func (c *Combatant) SetMove(i int, moveID string, maxPP int) {
	slot := MoveSlot{Move: moveID, MaxPP: maxPP}
	if i == len(c.Moves) {
		c.Moves = append(c.Moves, slot)
		return
	}
	c.Moves[i] = slot
}

// HasUsableMove reports whether any slot can be selected.
func (c *Combatant) HasUsableMove() bool {
	for _, m := range c.Moves {
		if m.Usable() {
			return true
		}
	}
	return false
}

// RestorePP returns up to amount uses to every slot (amount < 0 restores fully)
// and reports whether anything changed.
func (c *Combatant) RestorePP(amount int) bool {
	changed := false
	for i := range c.Moves {
		m := &c.Moves[i]
		if m.PPUsed == 0 {
			continue
		}
		if amount < 0 || amount >= m.PPUsed {
			m.PPUsed = 0
		} else {
			m.PPUsed -= amount
		}
		changed = true
	}
	return changed
}

// AddExp awards experience, recalculating stats for every level crossed.
// Current HP rises by the max-HP increase.
//
// Precondition: amount >= 0.
// Postcondition: Level == result.ToLevel; Exp == result.Exp.
func (c *Combatant) AddExp(amount int) exp.Progress {
	p := exp.Gain(c.Growth, c.Level, c.Exp, amount)
	c.Exp = p.Exp
	if p.Leveled() {
		c.setLevel(p.ToLevel)
	}
	return p
}

// GainLevel raises the level by one, setting experience to the new threshold.
//
// Postcondition: returns a zero-width Progress when already at exp.MaxLevel.
func (c *Combatant) GainLevel() exp.Progress {
	if c.Level >= exp.MaxLevel {
		return exp.Progress{FromLevel: c.Level, ToLevel: c.Level, Exp: c.Exp}
	}
	need := exp.TotalForLevel(c.Growth, c.Level+1) - c.Exp
	return c.AddExp(max(need, 0))
}

// BoostBase raises one base stat, recalculating derived stats.
func (c *Combatant) BoostBase(s Stat, amount int) {
	c.Base[s] += amount
	c.setLevel(c.Level)
}

func (c *Combatant) setLevel(level int) {
	oldMax := c.MaxHP()
	c.Level = level
	c.Stats = CalculateStats(c.Base, c.IVs, c.Level)
	if !c.Fainted() {
		c.HP = min(c.MaxHP(), c.HP+c.MaxHP()-oldMax)
	}
}

// ResetTurn clears per-turn scratch data.
func (c *Combatant) ResetTurn() {
	c.Turn = TurnData{}
}

// Recall clears everything that does not survive leaving the field:
// tags, stages, scratch data and the toxic counter.
func (c *Combatant) Recall() {
	c.Tags.Clear()
	c.Stages = Stages{}
	c.ResetTurn()
	c.TurnsOnField = 0
	if c.Status.Effect == StatusToxic {
		c.Status.Turns = 0
	}
}

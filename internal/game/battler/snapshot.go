package battler

import "github.com/cory-johannsen/monbattle/internal/game/exp"

// Snapshot is the plain-data form of a Combatant for external save/load.
// Per-turn scratch data is not captured; snapshots are taken between turns.
type Snapshot struct {
	ID           string         `json:"id"`
	Species      string         `json:"species"`
	Name         string         `json:"name"`
	Types        []string       `json:"types,omitempty"`
	Side         Side           `json:"side"`
	Level        int            `json:"level"`
	Exp          int            `json:"exp"`
	Growth       exp.GrowthRate `json:"growth"`
	HP           int            `json:"hp"`
	Base         Stats          `json:"base"`
	IVs          Stats          `json:"ivs"`
	Stages       Stages         `json:"stages"`
	Status       Status         `json:"status"`
	Moves        []MoveSlot     `json:"moves"`
	Tags         []Tag          `json:"tags,omitempty"`
	CatchRate    int            `json:"catch_rate"`
	BaseExp      int            `json:"base_exp"`
	Shiny        bool           `json:"shiny"`
	TurnsOnField int            `json:"turns_on_field"`
}

// Snapshot captures c as plain data.
//
// Postcondition: FromSnapshot(c.Snapshot()) reproduces every captured field.
func (c *Combatant) Snapshot() Snapshot {
	return Snapshot{
		ID:           c.ID,
		Species:      c.Species,
		Name:         c.Name,
		Types:        append([]string(nil), c.Types...),
		Side:         c.Side,
		Level:        c.Level,
		Exp:          c.Exp,
		Growth:       c.Growth,
		HP:           c.HP,
		Base:         c.Base,
		IVs:          c.IVs,
		Stages:       c.Stages,
		Status:       c.Status,
		Moves:        append([]MoveSlot(nil), c.Moves...),
		Tags:         c.Tags.All(),
		CatchRate:    c.CatchRate,
		BaseExp:      c.BaseExp,
		Shiny:        c.Shiny,
		TurnsOnField: c.TurnsOnField,
	}
}

// FromSnapshot rebuilds a Combatant. Stats are recomputed from base, IVs and level.
func FromSnapshot(s Snapshot) *Combatant {
	c := &Combatant{
		ID:           s.ID,
		Species:      s.Species,
		Name:         s.Name,
		Types:        append([]string(nil), s.Types...),
		Side:         s.Side,
		Level:        s.Level,
		Exp:          s.Exp,
		Growth:       s.Growth,
		HP:           s.HP,
		Base:         s.Base,
		IVs:          s.IVs,
		Stages:       s.Stages,
		Status:       s.Status,
		Moves:        append([]MoveSlot(nil), s.Moves...),
		Tags:         NewTagSet(),
		CatchRate:    s.CatchRate,
		BaseExp:      s.BaseExp,
		Shiny:        s.Shiny,
		TurnsOnField: s.TurnsOnField,
	}
	c.Stats = CalculateStats(c.Base, c.IVs, c.Level)
	c.Tags.Restore(s.Tags)
	return c
}

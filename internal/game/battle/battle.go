// Package battle runs wild encounters as a sequence of phases on a single
// worker: turn intake, move resolution, fainting, capture, experience and
// post-victory rewards.
package battle

import (
	"slices"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/dice"
	"github.com/cory-johannsen/monbattle/internal/game/data"
)

// Data is the static content the engine needs: the read-only provider plus
// encounter spawning. *data.Store satisfies it.
type Data interface {
	data.Provider
	Spawn(speciesID string, level int, side battler.Side, src dice.Source) (*battler.Combatant, error)
	RandomSpecies(src dice.Source) string
}

// Battle is the state of one encounter. It is replaced when the next
// encounter starts.
type Battle struct {
	Wave int
	Turn int
	// Field holds the active combatant per side; nil while a slot is empty.
	Field [2]*battler.Combatant
	Enemy []*battler.Combatant
	// Participants lists the ids of player members that were sent out,
	// in first-appearance order.
	Participants []string

	fainting map[string]bool
}

// NewBattle creates the encounter state for wave.
func NewBattle(wave int, enemy []*battler.Combatant) *Battle {
	return &Battle{Wave: wave, Enemy: enemy, fainting: make(map[string]bool)}
}

// Active returns the combatant on side, or nil.
func (b *Battle) Active(side battler.Side) *battler.Combatant { return b.Field[side] }

// Foe returns the combatant facing c, or nil.
func (b *Battle) Foe(c *battler.Combatant) *battler.Combatant { return b.Field[c.Side.Opposite()] }

// OnField reports whether c is its side's active combatant.
func (b *Battle) OnField(c *battler.Combatant) bool { return c != nil && b.Field[c.Side] == c }

// AddParticipant records id as earning exp credit.
//
// Postcondition: Participated(id).
func (b *Battle) AddParticipant(id string) {
	if !b.Participated(id) {
		b.Participants = append(b.Participants, id)
	}
}

// Participated reports whether id was sent out during this encounter.
func (b *Battle) Participated(id string) bool { return slices.Contains(b.Participants, id) }

// markFainting records that a faint phase is queued for c and reports
// whether it was not already.
func (b *Battle) markFainting(c *battler.Combatant) bool {
	if b.fainting[c.ID] {
		return false
	}
	b.fainting[c.ID] = true
	return true
}

package reward

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/dice"
)

// Built-in generator names.
const (
	GeneratorTM      = "tm"
	GeneratorVitamin = "vitamin"
)

// generator produces the concrete descriptor of a draw, or false when no
// descriptor fits the party.
type generator func(e *Entry, party []*battler.Combatant, src dice.Source) (Descriptor, bool)

var generators = map[string]generator{
	GeneratorTM:      generateTM,
	GeneratorVitamin: generateVitamin,
}

// generateTM picks a candidate move that some standing member does not know.
func generateTM(e *Entry, party []*battler.Combatant, src dice.Source) (Descriptor, bool) {
	var fits []string
	for _, m := range e.Moves {
		for _, c := range party {
			if !c.Fainted() && !c.KnowsMove(m) {
				fits = append(fits, m)
				break
			}
		}
	}
	if len(fits) == 0 {
		return Descriptor{}, false
	}
	m := fits[src.Intn(len(fits))]
	d := e.Descriptor
	d.ID = e.ID + "_" + m
	d.Name = "TM " + strings.ToUpper(strings.ReplaceAll(m, "_", " "))
	d.Group = e.ID
	d.Move = m
	return d, true
}

var vitaminNames = [...]string{"HP UP", "PROTEIN", "IRON", "CALCIUM", "ZINC", "CARBOS"}

// generateVitamin picks one of the six stats uniformly.
func generateVitamin(e *Entry, party []*battler.Combatant, src dice.Source) (Descriptor, bool) {
	if len(party) == 0 {
		return Descriptor{}, false
	}
	s := battler.Stat(src.Intn(len(vitaminNames)))
	d := e.Descriptor
	d.ID = fmt.Sprintf("%s_%d", e.ID, int(s))
	d.Name = vitaminNames[s]
	d.Group = e.ID
	d.Stat = s
	return d, true
}

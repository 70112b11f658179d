package reward

import "github.com/cory-johannsen/monbattle/internal/game/battler"

// builtinCap bounds how many qualifying members a built-in weight counts.
const builtinCap = 3

// lowPPLeft is the remaining-PP level at which a used move counts as low.
const lowPPLeft = 5

// builtinWeights count the party members a reward would help.
var builtinWeights = map[string]func(party []*battler.Combatant) int{
	"low_hp": func(party []*battler.Combatant) int {
		return count(party, func(c *battler.Combatant) bool {
			return !c.Fainted() && (c.MaxHP()-c.HP >= 10 || c.HPRatio() <= 0.875)
		})
	},
	"very_low_hp": func(party []*battler.Combatant) int {
		return count(party, func(c *battler.Combatant) bool {
			return !c.Fainted() && c.HPRatio() <= 0.5
		})
	},
	"fainted": func(party []*battler.Combatant) int {
		return count(party, (*battler.Combatant).Fainted)
	},
	"low_pp": func(party []*battler.Combatant) int {
		return count(party, func(c *battler.Combatant) bool {
			if c.Fainted() {
				return false
			}
			for _, m := range c.Moves {
				if m.PPUsed > 0 && m.PPLeft() <= lowPPLeft {
					return true
				}
			}
			return false
		})
	},
	"status": func(party []*battler.Combatant) int {
		return count(party, func(c *battler.Combatant) bool {
			return !c.Fainted() && c.Status.Active()
		})
	},
}

func count(party []*battler.Combatant, pred func(*battler.Combatant) bool) int {
	n := 0
	for _, c := range party {
		if pred(c) {
			n++
		}
	}
	return min(n, builtinCap)
}

// WeightScripter evaluates scripted party weight functions.
type WeightScripter interface {
	// Weight returns the weight hook computes for party; ok is false when
	// the hook is missing or failed.
	Weight(hook string, party []*battler.Combatant) (weight int, ok bool)
}

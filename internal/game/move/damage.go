package move

import (
	"math"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/dice"
)

// TypeChart reports the damage multiplier of an attacking type against a
// defender's types. Missing pairs are neutral.
type TypeChart interface {
	Effectiveness(attack string, defend []string) float64
}

// NeutralChart treats every matchup as neutral.
type NeutralChart struct{}

// Effectiveness always returns 1.
func (NeutralChart) Effectiveness(string, []string) float64 { return 1 }

// Crit odds: 1 in CritOdds, or 1 in BoostedCritOdds with any crit stage.
const (
	CritOdds        = 16
	BoostedCritOdds = 8
)

// DamageResult is the outcome of one damage roll.
type DamageResult struct {
	Amount        int
	Critical      bool
	Effectiveness float64
}

// Immune reports whether the target's types nullified the hit.
func (r DamageResult) Immune() bool { return r.Effectiveness == 0 }

// CalculateDamage rolls the damage def deals from user to target. The crit
// draw always precedes the variance draw, so results are reproducible from
// the stream.
//
// Precondition: def.Damaging().
// Postcondition: result.Amount >= 1 unless result.Immune().
func CalculateDamage(def *Def, user, target *battler.Combatant, chart TypeChart, src dice.Source) DamageResult {
	odds := CritOdds
	if def.HighCrit || user.Tags.CritStages() > 0 {
		odds = BoostedCritOdds
	}
	crit := src.Intn(odds) == 0
	variance := float64(src.Intn(15) + 85)

	eff := chart.Effectiveness(def.Type, target.Types)
	if eff == 0 {
		return DamageResult{}
	}

	atkStat, defStat := battler.StatAttack, battler.StatDefense
	if def.Category == Special {
		atkStat, defStat = battler.StatSpAtk, battler.StatSpDef
	}
	attack := float64(user.Effective(atkStat))
	defense := float64(target.Effective(defStat))

	base := ((2*float64(user.Level)/5+2)*float64(def.Power)*attack/defense)/50 + 2
	stab := 1.0
	if user.HasType(def.Type) {
		stab = 1.5
	}
	amount := int(math.Ceil(base * stab * eff * variance / 100))
	if crit {
		amount *= 2
	}
	if def.Category == Physical && user.Status.Effect == battler.StatusBurn {
		amount /= 2
	}
	return DamageResult{Amount: max(amount, 1), Critical: crit, Effectiveness: eff}
}

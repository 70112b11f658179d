package move

import (
	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/dice"
)

// AccuracyMultiplier returns the hit-chance multiplier for an accuracy stage
// difference (user accuracy minus target evasion) as num/den.
//
// Postcondition: diff > 0 → (3+min(diff,6))/3; diff < 0 → 3/(3+min(-diff,6)); else 1/1.
func AccuracyMultiplier(diff int) (num, den int) {
	switch {
	case diff > 0:
		return 3 + min(diff, battler.MaxStage), 3
	case diff < 0:
		return 3, 3 + min(-diff, battler.MaxStage)
	default:
		return 1, 1
	}
}

// HitCheck decides whether def, used by user, connects with target.
// Status moves and AlwaysHits moves never draw.
//
// Precondition: def, user, target and src must be non-nil.
func HitCheck(def *Def, user, target *battler.Combatant, src dice.Source) bool {
	if def.Category == Status || def.Accuracy == AlwaysHits {
		return true
	}
	draw := src.Intn(100) + 1
	diff := user.Stages[battler.StageAccuracy] - target.Stages[battler.StageEvasion]
	num, den := AccuracyMultiplier(diff)
	return draw*den <= def.Accuracy*num
}

// Hits returns how many times a move with rule h strikes.
// Only HitsTwoToFive draws.
//
// Postcondition: 1 <= result <= 5.
func Hits(h HitCount, src dice.Source) int {
	switch h {
	case HitsTwo:
		return 2
	case HitsThree:
		return 3
	case HitsTwoToFive:
		r := src.Intn(16)
		switch {
		case r >= 10:
			return 2
		case r >= 4:
			return 3
		case r >= 2:
			return 4
		default:
			return 5
		}
	default:
		return 1
	}
}

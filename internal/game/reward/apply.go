package reward

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/exp"
)

// NoTarget is returned by BestTarget when no party member qualifies.
const NoTarget = -1

// Sentinel errors for rejected applications. A rejected application changes nothing.
var (
	ErrNoTarget      = errors.New("reward needs a party target")
	ErrNoEffect      = errors.New("it won't have any effect")
	ErrAlreadyKnown  = errors.New("move is already known")
	ErrUnknownReward = errors.New("unknown reward kind")
)

// Outcome reports what applying a reward did beyond direct state changes.
type Outcome struct {
	Message string
	// Level is set when the target gained a level.
	Level *exp.Progress
	// Learn is the move the target should now try to learn.
	Learn string
}

// CanApply reports whether d would have an effect on target, without changing anything.
func CanApply(d Descriptor, target *battler.Combatant) error {
	if !d.Kind.NeedsTarget() {
		return nil
	}
	if target == nil {
		return ErrNoTarget
	}
	switch d.Kind {
	case KindPotion:
		if target.Fainted() || target.HP == target.MaxHP() {
			return ErrNoEffect
		}
	case KindRevive:
		if !target.Fainted() {
			return ErrNoEffect
		}
	case KindEther:
		for _, m := range target.Moves {
			if m.PPUsed > 0 {
				return nil
			}
		}
		return ErrNoEffect
	case KindStatusCure:
		if target.Fainted() || !target.Status.Active() {
			return ErrNoEffect
		}
	case KindRareCandy:
		if target.Level >= exp.MaxLevel {
			return ErrNoEffect
		}
	case KindVitamin:
	case KindTM:
		if target.KnowsMove(d.Move) {
			return ErrAlreadyKnown
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownReward, int(d.Kind))
	}
	return nil
}

// Apply applies d to target (nil for untargeted kinds) and holdings.
//
// Postcondition: on error nothing changed.
func Apply(d Descriptor, target *battler.Combatant, h *Holdings) (Outcome, error) {
	if err := CanApply(d, target); err != nil {
		return Outcome{}, err
	}
	switch d.Kind {
	case KindPotion:
		amount := d.Amount
		if d.Percent > 0 {
			amount = max(amount, target.MaxHP()*d.Percent/100)
		}
		healed := target.Heal(amount)
		return Outcome{Message: fmt.Sprintf("%s's HP was restored by %d.", target.Name, healed)}, nil
	case KindRevive:
		target.Revive(d.Percent)
		return Outcome{Message: target.Name + " was revived!"}, nil
	case KindEther:
		target.RestorePP(d.Amount)
		return Outcome{Message: target.Name + "'s PP was restored."}, nil
	case KindStatusCure:
		cured := target.CureStatus()
		return Outcome{Message: cured.CureText(target.Name)}, nil
	case KindRareCandy:
		p := target.GainLevel()
		return Outcome{Message: fmt.Sprintf("%s grew to Lv. %d!", target.Name, p.ToLevel), Level: &p}, nil
	case KindVitamin:
		target.BoostBase(d.Stat, max(d.Amount, 1))
		return Outcome{Message: fmt.Sprintf("%s's %s rose.", target.Name, d.Stat)}, nil
	case KindTM:
		return Outcome{Learn: d.Move}, nil
	case KindBall:
		h.AddBalls(d.Ball, max(d.Amount, 1))
		return Outcome{Message: fmt.Sprintf("You received %d %s!", max(d.Amount, 1), d.Ball)}, nil
	case KindModifier:
		if h.AddModifier(d.Modifier, max(d.Amount, 1)) == 0 {
			return Outcome{}, ErrNoEffect
		}
		return Outcome{Message: "You received " + d.Label() + "!"}, nil
	default:
		return Outcome{}, fmt.Errorf("%w: %d", ErrUnknownReward, int(d.Kind))
	}
}

// BestTarget returns the index of the party member d helps most, or NoTarget.
// Healing prefers the lowest HP ratio; revives the first fainted member;
// everything else the first member it applies to.
func BestTarget(d Descriptor, party []*battler.Combatant) int {
	best := NoTarget
	for i, c := range party {
		if CanApply(d, c) != nil {
			continue
		}
		if best == NoTarget {
			best = i
			if d.Kind != KindPotion {
				return best
			}
			continue
		}
		if c.HPRatio() < party[best].HPRatio() {
			best = i
		}
	}
	return best
}

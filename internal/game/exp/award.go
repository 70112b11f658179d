package exp

import "math"

// ShareBonusPerStack is the additive fraction of the base award each EXP.
// SHARE stack grants to every standing party member.
const ShareBonusPerStack = 0.1

// Member describes one party member for distribution purposes.
type Member struct {
	Participated bool
	Fainted      bool
	Level        int
}

// Share is one member's slice of a victory award.
//
// Invariant: Amount == floor(base * Multiplier).
type Share struct {
	Multiplier float64
	Amount     int
}

// BaseAward returns the experience value of defeating an opponent.
//
// Precondition: baseExp >= 0, level >= 1.
func BaseAward(baseExp, level int) int {
	return baseExp*level/5 + 1
}

// Distribute splits base across members. A standing member that fought earns
// 1/participants; every standing member earns ShareBonusPerStack per share
// stack on top. Fainted members, members at MaxLevel, and non-participants
// without share stacks receive a zero Share.
//
// Precondition: participants >= 0; shareStacks >= 0.
// Postcondition: len(result) == len(members); sum of Multiplier over result ==
// (standing participants)/participants + shareStacks*ShareBonusPerStack*(standing members below MaxLevel).
func Distribute(base int, members []Member, participants, shareStacks int) []Share {
	out := make([]Share, len(members))
	for i, m := range members {
		if m.Fainted || m.Level >= MaxLevel {
			continue
		}
		mult := 0.0
		if m.Participated && participants > 0 {
			mult += 1 / float64(participants)
		}
		if shareStacks > 0 {
			mult += float64(shareStacks) * ShareBonusPerStack
		}
		if mult == 0 {
			continue
		}
		out[i] = Share{Multiplier: mult, Amount: int(math.Floor(float64(base) * mult))}
	}
	return out
}

// Boost applies a percentage experience booster to an already floored award
// and floors again.
//
// Precondition: amount >= 0; percent >= 0.
// Postcondition: result >= amount.
func Boost(amount, percent int) int {
	if percent <= 0 {
		return amount
	}
	return amount * (100 + percent) / 100
}

package battle

import (
	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/data"
	"github.com/cory-johannsen/monbattle/internal/game/learn"
	"github.com/cory-johannsen/monbattle/internal/game/move"
	"github.com/cory-johannsen/monbattle/internal/game/reward"
)

// AutoPlayer is a DecisionSource that answers every request immediately with
// a simple greedy policy. It drives unattended runs and simulations.
type AutoPlayer struct {
	data data.Provider
}

// NewAutoPlayer creates an AutoPlayer reading move and type data from d.
func NewAutoPlayer(d data.Provider) *AutoPlayer { return &AutoPlayer{data: d} }

// Command fights with the usable move scoring highest against the foe.
func (a *AutoPlayer) Command(req CommandRequest, reply func(Command)) {
	best, score := 0, -1.0
	for i, m := range req.Active.Moves {
		if !m.Usable() {
			continue
		}
		if s := a.score(m.Move, req.Active, req.Foe); s > score {
			best, score = i, s
		}
	}
	reply(Fight(best))
}

// Switch sends in the first standing member that is not already out.
func (a *AutoPlayer) Switch(req SwitchRequest, reply func(int)) {
	for i, c := range req.Party {
		if !c.Fainted() {
			reply(i)
			return
		}
	}
	reply(0)
}

// Confirm replaces a move only when the new one is stronger than the weakest known.
func (a *AutoPlayer) Confirm(req ConfirmRequest, reply func(bool)) {
	if req.Kind == ConfirmStopLearning {
		reply(true)
		return
	}
	_, weakest := a.weakest(req.Member)
	reply(req.Move.Power > weakest)
}

// ForgetMove forgets the weakest move, or cancels when every move is at least as strong.
func (a *AutoPlayer) ForgetMove(req ForgetRequest, reply func(int)) {
	slot, power := a.weakest(req.Member)
	if slot < 0 || power >= req.Move.Power {
		reply(learn.CancelSlot)
		return
	}
	reply(slot)
}

// Reward takes the first option that applies to someone.
func (a *AutoPlayer) Reward(req RewardRequest, reply func(int)) {
	for i, o := range req.Options {
		if !o.Kind.NeedsTarget() || reward.BestTarget(o.Descriptor, req.Party) != reward.NoTarget {
			reply(i)
			return
		}
	}
	reply(SkipReward)
}

// PartyTarget picks the member the option helps most.
func (a *AutoPlayer) PartyTarget(req TargetRequest, reply func(int)) {
	reply(reward.BestTarget(req.Option.Descriptor, req.Party))
}

// Release lets go of the lowest-level member when the newcomer outlevels it,
// and the newcomer otherwise.
func (a *AutoPlayer) Release(req ReleaseRequest, reply func(int)) {
	low := reward.NoTarget
	for i, c := range req.Party {
		if low == reward.NoTarget || c.Level < req.Party[low].Level {
			low = i
		}
	}
	if low != reward.NoTarget && req.Party[low].Level < req.Newcomer.Level {
		reply(low)
		return
	}
	reply(reward.NoTarget)
}

// score estimates a move's damage: power times effectiveness times STAB.
func (a *AutoPlayer) score(id string, user, foe *battler.Combatant) float64 {
	def, ok := a.data.Move(id)
	if !ok || !def.Damaging() {
		return 0
	}
	s := float64(def.Power)
	if foe != nil {
		s *= a.data.Effectiveness(def.Type, foe.Types)
	}
	if user.HasType(def.Type) {
		s *= 1.5
	}
	return s
}

// weakest returns the slot and power of c's weakest known move.
func (a *AutoPlayer) weakest(c *battler.Combatant) (int, int) {
	slot, power := -1, 0
	for i, m := range c.Moves {
		if m.Move == "" {
			continue
		}
		p := 0
		if def, ok := a.data.Move(m.Move); ok && def.Category != move.Status {
			p = def.Power
		}
		if slot < 0 || p < power {
			slot, power = i, p
		}
	}
	return slot, power
}

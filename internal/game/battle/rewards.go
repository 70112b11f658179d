package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/phase"
	"github.com/cory-johannsen/monbattle/internal/game/reward"
)

// SelectRewardPhase offers the post-victory rewards and applies the chosen one.
type SelectRewardPhase struct {
	phase.Base
	e       *Engine
	options []reward.Option
}

func newSelectRewardPhase(e *Engine) *SelectRewardPhase { return &SelectRewardPhase{e: e} }

// Name returns "select_reward".
func (p *SelectRewardPhase) Name() string { return "select_reward" }

// Start draws the offer. Luxury waves offer the whole luxury tier instead.
func (p *SelectRewardPhase) Start() {
	e := p.e
	if p.Cancelled() || e.outcome != OutcomeRunning {
		e.end(p)
		return
	}
	wave := e.wave()
	if reward.IsLuxuryWave(wave, e.cfg.LuxuryInterval) {
		p.options = e.pool.OfferLuxury(e.party, e.holdings, e.rng)
	} else {
		p.options = e.pool.Offer(e.party, e.holdings, e.holdings.OptionCount(e.cfg.RewardOptions), e.rng)
	}
	e.logger.Debug("rewards offered", zap.Int("wave", wave), zap.Int("options", len(p.options)))
	if len(p.options) == 0 {
		e.end(p)
		return
	}
	p.prompt(nil)
}

func (p *SelectRewardPhase) prompt(rejected error) {
	e := p.e
	e.decisions.Reward(RewardRequest{Options: p.options, Party: e.party, Rejected: rejected}, replyTo(e, "reward", func(i int) {
		if i == SkipReward {
			e.end(p)
			return
		}
		if i < 0 || i >= len(p.options) {
			p.prompt(fmt.Errorf("%w: no reward option %d", ErrInvalidCommand, i))
			return
		}
		opt := p.options[i]
		if !opt.Kind.NeedsTarget() {
			p.apply(opt, nil)
			return
		}
		p.target(opt, nil)
	}))
}

func (p *SelectRewardPhase) target(opt reward.Option, rejected error) {
	e := p.e
	e.decisions.PartyTarget(TargetRequest{Option: opt, Party: e.party, Rejected: rejected}, replyTo(e, "party_target", func(m int) {
		if m == reward.NoTarget {
			p.prompt(nil)
			return
		}
		if m < 0 || m >= len(e.party) {
			p.target(opt, fmt.Errorf("%w: no party member %d", ErrInvalidCommand, m))
			return
		}
		if err := reward.CanApply(opt.Descriptor, e.party[m]); err != nil {
			p.target(opt, fmt.Errorf("%w: %w", ErrInvalidCommand, err))
			return
		}
		p.apply(opt, e.party[m])
	}))
}

// apply commits the chosen reward and queues its follow-ups.
//
// Postcondition: on a rejected application the reward choice is asked again.
func (p *SelectRewardPhase) apply(opt reward.Option, target *battler.Combatant) {
	e := p.e
	out, err := reward.Apply(opt.Descriptor, target, e.holdings)
	if err != nil {
		p.prompt(fmt.Errorf("%w: %w", ErrInvalidCommand, err))
		return
	}
	e.logger.Info("reward applied", zap.String("reward", opt.ID), zap.Stringer("tier", opt.Tier))
	switch {
	case out.Level != nil:
		e.sched.Unshift(newLevelUpPhase(e, target, out.Level.FromLevel, out.Level.ToLevel))
	case out.Learn != "":
		e.sched.Unshift(newLearnMovePhase(e, target, out.Learn))
	default:
		e.say(out.Message)
	}
	e.end(p)
}

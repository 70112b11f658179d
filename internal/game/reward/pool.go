package reward

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/dice"
)

// Tier draw boundaries over Intn(TierRange): >= CommonFloor is common,
// >= GreatFloor great, >= UltraFloor ultra, else master.
const (
	TierRange   = 256
	CommonFloor = 52
	GreatFloor  = 8
	UltraFloor  = 1
)

// Upgrade odds: a drawn tier is promoted one step when
// Intn(UpgradeBaseOdds + UpgradeOddsPerRare·rareCount) == 0.
const (
	UpgradeBaseOdds    = 32
	UpgradeOddsPerRare = 16
)

// MaxRerolls is how many failed generator draws a tier absorbs before the
// draw falls back one tier.
const MaxRerolls = 10

// MaxOfferRetries caps collision re-draws per option.
const MaxOfferRetries = 50

// Threshold is one cumulative bound of a tier's weight table.
type Threshold struct {
	Upper int // prefix sum of non-zero weights up to and including Index
	Index int // position of the entry in its tier
}

// Option is one drawn reward.
type Option struct {
	Descriptor
	Tier     Tier
	Upgraded bool
}

// Pool is the tiered weighted reward pool. Thresholds are owned by the Pool
// and are valid only for the party they were last rebuilt from.
// It is not safe for concurrent use.
type Pool struct {
	tiers      [tierCount][]*Entry
	thresholds [tierCount][]Threshold
	ignored    [tierCount][]int
	scripter   WeightScripter
	logger     *zap.Logger
	party      []*battler.Combatant
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithScripter sets the evaluator for weight_script entries.
func WithScripter(s WeightScripter) PoolOption {
	return func(p *Pool) { p.scripter = s }
}

// WithLogger sets the pool logger.
func WithLogger(l *zap.Logger) PoolOption {
	return func(p *Pool) { p.logger = l }
}

// NewPool groups entries by tier, keeping declaration order within each tier.
//
// Precondition: every entry passed Validate.
func NewPool(entries []*Entry, opts ...PoolOption) *Pool {
	p := &Pool{logger: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	for _, e := range entries {
		p.tiers[e.Tier] = append(p.tiers[e.Tier], e)
	}
	return p
}

// Entries returns the entries of tier t in declaration order.
func (p *Pool) Entries(t Tier) []*Entry { return p.tiers[t] }

// Thresholds returns the threshold table of tier t from the last Rebuild.
func (p *Pool) Thresholds(t Tier) []Threshold { return p.thresholds[t] }

// Ignored returns the zero-weight entry positions of tier t from the last Rebuild.
func (p *Pool) Ignored(t Tier) []int { return p.ignored[t] }

// Rebuild recomputes every tier's thresholds for party and holdings.
// Entries whose weight evaluates to zero are recorded as ignored.
//
// Postcondition: Thresholds(t) is strictly increasing in Upper for every t.
func (p *Pool) Rebuild(party []*battler.Combatant, h *Holdings) {
	p.party = party
	for t := range p.tiers {
		var th []Threshold
		var ignored []int
		total := 0
		for i, e := range p.tiers[t] {
			w := p.weight(e, party, h)
			if w <= 0 {
				ignored = append(ignored, i)
				continue
			}
			total += w
			th = append(th, Threshold{Upper: total, Index: i})
		}
		p.thresholds[t] = th
		p.ignored[t] = ignored
	}
}

func (p *Pool) weight(e *Entry, party []*battler.Combatant, h *Holdings) int {
	if e.Kind == KindModifier && h != nil && h.Capped(e.Modifier) {
		return 0
	}
	switch {
	case e.WeightFn != "":
		return builtinWeights[e.WeightFn](party) * e.Weight
	case e.WeightScript != "":
		if p.scripter == nil {
			return e.Weight
		}
		w, ok := p.scripter.Weight(e.WeightScript, party)
		if !ok {
			p.logger.Warn("weight script failed; using fixed weight",
				zap.String("entry", e.ID), zap.String("hook", e.WeightScript))
			return e.Weight
		}
		return w
	default:
		return e.Weight
	}
}

// DrawTier draws a weighted tier and possibly upgrades it one step. The
// upgrade chance shrinks as rareCount grows.
//
// Postcondition: result <= TierMaster; upgraded implies result > TierCommon.
func DrawTier(src dice.Source, rareCount int) (tier Tier, upgraded bool) {
	v := src.Intn(TierRange)
	switch {
	case v >= CommonFloor:
		tier = TierCommon
	case v >= GreatFloor:
		tier = TierGreat
	case v >= UltraFloor:
		tier = TierUltra
	default:
		tier = TierMaster
	}
	if tier < TierMaster && src.Intn(UpgradeBaseOdds+UpgradeOddsPerRare*max(rareCount, 0)) == 0 {
		return tier + 1, true
	}
	return tier, false
}

// Draw picks one entry from tier t using the current thresholds. Empty tiers
// fall back one tier; MaxRerolls failed generator draws also drop a tier.
//
// Precondition: Rebuild was called for the current party.
// Postcondition: ok is false only when no tier at or below t can produce a reward.
func (p *Pool) Draw(t Tier, src dice.Source) (Option, bool) {
	rerolls := 0
	for {
		th := p.thresholds[t]
		if len(th) == 0 {
			if t == TierCommon || t == TierLuxury {
				return Option{}, false
			}
			t--
			rerolls = 0
			continue
		}
		v := src.Intn(th[len(th)-1].Upper)
		e := p.tiers[t][pick(th, v)]
		if e.Generator == "" {
			return Option{Descriptor: e.Descriptor, Tier: t}, true
		}
		if d, ok := generators[e.Generator](e, p.party, src); ok {
			return Option{Descriptor: d, Tier: t}, true
		}
		rerolls++
		p.logger.Debug("generator produced nothing; rerolling",
			zap.String("entry", e.ID), zap.Int("rerolls", rerolls))
		if rerolls == MaxRerolls {
			if t == TierCommon || t == TierLuxury {
				return Option{}, false
			}
			t--
			rerolls = 0
		}
	}
}

// pick returns the entry index of the first threshold exceeding v.
func pick(th []Threshold, v int) int {
	for _, x := range th {
		if v < x.Upper {
			return x.Index
		}
	}
	return th[len(th)-1].Index
}

// Offer rebuilds the thresholds for party and draws k options. An option
// colliding by id or group with an earlier one is re-drawn up to
// min(k·5, MaxOfferRetries) times before the duplicate is accepted.
//
// Postcondition: len(result) <= k; Thresholds reflect party.
func (p *Pool) Offer(party []*battler.Combatant, h *Holdings, k int, src dice.Source) []Option {
	p.Rebuild(party, h)
	rare := 0
	if h != nil {
		rare = h.RareCount()
	}
	retries := min(k*5, MaxOfferRetries)
	var out []Option
	for range k {
		opt, ok := p.drawOne(src, rare)
		for r := 0; ok && r < retries && collides(opt, out); r++ {
			opt, ok = p.drawOne(src, rare)
		}
		if ok {
			out = append(out, opt)
		}
	}
	p.logger.Debug("reward offer", zap.Int("requested", k), zap.Int("offered", len(out)))
	return out
}

func (p *Pool) drawOne(src dice.Source, rare int) (Option, bool) {
	tier, upgraded := DrawTier(src, rare)
	opt, ok := p.Draw(tier, src)
	opt.Upgraded = upgraded && opt.Tier == tier
	return opt, ok
}

func collides(o Option, taken []Option) bool {
	for _, t := range taken {
		if o.collides(t.Descriptor) {
			return true
		}
	}
	return false
}

// OfferLuxury rebuilds the thresholds and offers every luxury entry with a
// non-zero weight, bypassing weighting.
func (p *Pool) OfferLuxury(party []*battler.Combatant, h *Holdings, src dice.Source) []Option {
	p.Rebuild(party, h)
	var out []Option
	for _, x := range p.thresholds[TierLuxury] {
		e := p.tiers[TierLuxury][x.Index]
		d := e.Descriptor
		if e.Generator != "" {
			var ok bool
			if d, ok = generators[e.Generator](e, party, src); !ok {
				continue
			}
		}
		out = append(out, Option{Descriptor: d, Tier: TierLuxury})
	}
	return out
}

// IsLuxuryWave reports whether wave offers the luxury tier.
func IsLuxuryWave(wave, interval int) bool {
	return interval > 0 && wave > 0 && wave%interval == 0
}

package reward_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/capture"
	"github.com/cory-johannsen/monbattle/internal/game/dice"
	"github.com/cory-johannsen/monbattle/internal/game/exp"
	"github.com/cory-johannsen/monbattle/internal/game/reward"
)

// seqSrc replays vals in order, clamping each to [0, n), and records every n.
type seqSrc struct {
	vals []int
	i    int
	ns   []int
}

func (s *seqSrc) Intn(n int) int {
	s.ns = append(s.ns, n)
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return min(v, n-1)
}

func member(name string) *battler.Combatant {
	return battler.New(battler.Params{
		Species: name, Name: name, Types: []string{"normal"}, Level: 20, Growth: exp.MediumFast,
		Base:  battler.Stats{50, 50, 50, 50, 50, 50},
		Moves: []battler.MoveSlot{{Move: "tackle", MaxPP: 35}},
	})
}

func fixed(tier reward.Tier, id string, weight int) *reward.Entry {
	return &reward.Entry{Tier: tier, Weight: weight,
		Descriptor: reward.Descriptor{ID: id, Kind: reward.KindBall, Amount: 1}}
}

func TestLoadEntries_ShippedContent(t *testing.T) {
	entries, err := reward.LoadEntries("../../../content/" + reward.RewardsFile)
	require.NoError(t, err)
	p := reward.NewPool(entries)
	for _, tier := range []reward.Tier{reward.TierCommon, reward.TierGreat, reward.TierUltra, reward.TierMaster, reward.TierLuxury} {
		assert.NotEmpty(t, p.Entries(tier), "tier %s", tier)
	}
}

func TestEntry_ValidateCollects(t *testing.T) {
	e := &reward.Entry{Tier: reward.TierGreat, Weight: -1, WeightFn: "vibes", WeightScript: "x",
		Generator: "tm", Descriptor: reward.Descriptor{ID: "bad", Kind: reward.KindModifier}}
	err := e.Validate()
	require.Error(t, err)
	for _, want := range []string{"weight must be", "mutually exclusive", "vibes", "tm generator needs moves", "unknown modifier"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestRebuild_PrefixSumsSkipZeroWeights(t *testing.T) {
	p := reward.NewPool([]*reward.Entry{
		fixed(reward.TierCommon, "a", 3),
		fixed(reward.TierCommon, "b", 0),
		fixed(reward.TierCommon, "c", 5),
	})
	p.Rebuild(nil, reward.NewHoldings())
	assert.Equal(t, []reward.Threshold{{Upper: 3, Index: 0}, {Upper: 8, Index: 2}}, p.Thresholds(reward.TierCommon))
	assert.Equal(t, []int{1}, p.Ignored(reward.TierCommon))
}

func TestRebuild_TracksPartyChanges(t *testing.T) {
	revive := &reward.Entry{Tier: reward.TierGreat, Weight: 9, WeightFn: "fainted",
		Descriptor: reward.Descriptor{ID: "revive", Kind: reward.KindRevive, Percent: 50}}
	p := reward.NewPool([]*reward.Entry{revive})
	party := []*battler.Combatant{member("a"), member("b")}

	p.Rebuild(party, nil)
	assert.Empty(t, p.Thresholds(reward.TierGreat))

	party[1].Damage(party[1].HP)
	p.Rebuild(party, nil)
	assert.Equal(t, []reward.Threshold{{Upper: 9, Index: 0}}, p.Thresholds(reward.TierGreat))
}

func TestRebuild_CappedModifierIsIgnored(t *testing.T) {
	e := &reward.Entry{Tier: reward.TierUltra, Weight: 12,
		Descriptor: reward.Descriptor{ID: "exp_share", Kind: reward.KindModifier, Modifier: reward.ExpShare}}
	p := reward.NewPool([]*reward.Entry{e})
	h := reward.NewHoldings()
	h.AddModifier(reward.ExpShare, 99)
	p.Rebuild(nil, h)
	assert.Equal(t, []int{0}, p.Ignored(reward.TierUltra))
}

type stubScripter map[string]int

func (s stubScripter) Weight(hook string, _ []*battler.Combatant) (int, bool) {
	w, ok := s[hook]
	return w, ok
}

func TestRebuild_ScriptedWeights(t *testing.T) {
	scripted := &reward.Entry{Tier: reward.TierCommon, Weight: 2, WeightScript: "hook",
		Descriptor: reward.Descriptor{ID: "s", Kind: reward.KindBall}}
	p := reward.NewPool([]*reward.Entry{scripted}, reward.WithScripter(stubScripter{"hook": 7}))
	p.Rebuild(nil, nil)
	assert.Equal(t, 7, p.Thresholds(reward.TierCommon)[0].Upper)

	fallback := reward.NewPool([]*reward.Entry{scripted}, reward.WithScripter(stubScripter{}))
	fallback.Rebuild(nil, nil)
	assert.Equal(t, 2, fallback.Thresholds(reward.TierCommon)[0].Upper, "a failed hook uses the fixed weight")
}

func TestDrawTier_Boundaries(t *testing.T) {
	cases := map[int]reward.Tier{255: reward.TierCommon, 52: reward.TierCommon, 51: reward.TierGreat,
		8: reward.TierGreat, 7: reward.TierUltra, 1: reward.TierUltra, 0: reward.TierMaster}
	for v, want := range cases {
		// second draw 1 declines the upgrade
		tier, up := reward.DrawTier(&seqSrc{vals: []int{v, 1}}, 0)
		assert.Equal(t, want, tier, "draw %d", v)
		assert.False(t, up)
	}
}

func TestDrawTier_UpgradeOddsShrinkWithRareCount(t *testing.T) {
	src := &seqSrc{vals: []int{100, 0}}
	tier, up := reward.DrawTier(src, 0)
	assert.Equal(t, reward.TierGreat, tier)
	assert.True(t, up)
	assert.Equal(t, []int{reward.TierRange, 32}, src.ns)

	src = &seqSrc{vals: []int{100, 0}}
	reward.DrawTier(src, 3)
	assert.Equal(t, 32+16*3, src.ns[1])

	src = &seqSrc{vals: []int{0}}
	tier, up = reward.DrawTier(src, 0)
	assert.Equal(t, reward.TierMaster, tier)
	assert.False(t, up)
	assert.Len(t, src.ns, 1, "master is never upgraded")
}

func TestDraw_SingleNonZeroWeightAlwaysWins(t *testing.T) {
	p := reward.NewPool([]*reward.Entry{
		fixed(reward.TierGreat, "zero_a", 0),
		fixed(reward.TierGreat, "winner", 4),
		fixed(reward.TierGreat, "zero_b", 0),
	})
	p.Rebuild(nil, nil)
	src := dice.NewSeededSource(99)
	for range 50 {
		opt, ok := p.Draw(reward.TierGreat, src)
		require.True(t, ok)
		assert.Equal(t, "winner", opt.ID)
	}
}

func TestDraw_EmptyTierFallsBack(t *testing.T) {
	p := reward.NewPool([]*reward.Entry{fixed(reward.TierCommon, "c", 1), fixed(reward.TierMaster, "m", 0)})
	p.Rebuild(nil, nil)
	opt, ok := p.Draw(reward.TierMaster, &seqSrc{})
	require.True(t, ok)
	assert.Equal(t, "c", opt.ID)
	assert.Equal(t, reward.TierCommon, opt.Tier)

	empty := reward.NewPool(nil)
	empty.Rebuild(nil, nil)
	_, ok = empty.Draw(reward.TierUltra, &seqSrc{})
	assert.False(t, ok)
}

func TestDraw_FailingGeneratorDropsTierAfterRerolls(t *testing.T) {
	tm := &reward.Entry{Tier: reward.TierGreat, Weight: 1, Generator: reward.GeneratorTM, Moves: []string{"tackle"},
		Descriptor: reward.Descriptor{ID: "tm", Kind: reward.KindTM}}
	p := reward.NewPool([]*reward.Entry{fixed(reward.TierCommon, "c", 1), tm})
	party := []*battler.Combatant{member("a")} // already knows tackle
	p.Rebuild(party, nil)

	src := &seqSrc{}
	opt, ok := p.Draw(reward.TierGreat, src)
	require.True(t, ok)
	assert.Equal(t, "c", opt.ID)
	assert.Len(t, src.ns, reward.MaxRerolls+1)
}

func TestDraw_TMGeneratorPicksUnknownMove(t *testing.T) {
	tm := &reward.Entry{Tier: reward.TierCommon, Weight: 1, Generator: reward.GeneratorTM, Moves: []string{"tackle", "ember"},
		Descriptor: reward.Descriptor{ID: "tm", Kind: reward.KindTM}}
	p := reward.NewPool([]*reward.Entry{tm})
	p.Rebuild([]*battler.Combatant{member("a")}, nil)
	opt, ok := p.Draw(reward.TierCommon, &seqSrc{})
	require.True(t, ok)
	assert.Equal(t, "ember", opt.Move)
	assert.Equal(t, "TM EMBER", opt.Name)
	assert.Equal(t, "tm", opt.Group)
}

func TestDraw_FrequenciesFollowWeights_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		weights := rapid.SliceOfN(rapid.IntRange(0, 10), 2, 6).Draw(rt, "weights")
		total := 0
		var entries []*reward.Entry
		for i, w := range weights {
			total += w
			entries = append(entries, fixed(reward.TierCommon, string(rune('a'+i)), w))
		}
		if total == 0 {
			entries[0].Weight, weights[0], total = 1, 1, 1
		}
		p := reward.NewPool(entries)
		p.Rebuild(nil, nil)

		const n = 20000
		counts := make(map[string]int)
		src := dice.NewSeededSource(rapid.Uint64Min(1).Draw(rt, "seed"))
		for range n {
			opt, ok := p.Draw(reward.TierCommon, src)
			require.True(rt, ok)
			counts[opt.ID]++
		}
		for i, w := range weights {
			id := string(rune('a' + i))
			if w == 0 {
				assert.Zero(rt, counts[id], "zero-weight entry %s drawn", id)
				continue
			}
			assert.InDelta(rt, float64(w)/float64(total), float64(counts[id])/n, 0.02)
		}
	})
}

func TestOffer_RedrawsCollisions(t *testing.T) {
	p := reward.NewPool([]*reward.Entry{
		{Tier: reward.TierCommon, Weight: 1, Descriptor: reward.Descriptor{ID: "potion", Group: "heal", Kind: reward.KindPotion}},
		{Tier: reward.TierCommon, Weight: 1, Descriptor: reward.Descriptor{ID: "super_potion", Group: "heal", Kind: reward.KindPotion}},
		fixed(reward.TierCommon, "ball", 1),
	})
	// tier draws 200 (common) and upgrade declines (1); entry draws: 0 potion, 1 super potion (collides), 2 ball
	src := &seqSrc{vals: []int{200, 1, 0, 200, 1, 1, 200, 1, 2}}
	got := p.Offer(nil, reward.NewHoldings(), 2, src)
	require.Len(t, got, 2)
	assert.Equal(t, "potion", got[0].ID)
	assert.Equal(t, "ball", got[1].ID)
}

func TestOffer_AcceptsDuplicateAfterRetries(t *testing.T) {
	p := reward.NewPool([]*reward.Entry{fixed(reward.TierCommon, "only", 1)})
	got := p.Offer(nil, nil, 3, dice.NewSeededSource(5))
	require.Len(t, got, 3)
	for _, o := range got {
		assert.Equal(t, "only", o.ID)
	}
}

func TestOfferLuxury_AllNonZeroEntries(t *testing.T) {
	p := reward.NewPool([]*reward.Entry{
		fixed(reward.TierLuxury, "x", 1),
		fixed(reward.TierLuxury, "y", 0),
		fixed(reward.TierLuxury, "z", 5),
	})
	got := p.OfferLuxury(nil, nil, &seqSrc{})
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].ID)
	assert.Equal(t, "z", got[1].ID)
	assert.True(t, reward.IsLuxuryWave(20, 10))
	assert.False(t, reward.IsLuxuryWave(21, 10))
	assert.False(t, reward.IsLuxuryWave(0, 10))
}

func TestHoldings(t *testing.T) {
	h := reward.NewHoldings()
	assert.Equal(t, 5, h.AddModifier(reward.ExpShare, 9))
	assert.True(t, h.Capped(reward.ExpShare))
	h.AddModifier(reward.LuckyEgg, 2)
	h.AddModifier(reward.GoldenEgg, 1)
	assert.Equal(t, 150, h.ExpBoostPercent())
	h.AddModifier(reward.GoldenPokeball, 1)
	assert.Equal(t, 4, h.OptionCount(3))

	assert.False(t, h.UseBall(capture.GreatBall))
	h.AddBalls(capture.GreatBall, 2)
	assert.True(t, h.UseBall(capture.GreatBall))
	assert.Equal(t, 1, h.BallCount(capture.GreatBall))

	c := h.Clone()
	c.AddModifier(reward.ShinyCharm, 1)
	assert.Zero(t, h.RareCount())
	assert.Equal(t, 1, c.RareCount())
}

func TestApply(t *testing.T) {
	h := reward.NewHoldings()
	m := member("a")

	_, err := reward.Apply(reward.Descriptor{Kind: reward.KindPotion, Amount: 20}, m, h)
	assert.ErrorIs(t, err, reward.ErrNoEffect)

	m.Damage(30)
	out, err := reward.Apply(reward.Descriptor{Kind: reward.KindPotion, Amount: 20}, m, h)
	require.NoError(t, err)
	assert.Equal(t, m.MaxHP()-10, m.HP)
	assert.Contains(t, out.Message, "restored by 20")

	_, err = reward.Apply(reward.Descriptor{Kind: reward.KindRevive, Percent: 50}, m, h)
	assert.ErrorIs(t, err, reward.ErrNoEffect)
	m.Damage(m.HP)
	_, err = reward.Apply(reward.Descriptor{Kind: reward.KindRevive, Percent: 50}, m, h)
	require.NoError(t, err)
	assert.Equal(t, m.MaxHP()/2, m.HP)

	m.Moves[0].PPUsed = 20
	_, err = reward.Apply(reward.Descriptor{Kind: reward.KindEther, Amount: 10}, m, h)
	require.NoError(t, err)
	assert.Equal(t, 10, m.Moves[0].PPUsed)

	out, err = reward.Apply(reward.Descriptor{Kind: reward.KindRareCandy}, m, h)
	require.NoError(t, err)
	require.NotNil(t, out.Level)
	assert.Equal(t, 21, out.Level.ToLevel)

	_, err = reward.Apply(reward.Descriptor{Kind: reward.KindTM, Move: "tackle"}, m, h)
	assert.ErrorIs(t, err, reward.ErrAlreadyKnown)
	out, err = reward.Apply(reward.Descriptor{Kind: reward.KindTM, Move: "ember"}, m, h)
	require.NoError(t, err)
	assert.Equal(t, "ember", out.Learn)

	atk := m.Stats[battler.StatAttack]
	_, err = reward.Apply(reward.Descriptor{Kind: reward.KindVitamin, Stat: battler.StatAttack, Amount: 10}, m, h)
	require.NoError(t, err)
	assert.Greater(t, m.Stats[battler.StatAttack], atk)

	_, err = reward.Apply(reward.Descriptor{Kind: reward.KindBall, Ball: capture.UltraBall, Amount: 5}, nil, h)
	require.NoError(t, err)
	assert.Equal(t, 5, h.BallCount(capture.UltraBall))

	_, err = reward.Apply(reward.Descriptor{Kind: reward.KindPotion}, nil, h)
	assert.ErrorIs(t, err, reward.ErrNoTarget)
}

func TestBestTarget_SentinelAndFirstIndex(t *testing.T) {
	party := []*battler.Combatant{member("a"), member("b"), member("c")}
	revive := reward.Descriptor{Kind: reward.KindRevive, Percent: 50}
	assert.Equal(t, reward.NoTarget, reward.BestTarget(revive, party))

	party[0].Damage(party[0].HP)
	assert.Equal(t, 0, reward.BestTarget(revive, party), "index 0 is a real match")

	potion := reward.Descriptor{Kind: reward.KindPotion, Amount: 20}
	party[1].Damage(10)
	party[2].Damage(30)
	assert.Equal(t, 2, reward.BestTarget(potion, party))
}

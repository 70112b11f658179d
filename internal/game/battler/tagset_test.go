package battler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
)

func TestTagKind_Text(t *testing.T) {
	var k battler.TagKind
	require.NoError(t, k.UnmarshalText([]byte("seeded")))
	assert.Equal(t, battler.TagSeeded, k)
	assert.Error(t, k.UnmarshalText([]byte("cursed")))
	raw, err := battler.TagTrapped.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "trapped", string(raw))
}

func TestAdd_OverlapIncrementsInsteadOfDuplicating(t *testing.T) {
	c := newMon(battler.SidePlayer, 10)
	r := &recorder{}
	e := env(c, nil, &seqSrc{}, r)

	assert.True(t, c.Tags.Add(battler.NewTag(battler.TagCritBoost, 1, "focus_energy", c.ID), e))
	assert.False(t, c.Tags.Add(battler.NewTag(battler.TagCritBoost, 1, "focus_energy", c.ID), e))
	assert.False(t, c.Tags.Add(battler.NewTag(battler.TagCritBoost, 1, "focus_energy", c.ID), e))

	assert.Equal(t, 1, c.Tags.Len())
	tag, ok := c.Tags.Get(battler.TagCritBoost)
	require.True(t, ok)
	assert.Equal(t, 2, tag.Overlaps)
	assert.Equal(t, 2, c.Tags.CritStages(), "crit stages are capped at two")
}

func TestFlinch_CancelsAndNeverOutlivesTheTurn_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := newMon(battler.SidePlayer, 20)
		e := env(c, nil, &seqSrc{}, &recorder{})
		c.Tags.Add(battler.RollTag(battler.TagFlinched, &seqSrc{}, "bite", "x"), e)
		if rapid.Bool().Draw(rt, "moved") {
			res := c.Tags.LapseAll(battler.LapseMove, e)
			assert.True(rt, res.Cancel)
		}
		c.Tags.EndTurn(e)
		assert.False(rt, c.Tags.Has(battler.TagFlinched))
	})
}

func TestConfusion_SelfHitCancels(t *testing.T) {
	c := newMon(battler.SidePlayer, 20)
	r := &recorder{}
	c.Tags.Add(battler.NewTag(battler.TagConfused, 3, "", ""), env(c, nil, &seqSrc{}, r))

	// 1 selects the self-hit branch; 14 is the damage roll.
	res := c.Tags.Lapse(battler.TagConfused, battler.LapseMove, env(c, nil, &seqSrc{vals: []int{1, 14}}, r))
	assert.True(t, res.Cancel)
	assert.True(t, res.Survives)
	assert.Less(t, c.HP, c.MaxHP())
	assert.Contains(t, r.lines, "It hurt itself in its confusion!")

	hp := c.HP
	res = c.Tags.Lapse(battler.TagConfused, battler.LapseMove, env(c, nil, &seqSrc{vals: []int{0}}, r))
	assert.False(t, res.Cancel)
	assert.Equal(t, hp, c.HP)

	res = c.Tags.Lapse(battler.TagConfused, battler.LapseMove, env(c, nil, &seqSrc{}, r))
	assert.False(t, res.Survives)
	assert.False(t, c.Tags.Has(battler.TagConfused))
	assert.Contains(t, r.lines, "SPROUTLE snapped out of confusion!")
}

func TestSeed_DrainsEighthToStandingOpponent(t *testing.T) {
	self := newMon(battler.SideEnemy, 40)
	opp := newMon(battler.SidePlayer, 40)
	opp.Damage(20)
	r := &recorder{}
	e := env(self, opp, &seqSrc{}, r)
	self.Tags.Add(battler.NewTag(battler.TagSeeded, 1, "leech_seed", opp.ID), e)

	drain := self.MaxHP() / 8
	oppHP := opp.HP
	res := self.Tags.LapseAll(battler.LapseAfterMove, e)
	assert.True(t, res.Present)
	assert.Equal(t, self.MaxHP()-drain, self.HP)
	assert.Equal(t, oppHP+drain, opp.HP)
	assert.True(t, self.Tags.Has(battler.TagSeeded), "seed persists")

	opp.Damage(opp.HP)
	self.Tags.LapseAll(battler.LapseAfterMove, e)
	assert.Zero(t, opp.HP, "fainted opponents are not healed")
}

func TestProtect_BlocksUntilTurnEnd(t *testing.T) {
	c := newMon(battler.SidePlayer, 10)
	e := env(c, nil, &seqSrc{}, &recorder{})
	c.Tags.Add(battler.NewTag(battler.TagProtected, 0, "protect", c.ID), e)

	for range 2 {
		res := c.Tags.Lapse(battler.TagProtected, battler.LapseCustom, e)
		assert.True(t, res.Blocked)
	}
	c.Tags.EndTurn(e)
	assert.False(t, c.Tags.Has(battler.TagProtected))
}

func TestFrenzyExpiry_Confuses(t *testing.T) {
	c := newMon(battler.SidePlayer, 10)
	r := &recorder{}
	e := env(c, nil, &seqSrc{}, r)
	c.Tags.Add(battler.NewTag(battler.TagFrenzy, 2, "thrash", c.ID), e)

	assert.True(t, c.Tags.Lapse(battler.TagFrenzy, battler.LapseCustom, e).Survives)
	assert.False(t, c.Tags.Lapse(battler.TagFrenzy, battler.LapseCustom, e).Survives)
	assert.False(t, c.Tags.Has(battler.TagFrenzy))
	tag, ok := c.Tags.Get(battler.TagConfused)
	require.True(t, ok)
	assert.Equal(t, 2, tag.Turns, "1d3+1 with the lowest roll")
}

func TestFrenzyForcedRemoval_DoesNotConfuse(t *testing.T) {
	c := newMon(battler.SidePlayer, 10)
	e := env(c, nil, &seqSrc{}, &recorder{})
	c.Tags.Add(battler.NewTag(battler.TagFrenzy, 2, "thrash", c.ID), e)
	c.Tags.Remove(battler.TagFrenzy, e)
	assert.False(t, c.Tags.Has(battler.TagConfused))
}

func TestDrowsyExpiry_Sleeps(t *testing.T) {
	c := newMon(battler.SideEnemy, 10)
	r := &recorder{}
	e := env(c, nil, &seqSrc{}, r)
	c.Tags.Add(battler.RollTag(battler.TagDrowsy, &seqSrc{}, "yawn", "x"), e)

	c.Tags.EndTurn(e)
	assert.False(t, c.Status.Active())
	c.Tags.EndTurn(e)
	assert.Equal(t, battler.StatusSleep, c.Status.Effect)
	assert.Contains(t, r.lines, "Foe SPROUTLE fell asleep!")
}

func TestTrapped_BlocksSwitchAndDamages(t *testing.T) {
	c := newMon(battler.SidePlayer, 50)
	r := &recorder{}
	e := env(c, nil, &seqSrc{}, r)
	c.Tags.Add(battler.NewTag(battler.TagTrapped, 3, "fire_spin", "x"), e)
	assert.True(t, c.Tags.BlocksSwitch())

	c.Tags.EndTurn(e)
	assert.Equal(t, c.MaxHP()-c.MaxHP()/16, c.HP)
	assert.Contains(t, r.lines, "SPROUTLE is hurt by FIRE SPIN!")
	c.Tags.EndTurn(e)
	c.Tags.EndTurn(e)
	assert.False(t, c.Tags.BlocksSwitch())
	assert.Contains(t, r.lines, "SPROUTLE was freed from FIRE SPIN!")
}

func TestLapseAll_CancelStopsFurtherMoveLapses(t *testing.T) {
	c := newMon(battler.SidePlayer, 10)
	e := env(c, nil, &seqSrc{}, &recorder{})
	c.Tags.Add(battler.NewTag(battler.TagRecharging, 1, "hyper_beam", c.ID), e)
	c.Tags.Add(battler.NewTag(battler.TagConfused, 3, "", ""), e)

	res := c.Tags.LapseAll(battler.LapseMove, e)
	assert.True(t, res.Cancel)
	tag, _ := c.Tags.Get(battler.TagConfused)
	assert.Equal(t, 3, tag.Turns, "confusion was not checked")
	assert.False(t, c.Tags.Has(battler.TagRecharging))
}

func TestHidden(t *testing.T) {
	c := newMon(battler.SidePlayer, 10)
	e := env(c, nil, &seqSrc{}, &recorder{})
	_, hidden := c.Tags.Hidden()
	assert.False(t, hidden)
	c.Tags.Add(battler.NewTag(battler.TagUnderground, 1, "dig", c.ID), e)
	kind, hidden := c.Tags.Hidden()
	assert.True(t, hidden)
	assert.Equal(t, battler.TagUnderground, kind)
	c.Tags.LapseAll(battler.LapseMoveEffect, e)
	_, hidden = c.Tags.Hidden()
	assert.False(t, hidden)
}

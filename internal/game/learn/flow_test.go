package learn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/exp"
	"github.com/cory-johannsen/monbattle/internal/game/learn"
)

func fullMon() *battler.Combatant {
	return battler.New(battler.Params{
		Species: "emberkit", Name: "EMBERKIT", Types: []string{"fire"}, Level: 10, Growth: exp.MediumSlow,
		Base: battler.Stats{39, 52, 43, 60, 50, 65},
		Moves: []battler.MoveSlot{
			{Move: "scratch", MaxPP: 35}, {Move: "growl", MaxPP: 40},
			{Move: "ember", MaxPP: 25}, {Move: "sand_attack", MaxPP: 15},
		},
	})
}

type transcript struct{ lines []string }

func (t *transcript) say(s string) { t.lines = append(t.lines, s) }

func TestDirect(t *testing.T) {
	c := battler.New(battler.Params{Name: "A", Level: 5, Growth: exp.Fast, Moves: []battler.MoveSlot{{Move: "tackle", MaxPP: 35}}})
	assert.Equal(t, learn.ResultKnown, learn.Direct(c, "tackle", 35))
	assert.Equal(t, learn.ResultLearned, learn.Direct(c, "ember", 25))
	assert.Equal(t, 1, c.MoveIndex("ember"))

	full := fullMon()
	assert.Equal(t, learn.ResultFull, learn.Direct(full, "slash", 20))
	assert.False(t, full.KnowsMove("slash"))
}

func TestFlow_ReplaceMove(t *testing.T) {
	ctx := context.Background()
	mon := fullMon()
	tr := &transcript{}
	f := learn.New(mon, "fire_spin", 15, nil, tr.say)
	f.Open()
	assert.Equal(t, learn.StateOffer, f.State())
	assert.Equal(t, "Should a move be forgotten and replaced with FIRE SPIN?", tr.lines[len(tr.lines)-1])

	require.NoError(t, f.Answer(ctx, true))
	assert.Equal(t, learn.StateChoose, f.State())
	require.NoError(t, f.Choose(ctx, 1))

	assert.True(t, f.Done())
	assert.True(t, f.Learned())
	assert.Equal(t, "growl", f.Forgotten())
	assert.Equal(t, battler.MoveSlot{Move: "fire_spin", MaxPP: 15}, mon.Moves[1])
	assert.Contains(t, tr.lines, "1, 2, and… Poof! EMBERKIT forgot GROWL.")
	assert.Contains(t, tr.lines, "And… EMBERKIT learned FIRE SPIN!")
}

func TestFlow_CancelThenStop(t *testing.T) {
	ctx := context.Background()
	mon := fullMon()
	before := append([]battler.MoveSlot(nil), mon.Moves...)
	tr := &transcript{}
	f := learn.New(mon, "fire_spin", 15, func(string) string { return "Fire Spin" }, tr.say)

	require.NoError(t, f.Answer(ctx, true))
	require.NoError(t, f.Choose(ctx, learn.CancelSlot))
	assert.Equal(t, learn.StateStop, f.State())
	assert.Equal(t, "Stop trying to teach Fire Spin?", tr.lines[len(tr.lines)-1])

	require.NoError(t, f.Answer(ctx, true))
	assert.True(t, f.Done())
	assert.False(t, f.Learned())
	assert.Equal(t, before, mon.Moves)
	assert.Equal(t, "EMBERKIT did not learn Fire Spin.", tr.lines[len(tr.lines)-1])
}

func TestFlow_DeclineThenRetry(t *testing.T) {
	ctx := context.Background()
	f := learn.New(fullMon(), "slash", 20, nil, func(string) {})
	require.NoError(t, f.Answer(ctx, false))
	assert.Equal(t, learn.StateStop, f.State())
	require.NoError(t, f.Answer(ctx, false))
	assert.Equal(t, learn.StateOffer, f.State())
	require.NoError(t, f.Answer(ctx, true))
	require.NoError(t, f.Choose(ctx, learn.NoSlot))
	assert.Equal(t, learn.StateStop, f.State())
}

func TestFlow_InvalidSlot(t *testing.T) {
	ctx := context.Background()
	f := learn.New(fullMon(), "slash", 20, nil, func(string) {})
	require.NoError(t, f.Answer(ctx, true))
	assert.ErrorIs(t, f.Choose(ctx, 7), learn.ErrInvalidSlot)
	assert.Equal(t, learn.StateChoose, f.State())
	assert.Error(t, f.Choose(context.Background(), -3))
}

func TestFlow_ChooseOutOfState(t *testing.T) {
	f := learn.New(fullMon(), "slash", 20, nil, func(string) {})
	assert.Error(t, f.Choose(context.Background(), 0), "choose is only valid after accepting")
	assert.Equal(t, learn.StateOffer, f.State())
}

// Any sequence of answers terminates the moment a terminal state is reached and
// the move list only changes on a learn.
func TestFlow_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		mon := fullMon()
		before := append([]battler.MoveSlot(nil), mon.Moves...)
		f := learn.New(mon, "slash", 20, nil, func(string) {})
		for step := 0; step < 50 && !f.Done(); step++ {
			switch f.State() {
			case learn.StateChoose:
				slot := rapid.SampledFrom([]int{0, 1, 2, 3, learn.CancelSlot, learn.NoSlot}).Draw(rt, "slot")
				require.NoError(rt, f.Choose(ctx, slot))
			default:
				require.NoError(rt, f.Answer(ctx, rapid.Bool().Draw(rt, "yes")))
			}
		}
		if !f.Done() {
			return
		}
		if f.Learned() {
			assert.True(rt, mon.KnowsMove("slash"))
			assert.False(rt, mon.KnowsMove(f.Forgotten()))
		} else {
			assert.Equal(rt, before, mon.Moves)
		}
	})
}

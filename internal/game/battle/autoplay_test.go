package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/monbattle/internal/game/battle"
	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/learn"
	"github.com/cory-johannsen/monbattle/internal/game/reward"
)

// captureReply returns a reply func storing into v.
func captureReply[T any](v *T) func(T) { return func(x T) { *v = x } }

func TestAutoPlayer_CommandPicksStrongestUsable(t *testing.T) {
	st := testStore(50)
	ap := battle.NewAutoPlayer(st)
	me := fighter(st, "Alpha", 5, "growl", "tackle", "crush")
	foe := fighter(st, "Zeta", 5, "tackle")

	var got battle.Command
	ap.Command(battle.CommandRequest{Active: me, Foe: foe}, captureReply(&got))
	assert.Equal(t, battle.Fight(2), got)

	me.Moves[2].PPUsed = me.Moves[2].MaxPP
	ap.Command(battle.CommandRequest{Active: me, Foe: foe}, captureReply(&got))
	assert.Equal(t, battle.Fight(1), got)
}

func TestAutoPlayer_LearnChoices(t *testing.T) {
	st := testStore(50)
	ap := battle.NewAutoPlayer(st)
	me := fighter(st, "Alpha", 7, "crush", "growl", "tackle", "protect")
	ember, _ := st.Move("ember")
	growl, _ := st.Move("growl")

	var yes bool
	ap.Confirm(battle.ConfirmRequest{Kind: battle.ConfirmReplaceMove, Member: me, Move: ember}, captureReply(&yes))
	assert.True(t, yes)
	ap.Confirm(battle.ConfirmRequest{Kind: battle.ConfirmReplaceMove, Member: me, Move: growl}, captureReply(&yes))
	assert.False(t, yes)

	var slot int
	ap.ForgetMove(battle.ForgetRequest{Member: me, Move: ember}, captureReply(&slot))
	assert.Equal(t, 1, slot, "growl is the first weakest move")
	ap.ForgetMove(battle.ForgetRequest{Member: me, Move: growl}, captureReply(&slot))
	assert.Equal(t, learn.CancelSlot, slot)
}

func TestAutoPlayer_RewardAndRelease(t *testing.T) {
	st := testStore(50)
	ap := battle.NewAutoPlayer(st)
	healthy := fighter(st, "Alpha", 5, "crush")
	potion := reward.Option{Descriptor: reward.Descriptor{ID: "potion", Kind: reward.KindPotion, Amount: 20}}
	balls := reward.Option{Descriptor: reward.Descriptor{ID: "poke_ball", Kind: reward.KindBall, Amount: 5}}

	var choice int
	ap.Reward(battle.RewardRequest{Options: []reward.Option{potion, balls}, Party: []*battler.Combatant{healthy}}, captureReply(&choice))
	assert.Equal(t, 1, choice, "a potion helps nobody at full health")
	ap.Reward(battle.RewardRequest{Options: []reward.Option{potion}, Party: []*battler.Combatant{healthy}}, captureReply(&choice))
	assert.Equal(t, battle.SkipReward, choice)

	hurt := fighter(st, "Beta", 5, "crush")
	hurt.HP = 3
	party := []*battler.Combatant{healthy, hurt}
	ap.PartyTarget(battle.TargetRequest{Option: potion, Party: party}, captureReply(&choice))
	assert.Equal(t, 1, choice)

	low := fighter(st, "Gamma", 3, "crush")
	party = []*battler.Combatant{healthy, low}
	ap.Release(battle.ReleaseRequest{Party: party, Newcomer: fighter(st, "New", 10, "crush")}, captureReply(&choice))
	assert.Equal(t, 1, choice)
	ap.Release(battle.ReleaseRequest{Party: party, Newcomer: fighter(st, "New", 2, "crush")}, captureReply(&choice))
	assert.Equal(t, reward.NoTarget, choice)
}

package battle_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/monbattle/internal/config"
	"github.com/cory-johannsen/monbattle/internal/game/battle"
	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/data"
	"github.com/cory-johannsen/monbattle/internal/game/exp"
	"github.com/cory-johannsen/monbattle/internal/game/move"
	"github.com/cory-johannsen/monbattle/internal/game/reward"
)

// highSrc replays vals, then answers n-1 for every draw: no crits, maximum
// variance, every hit check passes and every chance roll fails.
type highSrc struct {
	vals []int
	i    int
}

func (s *highSrc) Intn(n int) int {
	if s.i < len(s.vals) {
		v := s.vals[s.i]
		s.i++
		return min(max(v, 0), n-1)
	}
	return n - 1
}

var maxIVs = battler.Stats{31, 31, 31, 31, 31, 31}

// testStore holds two species. "zeta" sorts last, so highSrc always spawns it.
// At level 5 a zeta has 42 HP, outspeeds a level 5 alpha and deals it 5
// damage per tackle; alpha's crush deals 45 and hyper beam 35.
func testStore(wildBaseExp int) *data.Store {
	st := data.NewStore()
	for _, d := range []*move.Def{
		{ID: "tackle", Name: "Tackle", Type: "normal", Category: move.Physical, Power: 40, Accuracy: move.AlwaysHits, PP: 35},
		{ID: "crush", Name: "Crush", Type: "normal", Category: move.Physical, Power: 200, Accuracy: move.AlwaysHits, PP: 10},
		{ID: "quick_attack", Name: "Quick Attack", Type: "normal", Category: move.Physical, Power: 40, Accuracy: move.AlwaysHits, PP: 30, Priority: 1},
		{ID: "ember", Name: "Ember", Type: "fire", Category: move.Special, Power: 40, Accuracy: move.AlwaysHits, PP: 25},
		{ID: "growl", Name: "Growl", Type: "normal", Category: move.Status, Accuracy: 100, PP: 40,
			Effects: []move.Effect{{Kind: move.EffectStatChange, Stage: battler.StageAttack, Stages: -1}}},
		{ID: "protect", Name: "Protect", Type: "normal", Category: move.Status, Accuracy: move.AlwaysHits, PP: 10, Priority: 4,
			Effects: []move.Effect{{Kind: move.EffectTag, Self: true, Tag: battler.TagProtected}}},
		{ID: "fly", Name: "Fly", Type: "flying", Category: move.Physical, Power: 90, Accuracy: move.AlwaysHits, PP: 15, Charge: battler.TagFlying},
		{ID: "hyper_beam", Name: "Hyper Beam", Type: "normal", Category: move.Special, Power: 150, Accuracy: move.AlwaysHits, PP: 5, Recharge: true},
		{ID: "thrash", Name: "Thrash", Type: "normal", Category: move.Physical, Power: 120, Accuracy: move.AlwaysHits, PP: 10, Frenzy: true},
		{ID: battle.StruggleMove, Name: "Struggle", Type: "typeless", Category: move.Physical, Power: 50, Accuracy: move.AlwaysHits, PP: 1,
			Effects: []move.Effect{{Kind: move.EffectRecoil, Percent: 25}}},
	} {
		st.AddMove(d)
	}
	st.AddSpecies(&data.Species{
		ID: "alpha", Name: "Alpha", Types: []string{"normal"}, Growth: exp.MediumFast, CatchRate: 45, BaseExp: 64,
		Base: data.StatBlock{HP: 50, Attack: 80, Defense: 50, SpAtk: 80, SpDef: 50, Speed: 60},
		Learnset: []data.LevelMove{
			{Level: 1, Move: "crush"}, {Level: 1, Move: "growl"}, {Level: 6, Move: "quick_attack"}, {Level: 7, Move: "ember"},
		},
	})
	st.AddSpecies(&data.Species{
		ID: "zeta", Name: "Zeta", Types: []string{"bug"}, Growth: exp.MediumFast, CatchRate: 45, BaseExp: wildBaseExp,
		Base:     data.StatBlock{HP: 255, Attack: 20, Defense: 20, SpAtk: 20, SpDef: 20, Speed: 200},
		Learnset: []data.LevelMove{{Level: 1, Move: "tackle"}},
	})
	return st
}

// fighter builds a party member of species alpha with the given moves.
func fighter(st *data.Store, name string, level int, moves ...string) *battler.Combatant {
	var slots []battler.MoveSlot
	for _, id := range moves {
		d, _ := st.Move(id)
		slots = append(slots, battler.MoveSlot{Move: id, MaxPP: d.PP})
	}
	sp, _ := st.Species("alpha")
	return battler.New(battler.Params{
		Species: sp.ID, Name: name, Types: sp.Types, Side: battler.SidePlayer, Level: level, Growth: sp.Growth,
		Base: sp.Base.Stats(), IVs: maxIVs, Moves: slots, CatchRate: sp.CatchRate, BaseExp: sp.BaseExp,
	})
}

func testConfig() config.BattleConfig {
	return config.BattleConfig{
		Mode:          config.ModeDevelopment,
		RewardOptions: 3,
		// Far away so the luxury tier never interferes.
		LuxuryInterval: 1000,
		MaxPartySize:   6,
		StartingLevel:  5,
	}
}

func potionPool() *reward.Pool {
	return reward.NewPool([]*reward.Entry{{
		Tier: reward.TierCommon, Weight: 1,
		Descriptor: reward.Descriptor{ID: "potion", Name: "Potion", Kind: reward.KindPotion, Amount: 20},
	}})
}

// recorder is a Presenter that completes immediately and keeps everything shown.
type recorder struct {
	messages []string
	effects  []battle.Effect
	onShow   func(text string)
}

func (r *recorder) ShowMessage(text string, _ battle.MessageOptions, done func()) {
	r.messages = append(r.messages, text)
	if r.onShow != nil {
		r.onShow(text)
	}
	done()
}

func (r *recorder) PlayEffect(fx battle.Effect, done func()) {
	r.effects = append(r.effects, fx)
	done()
}

// script answers decisions from queued replies. Commands with nothing queued
// are parked in held; rewards default to skipping; everything else falls
// back to the AutoPlayer.
type script struct {
	auto *battle.AutoPlayer

	commands []battle.Command
	switches []int
	confirms []bool
	forgets  []int
	rewards  []int
	targets  []int
	releases []int

	commandReqs []battle.CommandRequest
	switchReqs  []battle.SwitchRequest
	confirmReqs []battle.ConfirmRequest
	rewardReqs  []battle.RewardRequest
	targetReqs  []battle.TargetRequest
	releaseReqs []battle.ReleaseRequest

	held func(battle.Command)
}

func pop[T any](q *[]T) (T, bool) {
	var zero T
	if len(*q) == 0 {
		return zero, false
	}
	v := (*q)[0]
	*q = (*q)[1:]
	return v, true
}

func (s *script) Command(req battle.CommandRequest, reply func(battle.Command)) {
	s.commandReqs = append(s.commandReqs, req)
	if c, ok := pop(&s.commands); ok {
		reply(c)
		return
	}
	s.held = reply
}

func (s *script) Switch(req battle.SwitchRequest, reply func(int)) {
	s.switchReqs = append(s.switchReqs, req)
	if v, ok := pop(&s.switches); ok {
		reply(v)
		return
	}
	s.auto.Switch(req, reply)
}

func (s *script) Confirm(req battle.ConfirmRequest, reply func(bool)) {
	s.confirmReqs = append(s.confirmReqs, req)
	if v, ok := pop(&s.confirms); ok {
		reply(v)
		return
	}
	s.auto.Confirm(req, reply)
}

func (s *script) ForgetMove(req battle.ForgetRequest, reply func(int)) {
	if v, ok := pop(&s.forgets); ok {
		reply(v)
		return
	}
	s.auto.ForgetMove(req, reply)
}

func (s *script) Reward(req battle.RewardRequest, reply func(int)) {
	s.rewardReqs = append(s.rewardReqs, req)
	if v, ok := pop(&s.rewards); ok {
		reply(v)
		return
	}
	reply(battle.SkipReward)
}

func (s *script) PartyTarget(req battle.TargetRequest, reply func(int)) {
	s.targetReqs = append(s.targetReqs, req)
	if v, ok := pop(&s.targets); ok {
		reply(v)
		return
	}
	s.auto.PartyTarget(req, reply)
}

func (s *script) Release(req battle.ReleaseRequest, reply func(int)) {
	s.releaseReqs = append(s.releaseReqs, req)
	if v, ok := pop(&s.releases); ok {
		reply(v)
		return
	}
	s.auto.Release(req, reply)
}

// answer replies to the parked command.
func (s *script) answer(c battle.Command) {
	h := s.held
	s.held = nil
	h(c)
}

type rig struct {
	e     *battle.Engine
	s     *script
	r     *recorder
	store *data.Store
	logs  *observer.ObservedLogs
}

func newRig(t *testing.T, cfg config.BattleConfig, st *data.Store, party []*battler.Combatant, extra ...battle.Option) *rig {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	rg := &rig{s: &script{auto: battle.NewAutoPlayer(st)}, r: &recorder{}, store: st, logs: logs}
	opts := append([]battle.Option{
		battle.WithSource(&highSrc{}),
		battle.WithDecisions(rg.s),
		battle.WithPresenter(rg.r),
		battle.WithLogger(zap.New(core)),
	}, extra...)
	rg.e = battle.NewEngine(cfg, st, potionPool(), party, opts...)
	return rg
}

// pumpUntil runs queued callbacks one at a time until cond holds.
func (rg *rig) pumpUntil(t *testing.T, cond func() bool) {
	t.Helper()
	for range 100000 {
		if cond() {
			return
		}
		if rg.e.Pump(1) == 0 {
			break
		}
	}
	require.True(t, cond(), "condition not reached: current=%q queued=%v outcome=%s",
		rg.e.Current(), rg.e.Queued(), rg.e.Outcome())
}

// awaitCommand pumps until the engine waits for a command in wave.
func (rg *rig) awaitCommand(t *testing.T, wave int) {
	t.Helper()
	rg.pumpUntil(t, func() bool {
		return rg.s.held != nil && rg.e.Current() == "command" && rg.e.Battle().Wave == wave
	})
}

// drain pumps until nothing is left to run.
func (rg *rig) drain(t *testing.T) {
	t.Helper()
	rg.pumpUntil(t, rg.e.Done)
}

func (rg *rig) said(text string) bool {
	for _, m := range rg.r.messages {
		if m == text {
			return true
		}
	}
	return false
}

// index returns the position of the first message equal to text, or -1.
func (rg *rig) index(text string) int {
	for i, m := range rg.r.messages {
		if m == text {
			return i
		}
	}
	return -1
}

package battler_test

import (
	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/exp"
)

// seqSrc replays vals in order, clamping each to [0, n).
type seqSrc struct {
	vals []int
	i    int
}

func (s *seqSrc) Intn(n int) int {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.i%len(s.vals)]
	s.i++
	if v >= n {
		return n - 1
	}
	return v
}

func newMon(side battler.Side, level int) *battler.Combatant {
	return battler.New(battler.Params{
		Species: "sproutle",
		Name:    "SPROUTLE",
		Types:   []string{"grass"},
		Side:    side,
		Level:   level,
		Growth:  exp.MediumFast,
		Base:    battler.Stats{45, 49, 49, 65, 65, 45},
		IVs:     battler.Stats{15, 15, 15, 15, 15, 15},
		Moves: []battler.MoveSlot{
			{Move: "tackle", MaxPP: 35},
			{Move: "growl", MaxPP: 40},
		},
		CatchRate: 45,
		BaseExp:   64,
	})
}

type recorder struct{ lines []string }

func (r *recorder) say(text string) { r.lines = append(r.lines, text) }

func env(self, opp *battler.Combatant, src *seqSrc, r *recorder) battler.TagEnv {
	return battler.TagEnv{Self: self, Opponent: opp, Rand: src, Say: r.say}
}

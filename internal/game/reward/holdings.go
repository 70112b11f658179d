package reward

import (
	"fmt"

	"github.com/cory-johannsen/monbattle/internal/game/capture"
)

// Modifier is a persistent held effect the player accumulates in stacks.
type Modifier string

const (
	ExpShare       Modifier = "exp_share"
	LuckyEgg       Modifier = "lucky_egg"
	GoldenEgg      Modifier = "golden_egg"
	ShinyCharm     Modifier = "shiny_charm"
	GoldenPokeball Modifier = "golden_pokeball"
)

var maxStacks = map[Modifier]int{
	ExpShare:       5,
	LuckyEgg:       99,
	GoldenEgg:      99,
	ShinyCharm:     4,
	GoldenPokeball: 3,
}

// MaxStacks returns the stack cap of m, or 0 for an unknown modifier.
func MaxStacks(m Modifier) int { return maxStacks[m] }

// UnmarshalText validates the modifier name.
func (m *Modifier) UnmarshalText(text []byte) error {
	mod := Modifier(text)
	if _, ok := maxStacks[mod]; !ok {
		return fmt.Errorf("reward: unknown modifier %q", string(text))
	}
	*m = mod
	return nil
}

// Percent exp bonus per stack of the exp boosters.
const (
	LuckyEggPercent  = 25
	GoldenEggPercent = 100
)

// Holdings is the player's accumulated modifiers and ball inventory.
// It is owned by the engine worker and not safe for concurrent use.
type Holdings struct {
	Modifiers map[Modifier]int       `json:"modifiers"`
	Balls     [capture.BallCount]int `json:"balls"`
}

// NewHoldings returns empty holdings.
func NewHoldings() *Holdings {
	return &Holdings{Modifiers: make(map[Modifier]int)}
}

// Stacks returns the stack count of m.
func (h *Holdings) Stacks(m Modifier) int { return h.Modifiers[m] }

// Capped reports whether m is already at its stack cap.
func (h *Holdings) Capped(m Modifier) bool { return h.Modifiers[m] >= maxStacks[m] }

// AddModifier adds up to n stacks of m, clamped to the cap, and returns the
// number actually added.
func (h *Holdings) AddModifier(m Modifier, n int) int {
	if h.Modifiers == nil {
		h.Modifiers = make(map[Modifier]int)
	}
	added := max(0, min(n, maxStacks[m]-h.Modifiers[m]))
	h.Modifiers[m] += added
	return added
}

// AddBalls adds n balls of type b.
func (h *Holdings) AddBalls(b capture.Ball, n int) { h.Balls[b] += n }

// BallCount returns how many balls of type b are held.
func (h *Holdings) BallCount(b capture.Ball) int { return h.Balls[b] }

// UseBall consumes one ball of type b.
//
// Postcondition: returns false and changes nothing when none are held.
func (h *Holdings) UseBall(b capture.Ball) bool {
	if h.Balls[b] <= 0 {
		return false
	}
	h.Balls[b]--
	return true
}

// ExpBoostPercent returns the combined exp booster bonus.
func (h *Holdings) ExpBoostPercent() int {
	return h.Stacks(LuckyEgg)*LuckyEggPercent + h.Stacks(GoldenEgg)*GoldenEggPercent
}

// RareCount is the rare-occurrence count that lowers the tier upgrade chance.
func (h *Holdings) RareCount() int { return h.Stacks(ShinyCharm) }

// OptionCount returns how many reward options to offer given the configured base.
func (h *Holdings) OptionCount(base int) int { return base + h.Stacks(GoldenPokeball) }

// Clone returns a deep copy.
func (h *Holdings) Clone() *Holdings {
	c := &Holdings{Modifiers: make(map[Modifier]int, len(h.Modifiers)), Balls: h.Balls}
	for k, v := range h.Modifiers {
		c.Modifiers[k] = v
	}
	return c
}

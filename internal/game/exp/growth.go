// Package exp implements experience awards, growth-rate curves and level
// progression. Everything here is deterministic: no function draws from an
// RNG, so the same award from the same starting state always lands on the
// same level and leftover experience.
package exp

import (
	"fmt"
	"strings"
)

// MaxLevel is the level cap; experience stops accruing once reached.
const MaxLevel = 100

// GrowthRate selects the curve mapping level to total experience required.
type GrowthRate int

const (
	MediumFast GrowthRate = iota
	Erratic
	Fluctuating
	MediumSlow
	Fast
	Slow
)

var growthNames = map[GrowthRate]string{
	MediumFast:  "medium_fast",
	Erratic:     "erratic",
	Fluctuating: "fluctuating",
	MediumSlow:  "medium_slow",
	Fast:        "fast",
	Slow:        "slow",
}

// String returns the YAML name of the curve.
func (g GrowthRate) String() string {
	if n, ok := growthNames[g]; ok {
		return n
	}
	return fmt.Sprintf("GrowthRate(%d)", int(g))
}

// UnmarshalText parses a curve name such as "medium_slow".
func (g *GrowthRate) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for rate, n := range growthNames {
		if n == name {
			*g = rate
			return nil
		}
	}
	return fmt.Errorf("exp: unknown growth rate %q", string(text))
}

// MarshalText returns the curve name.
func (g GrowthRate) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// TotalForLevel returns the cumulative experience required to reach level.
//
// Precondition: 1 <= level <= MaxLevel.
// Postcondition: TotalForLevel(1) == 0; strictly increasing in level.
func TotalForLevel(rate GrowthRate, level int) int {
	if level < 1 || level > MaxLevel {
		panic(fmt.Sprintf("exp: TotalForLevel called with level %d", level))
	}
	if level == 1 {
		return 0
	}
	n := level
	cube := n * n * n
	switch rate {
	case Erratic:
		switch {
		case n < 50:
			return cube * (100 - n) / 50
		case n < 68:
			return cube * (150 - n) / 100
		case n < 98:
			return cube * ((1911 - 10*n) / 3) / 500
		default:
			return cube * (160 - n) / 100
		}
	case Fast:
		return 4 * cube / 5
	case MediumFast:
		return cube
	case MediumSlow:
		return 6*cube/5 - 15*n*n + 100*n - 140
	case Slow:
		return 5 * cube / 4
	case Fluctuating:
		switch {
		case n < 15:
			return cube * ((n+1)/3 + 24) / 50
		case n < 36:
			return cube * (n + 14) / 50
		default:
			return cube * (n/2 + 32) / 50
		}
	default:
		panic(fmt.Sprintf("exp: unknown growth rate %d", int(rate)))
	}
}

// LevelFor returns the highest level whose threshold total has reached.
//
// Postcondition: TotalForLevel(result) <= total, and result == MaxLevel or
// TotalForLevel(result+1) > total.
func LevelFor(rate GrowthRate, total int) int {
	level := 1
	for level < MaxLevel && TotalForLevel(rate, level+1) <= total {
		level++
	}
	return level
}

// Progress is the outcome of adding experience to one combatant.
type Progress struct {
	FromLevel int
	ToLevel   int
	Exp       int // total experience after the award
}

// Leveled reports whether at least one level boundary was crossed.
func (p Progress) Leveled() bool { return p.ToLevel > p.FromLevel }

// Gain adds amount to total and walks every crossed level boundary.
// One award may cross several boundaries; the loop checks each in turn.
// At MaxLevel experience is clamped to the cap threshold.
//
// Precondition: 1 <= level <= MaxLevel; amount >= 0.
// Postcondition: result.ToLevel >= level; result.Exp >= total unless clamped at the cap.
func Gain(rate GrowthRate, level, total, amount int) Progress {
	if amount < 0 {
		panic(fmt.Sprintf("exp: Gain called with negative amount %d", amount))
	}
	p := Progress{FromLevel: level, ToLevel: level, Exp: total + amount}
	for p.ToLevel < MaxLevel && p.Exp >= TotalForLevel(rate, p.ToLevel+1) {
		p.ToLevel++
	}
	if p.ToLevel == MaxLevel {
		if capExp := TotalForLevel(rate, MaxLevel); p.Exp > capExp {
			p.Exp = capExp
		}
	}
	return p
}

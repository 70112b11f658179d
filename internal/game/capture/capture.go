// Package capture resolves ball throws against wild combatants.
package capture

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/dice"
)

// Ball is a capture device tier.
type Ball int

const (
	PokeBall Ball = iota
	GreatBall
	UltraBall
	RogueBall
	MasterBall
)

// BallCount is the number of ball tiers.
const BallCount = int(MasterBall) + 1

var ballNames = [...]string{"poke_ball", "great_ball", "ultra_ball", "rogue_ball", "master_ball"}
var ballLabels = [...]string{"POKé BALL", "GREAT BALL", "ULTRA BALL", "ROGUE BALL", "MASTER BALL"}

// String returns the display name of the ball.
func (b Ball) String() string {
	if b < PokeBall || b > MasterBall {
		return fmt.Sprintf("Ball(%d)", int(b))
	}
	return ballLabels[b]
}

// UnmarshalText parses a ball name such as "great_ball".
func (b *Ball) UnmarshalText(text []byte) error {
	for i, n := range ballNames {
		if n == string(text) {
			*b = Ball(i)
			return nil
		}
	}
	return fmt.Errorf("capture: unknown ball %q", string(text))
}

// MarshalText returns the ball name.
func (b Ball) MarshalText() ([]byte, error) {
	if b < PokeBall || b > MasterBall {
		return nil, fmt.Errorf("capture: invalid ball %d", int(b))
	}
	return []byte(ballNames[b]), nil
}

// Guaranteed reports whether the ball skips the shake checks.
func (b Ball) Guaranteed() bool { return b == MasterBall }

// Multiplier returns the catch-rate multiplier of the ball.
// The guaranteed ball returns 0; callers must check Guaranteed first.
func (b Ball) Multiplier() float64 {
	switch b {
	case PokeBall:
		return 1
	case GreatBall:
		return 1.5
	case UltraBall:
		return 2
	case RogueBall:
		return 3
	default:
		return 0
	}
}

// StatusMultiplier returns the catch bonus of a status condition.
func StatusMultiplier(s battler.StatusEffect) float64 {
	switch s {
	case battler.StatusNone:
		return 1
	case battler.StatusSleep, battler.StatusFreeze:
		return 2.5
	default:
		return 1.5
	}
}

// MinCatchRate replaces a missing or non-positive species catch rate.
const MinCatchRate = 3

// Shakes is the number of shake checks a capture must survive.
const Shakes = 3

// shakeRange is the exclusive upper bound of one shake draw.
const shakeRange = 65536

// Params are the inputs of one throw.
type Params struct {
	MaxHP     int
	HP        int
	CatchRate int
	Ball      Ball
	Status    battler.StatusEffect
}

// Rate computes a = round(((3M-2H)·R·B)/(3M) · S).
//
// Precondition: p.MaxHP > 0.
func Rate(p Params) int {
	rate := p.CatchRate
	if rate <= 0 {
		rate = MinCatchRate
	}
	m3 := float64(3 * p.MaxHP)
	h2 := float64(2 * p.HP)
	return int(math.Round(((m3 - h2) * float64(rate) * p.Ball.Multiplier() / m3) * StatusMultiplier(p.Status)))
}

// ShakeThreshold computes b = round(65536 / (255/a)^0.25).
//
// Postcondition: a <= 0 → 0; a >= 255 → 65536; otherwise 0 < result < 65536.
func ShakeThreshold(a int) int {
	switch {
	case a <= 0:
		return 0
	case a >= 255:
		return shakeRange
	}
	return int(math.Round(shakeRange / math.Sqrt(math.Sqrt(255/float64(a)))))
}

// Probability returns the chance that a throw with p captures, (b/65536)^3.
func Probability(p Params) float64 {
	if p.Ball.Guaranteed() {
		return 1
	}
	return math.Pow(float64(ShakeThreshold(Rate(p)))/shakeRange, Shakes)
}

// Result is the outcome of one throw.
type Result struct {
	Captured bool
	// Shakes counts the shake checks that succeeded.
	Shakes int
	// Threshold is the per-shake b value; 0 for guaranteed throws.
	Threshold int
}

// Attempt resolves one throw. A guaranteed ball never draws; otherwise up to
// three draws of Intn(65536) are made and the first failure ends the attempt.
//
// Precondition: p.MaxHP > 0; src must be non-nil.
// Postcondition: result.Captured iff result.Shakes == Shakes or p.Ball.Guaranteed().
func Attempt(p Params, src dice.Source) Result {
	if p.Ball.Guaranteed() {
		return Result{Captured: true, Shakes: Shakes}
	}
	b := ShakeThreshold(Rate(p))
	res := Result{Threshold: b}
	for range Shakes {
		if src.Intn(shakeRange) >= b {
			return res
		}
		res.Shakes++
	}
	res.Captured = true
	return res
}

// ParamsFor builds throw inputs from the wild combatant being targeted.
func ParamsFor(target *battler.Combatant, ball Ball) Params {
	return Params{
		MaxHP:     target.MaxHP(),
		HP:        target.HP,
		CatchRate: target.CatchRate,
		Ball:      ball,
		Status:    target.Status.Effect,
	}
}

package battler

import "fmt"

// Stat indexes the six permanent stats.
type Stat int

const (
	StatHP Stat = iota
	StatAttack
	StatDefense
	StatSpAtk
	StatSpDef
	StatSpeed
)

var statNames = [...]string{"HP", "ATTACK", "DEFENSE", "SP. ATK", "SP. DEF", "SPEED"}

// String returns the display name of the stat.
func (s Stat) String() string {
	if s < StatHP || s > StatSpeed {
		return fmt.Sprintf("Stat(%d)", int(s))
	}
	return statNames[s]
}

// Stats holds one value per permanent stat, indexed by Stat.
type Stats [6]int

// Stage indexes the seven in-battle stage counters.
type Stage int

const (
	StageAttack Stage = iota
	StageDefense
	StageSpAtk
	StageSpDef
	StageSpeed
	StageAccuracy
	StageEvasion
)

var stageNames = [...]string{"attack", "defense", "sp_atk", "sp_def", "speed", "accuracy", "evasion"}
var stageLabels = [...]string{"ATTACK", "DEFENSE", "SP. ATK", "SP. DEF", "SPEED", "accuracy", "evasiveness"}

// MaxStage bounds every stage counter to [-MaxStage, +MaxStage].
const MaxStage = 6

// String returns the display label of the stage.
func (s Stage) String() string {
	if s < StageAttack || s > StageEvasion {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageLabels[s]
}

// UnmarshalText parses a stage name such as "sp_atk" or "evasion".
func (s *Stage) UnmarshalText(text []byte) error {
	for i, n := range stageNames {
		if n == string(text) {
			*s = Stage(i)
			return nil
		}
	}
	return fmt.Errorf("battler: unknown stage %q", string(text))
}

// MarshalText returns the stage name.
func (s Stage) MarshalText() ([]byte, error) {
	if s < StageAttack || s > StageEvasion {
		return nil, fmt.Errorf("battler: invalid stage %d", int(s))
	}
	return []byte(stageNames[s]), nil
}

// Stages holds the stage counters, indexed by Stage.
type Stages [7]int

// stageFor maps a permanent stat to its stage counter. HP has none.
func stageFor(s Stat) (Stage, bool) {
	if s == StatHP {
		return 0, false
	}
	return Stage(s - 1), true
}

// StageRatio returns the numerator and denominator of the multiplier for a
// stat stage: max(2,2+s)/max(2,2-s).
func StageRatio(stage int) (num, den int) {
	return max(2, 2+stage), max(2, 2-stage)
}

// CalculateStats derives permanent stats from base stats, individual values
// and level.
//
// Postcondition: result[StatHP] == floor((2B+IV)·L/100)+L+10; every other
// stat == floor((2B+IV)·L/100)+5.
func CalculateStats(base, ivs Stats, level int) Stats {
	var out Stats
	for i := range out {
		v := (2*base[i] + ivs[i]) * level / 100
		if Stat(i) == StatHP {
			out[i] = v + level + 10
		} else {
			out[i] = v + 5
		}
	}
	return out
}

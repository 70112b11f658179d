package move

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/dice"
)

// EffectKind discriminates the Effect variants.
type EffectKind int

const (
	EffectStatus EffectKind = iota + 1
	EffectStatChange
	EffectTag
	EffectDrain
	EffectRecoil
	EffectHeal
)

var effectKindNames = map[EffectKind]string{
	EffectStatus:     "status",
	EffectStatChange: "stat_change",
	EffectTag:        "tag",
	EffectDrain:      "drain",
	EffectRecoil:     "recoil",
	EffectHeal:       "heal",
}

// String returns the YAML name of the kind.
func (k EffectKind) String() string {
	if n, ok := effectKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("EffectKind(%d)", int(k))
}

// UnmarshalText parses an effect kind name.
func (k *EffectKind) UnmarshalText(text []byte) error {
	for kind, n := range effectKindNames {
		if n == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("move: unknown effect kind %q", string(text))
}

// MarshalText returns the kind name.
func (k EffectKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Effect is one secondary effect of a move. Which fields apply depends on Kind.
type Effect struct {
	Kind EffectKind `yaml:"kind"`
	// Self applies the effect to the user instead of the target.
	Self bool `yaml:"self"`
	// Chance is the percent chance to apply; 0 means always.
	Chance int                  `yaml:"chance"`
	Status battler.StatusEffect `yaml:"status"`
	Stage  battler.Stage        `yaml:"stage"`
	Stages int                  `yaml:"stages"`
	Tag    battler.TagKind      `yaml:"tag"`
	// Percent is of damage dealt for drain and recoil, of max HP for heal.
	Percent int `yaml:"percent"`
}

func (e Effect) validate() error {
	if e.Chance < 0 || e.Chance > 100 {
		return fmt.Errorf("chance must be 0-100, got %d", e.Chance)
	}
	switch e.Kind {
	case EffectStatus:
		if e.Status == battler.StatusNone {
			return errors.New("status effect needs a status")
		}
	case EffectStatChange:
		if e.Stages == 0 {
			return errors.New("stat_change effect needs non-zero stages")
		}
	case EffectTag:
		if e.Tag == 0 {
			return errors.New("tag effect needs a tag")
		}
	case EffectDrain, EffectRecoil, EffectHeal:
		if e.Percent < 1 {
			return fmt.Errorf("%s effect needs percent >= 1", e.Kind)
		}
	default:
		return fmt.Errorf("unknown effect kind %d", int(e.Kind))
	}
	return nil
}

// Env is what effect application needs: both combatants, the damage the
// current hit dealt, the random stream and a message sink.
type Env struct {
	User   *battler.Combatant
	Target *battler.Combatant
	MoveID string
	Dealt  int
	Rand   dice.Source
	Say    func(text string)
	// Primary is true for status moves, whose effects report failure.
	Primary bool
}

func (e Env) say(text string) {
	if e.Say != nil {
		e.Say(text)
	}
}

func (e Env) pick(self bool) (who, other *battler.Combatant) {
	if self {
		return e.User, e.Target
	}
	return e.Target, e.User
}

// Apply resolves eff against env. Effects aimed at a fainted combatant and
// failed chance rolls do nothing.
//
// Postcondition: returns true iff the effect changed battle state.
func Apply(eff Effect, env Env) bool {
	who, other := env.pick(eff.Self)
	if who == nil || who.Fainted() {
		return false
	}
	if eff.Chance > 0 && !dice.Chance(env.Rand, eff.Chance) {
		return false
	}
	switch eff.Kind {
	case EffectStatus:
		return applyStatus(eff, who, env)
	case EffectStatChange:
		return applyStatChange(eff, who, env)
	case EffectTag:
		tag := battler.RollTag(eff.Tag, env.Rand, env.MoveID, env.User.ID)
		added := who.Tags.Add(tag, battler.TagEnv{Self: who, Opponent: other, Rand: env.Rand, Say: env.Say})
		if !added && env.Primary && !eff.Self {
			return false
		}
		return true
	case EffectDrain:
		if env.Dealt <= 0 {
			return false
		}
		if env.User.Heal(max(env.Dealt*eff.Percent/100, 1)) > 0 {
			env.say(env.Target.Label() + " had its energy drained!")
			return true
		}
		return false
	case EffectRecoil:
		if env.Dealt <= 0 {
			return false
		}
		env.User.Damage(max(env.Dealt*eff.Percent/100, 1))
		env.say(env.User.Label() + " is damaged by recoil!")
		return true
	case EffectHeal:
		if who.Heal(max(who.MaxHP()*eff.Percent/100, 1)) == 0 {
			env.say(who.Label() + "'s HP is full!")
			return false
		}
		env.say(who.Label() + " regained health!")
		return true
	default:
		panic(fmt.Sprintf("move: unhandled effect kind %d", int(eff.Kind)))
	}
}

// ApplyAll resolves every effect of def in declaration order and reports
// whether any of them took hold.
func ApplyAll(def *Def, env Env) bool {
	took := false
	for _, eff := range def.Effects {
		if Apply(eff, env) {
			took = true
		}
	}
	return took
}

var sleepTurns = dice.MustParse("1d3+1")

func applyStatus(eff Effect, who *battler.Combatant, env Env) bool {
	turns := 0
	if eff.Status == battler.StatusSleep {
		turns = dice.Roll(sleepTurns, env.Rand).Total()
	}
	if !who.SetStatus(eff.Status, turns) {
		if env.Primary {
			env.say("But it failed!")
		}
		return false
	}
	env.say(eff.Status.AfflictText(who.Label()))
	return true
}

func applyStatChange(eff Effect, who *battler.Combatant, env Env) bool {
	applied := who.ChangeStage(eff.Stage, eff.Stages)
	prefix := who.Label() + "'s " + eff.Stage.String()
	switch {
	case applied == 0 && eff.Stages > 0:
		env.say(prefix + " won't go any higher!")
		return false
	case applied == 0:
		env.say(prefix + " won't go any lower!")
		return false
	case applied >= 2:
		env.say(prefix + " sharply rose!")
	case applied > 0:
		env.say(prefix + " rose!")
	case applied <= -2:
		env.say(prefix + " harshly fell!")
	default:
		env.say(prefix + " fell!")
	}
	return true
}

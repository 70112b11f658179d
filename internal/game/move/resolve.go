package move

import (
	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/dice"
)

// Strike is one connecting hit of a move.
type Strike struct {
	Def    *Def
	User   *battler.Combatant
	Target *battler.Combatant
	Chart  TypeChart
	Rand   dice.Source
	Say    func(text string)
}

// HitResult summarises one resolved strike.
type HitResult struct {
	Damage DamageResult
	Dealt  int
}

// Resolve applies one connecting hit: damage with its effectiveness messages,
// then every secondary effect. An immune target takes neither.
//
// Precondition: the hit check already passed.
// Postcondition: user.Turn.DamageDealt grows by result.Dealt.
func Resolve(s Strike) HitResult {
	say := func(text string) {
		if s.Say != nil {
			s.Say(text)
		}
	}
	var res HitResult
	if s.Def.Damaging() {
		res.Damage = CalculateDamage(s.Def, s.User, s.Target, s.Chart, s.Rand)
		if res.Damage.Immune() {
			say("It doesn't affect " + s.Target.Label() + "...")
			return res
		}
		res.Dealt = s.Target.Damage(res.Damage.Amount)
		s.User.Turn.DamageDealt += res.Dealt
		if res.Damage.Critical {
			say("A critical hit!")
		}
		switch {
		case res.Damage.Effectiveness > 1:
			say("It's super effective!")
		case res.Damage.Effectiveness < 1:
			say("It's not very effective...")
		}
	}
	ApplyAll(s.Def, Env{
		User:    s.User,
		Target:  s.Target,
		MoveID:  s.Def.ID,
		Dealt:   res.Dealt,
		Rand:    s.Rand,
		Say:     s.Say,
		Primary: !s.Def.Damaging(),
	})
	return res
}

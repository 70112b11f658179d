package battler

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/monbattle/internal/game/dice"
)

// TagEnv supplies what tag behaviour needs at a lapse point.
// Opponent may be nil when the other side's field slot is empty.
type TagEnv struct {
	Self     *Combatant
	Opponent *Combatant
	Rand     dice.Source
	Say      func(text string)
}

func (e TagEnv) say(text string) {
	if e.Say != nil {
		e.Say(text)
	}
}

// TagResult reports the outcome of one lapse (or the aggregate of several).
type TagResult struct {
	// Present is false when no tag of the kind was found.
	Present bool
	// Survives is false when the tag was removed by this lapse.
	Survives bool
	// Cancel cancels the move declaration being processed.
	Cancel bool
	// Blocked means an incoming hit was stopped.
	Blocked bool
}

// TagSet is the insertion-ordered set of tags on one combatant.
// It is not safe for concurrent use; the caller must serialise access.
//
// Invariant: at most one tag per TagKind.
type TagSet struct {
	tags []*Tag
}

// NewTagSet creates an empty TagSet.
func NewTagSet() *TagSet {
	return &TagSet{}
}

func (s *TagSet) find(kind TagKind) *Tag {
	for _, t := range s.tags {
		if t.Kind == kind {
			return t
		}
	}
	return nil
}

func (s *TagSet) remove(kind TagKind) {
	for i, t := range s.tags {
		if t.Kind == kind {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return
		}
	}
}

// Has reports whether a tag of kind is present.
func (s *TagSet) Has(kind TagKind) bool { return s.find(kind) != nil }

// Get returns a copy of the tag of kind.
func (s *TagSet) Get(kind TagKind) (Tag, bool) {
	if t := s.find(kind); t != nil {
		return *t, true
	}
	return Tag{}, false
}

// Len returns the number of tags present.
func (s *TagSet) Len() int { return len(s.tags) }

// All returns copies of every tag in insertion order.
func (s *TagSet) All() []Tag {
	out := make([]Tag, len(s.tags))
	for i, t := range s.tags {
		out[i] = *t
	}
	return out
}

// BlocksSwitch reports whether any present tag prevents switching out.
func (s *TagSet) BlocksSwitch() bool {
	for _, t := range s.tags {
		if t.Kind.BlocksSwitch() {
			return true
		}
	}
	return false
}

// Hidden returns the semi-invulnerability tag kind present, if any.
func (s *TagSet) Hidden() (TagKind, bool) {
	for _, t := range s.tags {
		if t.Kind.Hides() {
			return t.Kind, true
		}
	}
	return 0, false
}

// Add attaches t. If a tag of the same kind is already present, the overlap
// hook runs instead and no second instance is created.
//
// Postcondition: Has(t.Kind); returns true iff a new instance was attached.
func (s *TagSet) Add(t Tag, env TagEnv) bool {
	if existing := s.find(t.Kind); existing != nil {
		existing.Overlaps++
		onOverlap(existing, env)
		return false
	}
	added := t
	added.Trigger = t.Kind.Trigger()
	added.Overlaps = 0
	s.tags = append(s.tags, &added)
	onAdd(&added, env)
	return true
}

// Lapse checks the tag of kind at point lt. A tag that does not survive is
// removed and its onRemove behaviour runs.
//
// Postcondition: result.Present is false iff no tag of kind existed; if
// result.Present && !result.Survives then !Has(kind) (unless onRemove re-added it).
func (s *TagSet) Lapse(kind TagKind, lt LapseType, env TagEnv) TagResult {
	t := s.find(kind)
	if t == nil {
		return TagResult{}
	}
	res := lapse(t, lt, env)
	res.Present = true
	if !res.Survives {
		s.remove(kind)
		onRemove(t, true, env)
	}
	return res
}

// LapseAll lapses every tag whose trigger is lt, in insertion order. A
// cancelled declaration stops further move-point checks.
//
// Postcondition: result.Cancel / result.Blocked are the OR of every lapse.
func (s *TagSet) LapseAll(lt LapseType, env TagEnv) TagResult {
	var kinds []TagKind
	for _, t := range s.tags {
		if t.Trigger == lt {
			kinds = append(kinds, t.Kind)
		}
	}
	var agg TagResult
	for _, k := range kinds {
		r := s.Lapse(k, lt, env)
		if !r.Present {
			continue
		}
		agg.Present = true
		agg.Cancel = agg.Cancel || r.Cancel
		agg.Blocked = agg.Blocked || r.Blocked
		if agg.Cancel && lt == LapseMove {
			break
		}
		if env.Self != nil && env.Self.Fainted() {
			break
		}
	}
	return agg
}

// EndTurn runs the turn-end lapses and then drops every turn-scoped tag
// (flinch, protect) that was not consumed.
//
// Postcondition: no turn-scoped tag is present.
func (s *TagSet) EndTurn(env TagEnv) TagResult {
	res := s.LapseAll(LapseTurnEnd, env)
	kept := s.tags[:0]
	for _, t := range s.tags {
		if !tagSpecs[t.Kind].turnScoped {
			kept = append(kept, t)
		}
	}
	s.tags = kept
	return res
}

// Remove forcibly detaches the tag of kind, running its onRemove behaviour.
//
// Postcondition: !Has(kind).
func (s *TagSet) Remove(kind TagKind, env TagEnv) {
	t := s.find(kind)
	if t == nil {
		return
	}
	s.remove(kind)
	onRemove(t, false, env)
}

// Clear silently drops every tag, as on faint or switch-out.
//
// Postcondition: Len() == 0.
func (s *TagSet) Clear() {
	s.tags = nil
}

// Restore replaces the set's contents with tags, keeping the first of any duplicate kind.
func (s *TagSet) Restore(tags []Tag) {
	s.tags = nil
	for _, t := range tags {
		if s.find(t.Kind) != nil {
			continue
		}
		c := t
		s.tags = append(s.tags, &c)
	}
}

// CritStages returns the critical-hit stage bonus from crit boost stacks.
func (s *TagSet) CritStages() int {
	if t := s.find(TagCritBoost); t != nil {
		return min(t.Stacks(), 2)
	}
	return 0
}

// countDown is the default lapse: decrement and survive while turns remain.
func countDown(t *Tag) bool {
	t.Turns--
	return t.Turns > 0
}

func lapse(t *Tag, lt LapseType, env TagEnv) TagResult {
	keep := TagResult{Survives: true}
	label := env.Self.Label()
	switch t.Kind {
	case TagFlinched:
		if lt != LapseMove {
			return keep
		}
		env.say(label + " flinched!")
		return TagResult{Survives: countDown(t), Cancel: true}
	case TagConfused:
		if lt != LapseMove {
			return keep
		}
		if !countDown(t) {
			return TagResult{}
		}
		env.say(label + " is confused!")
		if env.Rand.Intn(2) == 1 {
			env.Self.Damage(ConfusionDamage(env.Self, env.Rand))
			env.say("It hurt itself in its confusion!")
			return TagResult{Survives: true, Cancel: true}
		}
		return keep
	case TagSeeded:
		if lt != LapseAfterMove || env.Self.Fainted() {
			return keep
		}
		dealt := env.Self.Damage(max(env.Self.MaxHP()/8, 1))
		if env.Opponent != nil && !env.Opponent.Fainted() {
			env.Opponent.Heal(dealt)
		}
		env.say(label + "'s health is sapped by LEECH SEED!")
		return keep
	case TagProtected:
		if lt != LapseCustom {
			return keep
		}
		env.say(label + " protected itself!")
		return TagResult{Survives: true, Blocked: true}
	case TagFrenzy:
		if lt != LapseCustom {
			return keep
		}
		return TagResult{Survives: countDown(t)}
	case TagFlying, TagUnderground:
		if lt != LapseMoveEffect {
			return keep
		}
		return TagResult{Survives: countDown(t)}
	case TagRecharging:
		if lt != LapseMove {
			return keep
		}
		env.say(label + " must recharge!")
		return TagResult{Survives: countDown(t), Cancel: true}
	case TagTrapped:
		if lt != LapseTurnEnd {
			return keep
		}
		if !countDown(t) {
			return TagResult{}
		}
		env.Self.Damage(max(env.Self.MaxHP()/16, 1))
		env.say(label + " is hurt by " + sourceLabel(t) + "!")
		return keep
	case TagDrowsy:
		if lt != LapseTurnEnd {
			return keep
		}
		return TagResult{Survives: countDown(t)}
	case TagIngrain:
		if lt != LapseTurnEnd {
			return keep
		}
		if env.Self.Heal(max(env.Self.MaxHP()/16, 1)) > 0 {
			env.say(label + " absorbed nutrients with its roots!")
		}
		return keep
	case TagCritBoost:
		return keep
	default:
		panic(fmt.Sprintf("battler: lapse of unhandled tag kind %d", int(t.Kind)))
	}
}

func onAdd(t *Tag, env TagEnv) {
	label := env.Self.Label()
	switch t.Kind {
	case TagConfused:
		env.say(label + " became confused!")
	case TagSeeded:
		env.say(label + " was seeded!")
	case TagProtected:
		env.say(label + " protected itself!")
	case TagFlying:
		env.say(label + " flew up high!")
	case TagUnderground:
		env.say(label + " dug a hole!")
	case TagTrapped:
		env.say(label + " was trapped by " + sourceLabel(t) + "!")
	case TagDrowsy:
		env.say(label + " grew drowsy!")
	case TagIngrain:
		env.say(label + " planted its roots!")
	case TagCritBoost:
		env.say(label + " is getting pumped!")
	}
}

func onOverlap(t *Tag, env TagEnv) {
	label := env.Self.Label()
	switch t.Kind {
	case TagConfused:
		env.say(label + " is already confused!")
	case TagSeeded:
		env.say(label + " is already seeded!")
	case TagCritBoost:
		env.say(label + " is getting pumped!")
	}
}

// onRemove runs removal behaviour. expired is true when the tag ran out on
// its own rather than being forcibly removed.
func onRemove(t *Tag, expired bool, env TagEnv) {
	label := env.Self.Label()
	switch t.Kind {
	case TagConfused:
		env.say(label + " snapped out of confusion!")
	case TagTrapped:
		env.say(label + " was freed from " + sourceLabel(t) + "!")
	case TagFrenzy:
		if expired && !env.Self.Fainted() {
			turns := dice.Roll(dice.MustParse("1d3+1"), env.Rand).Total()
			env.Self.Tags.Add(NewTag(TagConfused, turns, t.SourceMove, env.Self.ID), env)
		}
	case TagDrowsy:
		if expired && !env.Self.Fainted() {
			turns := dice.Roll(dice.MustParse("1d3+1"), env.Rand).Total()
			if env.Self.SetStatus(StatusSleep, turns) {
				env.say(StatusSleep.AfflictText(label))
			}
		}
	}
}

func sourceLabel(t *Tag) string {
	if t.SourceMove == "" {
		return "the trap"
	}
	return strings.ToUpper(strings.ReplaceAll(t.SourceMove, "_", " "))
}

// ConfusionDamage returns the self-inflicted damage of a confused turn: a
// typeless 40-power physical hit using the bearer's own Attack and Defense.
//
// Postcondition: result >= 1.
func ConfusionDamage(c *Combatant, src dice.Source) int {
	atk := float64(c.Effective(StatAttack))
	def := float64(c.Effective(StatDefense))
	base := ((2*float64(c.Level)/5+2)*40*atk/def)/50 + 2
	return int(math.Ceil(base * float64(src.Intn(15)+85) / 100))
}

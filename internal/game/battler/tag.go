package battler

import (
	"fmt"

	"github.com/cory-johannsen/monbattle/internal/game/dice"
)

// LapseType is the pipeline point at which a tag is checked.
type LapseType int

const (
	LapseFaint LapseType = iota
	LapseMove
	LapseAfterMove
	LapseMoveEffect
	LapseTurnEnd
	LapseCustom
)

var lapseNames = [...]string{"faint", "move", "after_move", "move_effect", "turn_end", "custom"}

// String returns the lapse point name.
func (l LapseType) String() string {
	if l < LapseFaint || l > LapseCustom {
		return fmt.Sprintf("LapseType(%d)", int(l))
	}
	return lapseNames[l]
}

// TagKind identifies a battle tag. A combatant carries at most one tag per kind.
type TagKind int

const (
	TagFlinched TagKind = iota + 1
	TagConfused
	TagSeeded
	TagProtected
	TagFrenzy
	TagFlying
	TagUnderground
	TagRecharging
	TagTrapped
	TagDrowsy
	TagIngrain
	TagCritBoost
)

// tagSpec is the static behaviour table for one kind.
type tagSpec struct {
	name      string
	trigger   LapseType
	turns     string // dice expression for the default duration
	permanent bool   // survives non-custom lapses without counting down
	// turnScoped tags never outlive the turn they were added in.
	turnScoped   bool
	blocksSwitch bool
}

var tagSpecs = map[TagKind]tagSpec{
	TagFlinched:    {name: "flinched", trigger: LapseMove, turns: "0", turnScoped: true},
	TagConfused:    {name: "confused", trigger: LapseMove, turns: "1d4+1"},
	TagSeeded:      {name: "seeded", trigger: LapseAfterMove, turns: "1", permanent: true},
	TagProtected:   {name: "protected", trigger: LapseCustom, turns: "0", turnScoped: true},
	TagFrenzy:      {name: "frenzy", trigger: LapseCustom, turns: "1d2+1"},
	TagFlying:      {name: "flying", trigger: LapseMoveEffect, turns: "1"},
	TagUnderground: {name: "underground", trigger: LapseMoveEffect, turns: "1"},
	TagRecharging:  {name: "recharging", trigger: LapseMove, turns: "1"},
	TagTrapped:     {name: "trapped", trigger: LapseTurnEnd, turns: "1d4+1", blocksSwitch: true},
	TagDrowsy:      {name: "drowsy", trigger: LapseTurnEnd, turns: "2"},
	TagIngrain:     {name: "ingrain", trigger: LapseTurnEnd, turns: "1", permanent: true, blocksSwitch: true},
	TagCritBoost:   {name: "crit_boost", trigger: LapseCustom, turns: "1", permanent: true},
}

// String returns the YAML name of the kind.
func (k TagKind) String() string {
	if s, ok := tagSpecs[k]; ok {
		return s.name
	}
	return fmt.Sprintf("TagKind(%d)", int(k))
}

// UnmarshalText parses a tag name such as "confused".
func (k *TagKind) UnmarshalText(text []byte) error {
	for kind, s := range tagSpecs {
		if s.name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("battler: unknown tag %q", string(text))
}

// MarshalText returns the tag name.
func (k TagKind) MarshalText() ([]byte, error) {
	s, ok := tagSpecs[k]
	if !ok {
		return nil, fmt.Errorf("battler: invalid tag kind %d", int(k))
	}
	return []byte(s.name), nil
}

// Trigger returns the lapse point the kind is checked at.
func (k TagKind) Trigger() LapseType { return tagSpecs[k].trigger }

// BlocksSwitch reports whether a bearer of this kind cannot be switched out.
func (k TagKind) BlocksSwitch() bool { return tagSpecs[k].blocksSwitch }

// Hides reports whether the kind makes its bearer semi-invulnerable.
func (k TagKind) Hides() bool { return k == TagFlying || k == TagUnderground }

// DefaultTurns returns the kind's default duration expression.
func (k TagKind) DefaultTurns() dice.Expression {
	return dice.MustParse(tagSpecs[k].turns)
}

// Tag is one transient effect attached to a combatant.
type Tag struct {
	Kind       TagKind   `json:"kind"`
	Trigger    LapseType `json:"trigger"`
	Turns      int       `json:"turns"`
	SourceMove string    `json:"source_move,omitempty"`
	SourceID   string    `json:"source_id,omitempty"`
	// Overlaps counts re-applications absorbed by onOverlap.
	Overlaps int `json:"overlaps"`
}

// Stacks returns 1 + Overlaps.
func (t Tag) Stacks() int { return 1 + t.Overlaps }

// NewTag builds a tag of kind with the given duration.
func NewTag(kind TagKind, turns int, sourceMove, sourceID string) Tag {
	return Tag{Kind: kind, Trigger: kind.Trigger(), Turns: turns, SourceMove: sourceMove, SourceID: sourceID}
}

// RollTag builds a tag of kind with its default duration drawn from src.
func RollTag(kind TagKind, src dice.Source, sourceMove, sourceID string) Tag {
	return NewTag(kind, dice.Roll(kind.DefaultTurns(), src).Total(), sourceMove, sourceID)
}

// Package data provides the static, read-only content the battle engine looks
// up by id: species, moves, learnsets and the type chart.
package data

import (
	"fmt"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/exp"
)

// StatBlock is the YAML form of a six-stat array.
type StatBlock struct {
	HP      int `yaml:"hp"`
	Attack  int `yaml:"attack"`
	Defense int `yaml:"defense"`
	SpAtk   int `yaml:"sp_atk"`
	SpDef   int `yaml:"sp_def"`
	Speed   int `yaml:"speed"`
}

// Stats converts the block to a battler.Stats array.
func (b StatBlock) Stats() battler.Stats {
	return battler.Stats{b.HP, b.Attack, b.Defense, b.SpAtk, b.SpDef, b.Speed}
}

// LevelMove is one learnset entry: move is unlocked on reaching level.
type LevelMove struct {
	Level int    `yaml:"level"`
	Move  string `yaml:"move"`
}

// Species is the static definition of a creature, loaded from YAML.
type Species struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Types     []string       `yaml:"types"`
	Base      StatBlock      `yaml:"base"`
	Growth    exp.GrowthRate `yaml:"growth"`
	CatchRate int            `yaml:"catch_rate"` // <= 0 falls back to the minimum rate at capture
	BaseExp   int            `yaml:"base_exp"`
	// Learnset must be sorted by ascending level.
	Learnset []LevelMove `yaml:"learnset"`
}

// Validate checks the species' own invariants.
//
// Precondition: s must not be nil.
// Postcondition: Returns nil iff the species is spawnable; otherwise the first violation.
func (s *Species) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("species: id must not be empty")
	}
	if s.Name == "" {
		return fmt.Errorf("species %q: name must not be empty", s.ID)
	}
	if len(s.Types) == 0 || len(s.Types) > 2 {
		return fmt.Errorf("species %q: must have one or two types, got %d", s.ID, len(s.Types))
	}
	for i, v := range s.Base.Stats() {
		if v < 1 {
			return fmt.Errorf("species %q: base %s must be >= 1", s.ID, battler.Stat(i))
		}
	}
	if s.BaseExp < 1 {
		return fmt.Errorf("species %q: base_exp must be >= 1", s.ID)
	}
	prev := 0
	for _, lm := range s.Learnset {
		if lm.Level < 1 || lm.Level > exp.MaxLevel {
			return fmt.Errorf("species %q: learnset level %d out of range", s.ID, lm.Level)
		}
		if lm.Level < prev {
			return fmt.Errorf("species %q: learnset is not in ascending level order at %s", s.ID, lm.Move)
		}
		prev = lm.Level
	}
	return nil
}

// MovesBetween returns the learnset entries unlocked on levels in (from, to],
// in ascending level order.
func (s *Species) MovesBetween(from, to int) []LevelMove {
	var out []LevelMove
	for _, lm := range s.Learnset {
		if lm.Level > from && lm.Level <= to {
			out = append(out, lm)
		}
	}
	return out
}

// StartingMoves returns the last MaxMoves distinct moves unlocked at or below level.
func (s *Species) StartingMoves(level int) []string {
	var known []string
	for _, lm := range s.Learnset {
		if lm.Level > level {
			break
		}
		for i, m := range known {
			if m == lm.Move {
				known = append(known[:i], known[i+1:]...)
				break
			}
		}
		known = append(known, lm.Move)
	}
	if len(known) > battler.MaxMoves {
		known = known[len(known)-battler.MaxMoves:]
	}
	return known
}

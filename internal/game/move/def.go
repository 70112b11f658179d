// Package move holds move definitions and the rules that resolve one use of a
// move: hit check, hit count, damage and secondary effects.
package move

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
)

// Category selects the attacking and defending stats of a move.
type Category int

const (
	Physical Category = iota
	Special
	Status
)

var categoryNames = [...]string{"physical", "special", "status"}

// String returns the YAML name of the category.
func (c Category) String() string {
	if c < Physical || c > Status {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// UnmarshalText parses "physical", "special" or "status".
func (c *Category) UnmarshalText(text []byte) error {
	for i, n := range categoryNames {
		if n == string(text) {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("move: unknown category %q", string(text))
}

// MarshalText returns the category name.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// HitCount is the multi-hit rule of a move.
type HitCount int

const (
	HitsOne HitCount = iota
	HitsTwo
	HitsThree
	HitsTwoToFive
)

var hitCountNames = [...]string{"one", "two", "three", "two_to_five"}

// String returns the YAML name of the rule.
func (h HitCount) String() string {
	if h < HitsOne || h > HitsTwoToFive {
		return fmt.Sprintf("HitCount(%d)", int(h))
	}
	return hitCountNames[h]
}

// UnmarshalText parses a hit-count rule name.
func (h *HitCount) UnmarshalText(text []byte) error {
	for i, n := range hitCountNames {
		if n == string(text) {
			*h = HitCount(i)
			return nil
		}
	}
	return fmt.Errorf("move: unknown hit count %q", string(text))
}

// MarshalText returns the rule name.
func (h HitCount) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// AlwaysHits is the accuracy value of moves that skip the hit check.
const AlwaysHits = -1

// Def is the static definition of a move, loaded from YAML.
type Def struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Category Category `yaml:"category"`
	Power    int      `yaml:"power"`
	Accuracy int      `yaml:"accuracy"` // AlwaysHits skips the check
	PP       int      `yaml:"pp"`
	Priority int      `yaml:"priority"`
	Hits     HitCount `yaml:"hits"`
	HighCrit bool     `yaml:"high_crit"`
	// Charge names the hiding tag added on the first turn of a two-turn move.
	Charge     battler.TagKind   `yaml:"charge"`
	Recharge   bool              `yaml:"recharge"`
	Frenzy     bool              `yaml:"frenzy"`
	HitsHidden []battler.TagKind `yaml:"hits_hidden"`
	Effects    []Effect          `yaml:"effects"`
}

// Label is the upper-case display name.
func (d *Def) Label() string {
	if d.Name != "" {
		return strings.ToUpper(d.Name)
	}
	return strings.ToUpper(strings.ReplaceAll(d.ID, "_", " "))
}

// Damaging reports whether the move deals direct damage.
func (d *Def) Damaging() bool { return d.Category != Status && d.Power > 0 }

// ReachesHidden reports whether the move can strike a target hidden by kind.
func (d *Def) ReachesHidden(kind battler.TagKind) bool {
	for _, k := range d.HitsHidden {
		if k == kind {
			return true
		}
	}
	return false
}

// Validate checks the definition's invariants, reporting every violation.
//
// Postcondition: returns nil iff the definition is usable by the resolver.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Type == "" {
		errs = append(errs, errors.New("type must not be empty"))
	}
	if d.PP < 1 {
		errs = append(errs, fmt.Errorf("pp must be >= 1, got %d", d.PP))
	}
	if d.Accuracy != AlwaysHits && (d.Accuracy < 1 || d.Accuracy > 100) {
		errs = append(errs, fmt.Errorf("accuracy must be 1-100 or %d, got %d", AlwaysHits, d.Accuracy))
	}
	if d.Category != Status && d.Power < 1 {
		errs = append(errs, fmt.Errorf("%s move must have power >= 1", d.Category))
	}
	if d.Charge != 0 && !d.Charge.Hides() {
		errs = append(errs, fmt.Errorf("charge tag %s does not hide its bearer", d.Charge))
	}
	for i, e := range d.Effects {
		if err := e.validate(); err != nil {
			errs = append(errs, fmt.Errorf("effects[%d]: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("move %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

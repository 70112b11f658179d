// Package reward implements the post-victory reward system: descriptors of
// what can be offered, the tiered weighted pool that draws offers, the
// player's accumulated holdings, and application of a chosen reward.
package reward

import (
	"fmt"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/capture"
)

// Tier is a rank bucket of pool entries. Luxury sits outside the weighted
// draw and is offered wholesale on luxury waves.
type Tier int

const (
	TierCommon Tier = iota
	TierGreat
	TierUltra
	TierMaster
	TierLuxury
)

// weightedTiers is the number of tiers reachable through the tier draw.
const weightedTiers = int(TierMaster) + 1

const tierCount = int(TierLuxury) + 1

var tierNames = [...]string{"common", "great", "ultra", "master", "luxury"}

// String returns the YAML name of the tier.
func (t Tier) String() string {
	if t < TierCommon || t > TierLuxury {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// UnmarshalText parses a tier name.
func (t *Tier) UnmarshalText(text []byte) error {
	for i, n := range tierNames {
		if n == string(text) {
			*t = Tier(i)
			return nil
		}
	}
	return fmt.Errorf("reward: unknown tier %q", string(text))
}

// MarshalText returns the tier name.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Kind discriminates what applying a Descriptor does.
type Kind int

const (
	KindPotion Kind = iota + 1
	KindRevive
	KindEther
	KindStatusCure
	KindRareCandy
	KindVitamin
	KindTM
	KindBall
	KindModifier
)

var kindNames = map[Kind]string{
	KindPotion:     "potion",
	KindRevive:     "revive",
	KindEther:      "ether",
	KindStatusCure: "status_cure",
	KindRareCandy:  "rare_candy",
	KindVitamin:    "vitamin",
	KindTM:         "tm",
	KindBall:       "ball",
	KindModifier:   "modifier",
}

// String returns the YAML name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, n := range kindNames {
		if n == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("reward: unknown kind %q", string(text))
}

// MarshalText returns the kind name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// NeedsTarget reports whether applying the kind requires choosing a party member.
func (k Kind) NeedsTarget() bool {
	switch k {
	case KindBall, KindModifier:
		return false
	default:
		return true
	}
}

// Descriptor is one concrete reward that can be offered and applied.
type Descriptor struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	// Group links interchangeable rewards (e.g. every potion) for offer de-duplication.
	Group string `yaml:"group" json:"group,omitempty"`
	Kind  Kind   `yaml:"kind" json:"kind"`
	// Amount is HP for potions, PP for ethers (-1 = full), a base-stat boost
	// for vitamins and a count for balls and modifiers.
	Amount int `yaml:"amount" json:"amount,omitempty"`
	// Percent is the max-HP share restored by revives and percent potions.
	Percent  int          `yaml:"percent" json:"percent,omitempty"`
	Stat     battler.Stat `yaml:"-" json:"stat,omitempty"`
	Move     string       `yaml:"move" json:"move,omitempty"`
	Ball     capture.Ball `yaml:"ball" json:"ball,omitempty"`
	Modifier Modifier     `yaml:"modifier" json:"modifier,omitempty"`
}

// Label returns the display name.
func (d Descriptor) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// collides reports whether two offers share an id or a non-empty group.
func (d Descriptor) collides(o Descriptor) bool {
	return d.ID == o.ID || (d.Group != "" && d.Group == o.Group)
}

package battler

import "fmt"

// StatusEffect is a persistent status condition. A combatant carries at most one.
type StatusEffect int

const (
	StatusNone StatusEffect = iota
	StatusPoison
	StatusToxic
	StatusParalysis
	StatusSleep
	StatusFreeze
	StatusBurn
)

var statusNames = [...]string{"none", "poison", "toxic", "paralysis", "sleep", "freeze", "burn"}

// String returns the YAML name of the status.
func (s StatusEffect) String() string {
	if s < StatusNone || s > StatusBurn {
		return fmt.Sprintf("StatusEffect(%d)", int(s))
	}
	return statusNames[s]
}

// UnmarshalText parses a status name.
func (s *StatusEffect) UnmarshalText(text []byte) error {
	for i, n := range statusNames {
		if n == string(text) {
			*s = StatusEffect(i)
			return nil
		}
	}
	return fmt.Errorf("battler: unknown status %q", string(text))
}

// MarshalText returns the status name.
func (s StatusEffect) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is the persistent condition slot.
// For sleep Turns counts remaining turns; for toxic it counts turns elapsed.
type Status struct {
	Effect StatusEffect `json:"effect"`
	Turns  int          `json:"turns"`
}

// Active reports whether any status is present.
func (s Status) Active() bool { return s.Effect != StatusNone }

// AfflictText is the message shown when label gains the status.
func (s StatusEffect) AfflictText(label string) string {
	switch s {
	case StatusPoison:
		return label + " was poisoned!"
	case StatusToxic:
		return label + " was badly poisoned!"
	case StatusParalysis:
		return label + " is paralyzed! It may be unable to move!"
	case StatusSleep:
		return label + " fell asleep!"
	case StatusFreeze:
		return label + " was frozen solid!"
	case StatusBurn:
		return label + " was burned!"
	default:
		return ""
	}
}

// CureText is the message shown when label recovers from the status.
func (s StatusEffect) CureText(label string) string {
	switch s {
	case StatusPoison, StatusToxic:
		return label + " was cured of its poison!"
	case StatusParalysis:
		return label + " was cured of paralysis!"
	case StatusSleep:
		return label + " woke up!"
	case StatusFreeze:
		return label + " was defrosted!"
	case StatusBurn:
		return label + "'s burn was healed!"
	default:
		return ""
	}
}

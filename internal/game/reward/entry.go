package reward

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RewardsFile is the pool definition file inside the data directory.
const RewardsFile = "rewards.yaml"

// Entry is one pool slot: a descriptor (or a generator producing one per
// draw) in a tier, with a weight source.
type Entry struct {
	Tier       Tier `yaml:"tier"`
	Descriptor `yaml:",inline"`
	// Weight is the fixed weight, or the per-member scale of a built-in weight.
	Weight int `yaml:"weight"`
	// WeightFn names a built-in party weight function.
	WeightFn string `yaml:"weight_fn"`
	// WeightScript names a Lua hook returning the weight for the party.
	WeightScript string `yaml:"weight_script"`
	// Generator names the function producing the descriptor per draw.
	Generator string `yaml:"generator"`
	// Moves lists the candidates of the tm generator.
	Moves []string `yaml:"moves"`
}

// Validate checks the entry's invariants.
//
// Postcondition: Returns nil iff the entry can take part in a pool.
func (e *Entry) Validate() error {
	var errs []error
	if e.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if e.Tier < TierCommon || e.Tier > TierLuxury {
		errs = append(errs, fmt.Errorf("invalid tier %d", int(e.Tier)))
	}
	if _, ok := kindNames[e.Kind]; !ok {
		errs = append(errs, fmt.Errorf("invalid kind %d", int(e.Kind)))
	}
	if e.Weight < 0 {
		errs = append(errs, fmt.Errorf("weight must be >= 0, got %d", e.Weight))
	}
	if e.WeightFn != "" && e.WeightScript != "" {
		errs = append(errs, errors.New("weight_fn and weight_script are mutually exclusive"))
	}
	if e.WeightFn != "" {
		if _, ok := builtinWeights[e.WeightFn]; !ok {
			errs = append(errs, fmt.Errorf("unknown weight_fn %q", e.WeightFn))
		}
	}
	if e.Generator != "" {
		if _, ok := generators[e.Generator]; !ok {
			errs = append(errs, fmt.Errorf("unknown generator %q", e.Generator))
		}
		if e.Generator == GeneratorTM && len(e.Moves) == 0 {
			errs = append(errs, errors.New("tm generator needs moves"))
		}
	}
	if e.Kind == KindModifier && MaxStacks(e.Modifier) == 0 {
		errs = append(errs, fmt.Errorf("unknown modifier %q", e.Modifier))
	}
	if len(errs) > 0 {
		return fmt.Errorf("reward %q: %w", e.ID, errors.Join(errs...))
	}
	return nil
}

// LoadEntries reads and validates a pool definition file.
//
// Precondition: path must name a YAML list of entries.
// Postcondition: Returns every entry, or an error describing every invalid one.
func LoadEntries(path string) ([]*Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	var entries []*Entry
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	var errs []error
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("validating %q: %w", path, errors.Join(errs...))
	}
	return entries, nil
}

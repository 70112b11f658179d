package data

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/dice"
	"github.com/cory-johannsen/monbattle/internal/game/move"
)

// Content file names inside the data directory.
const (
	SpeciesFile = "species.yaml"
	MovesFile   = "moves.yaml"
	TypesFile   = "types.yaml"
)

// ShinyOdds is the 1-in-N chance that a spawned combatant is shiny.
const ShinyOdds = 512

// MaxIV is the exclusive upper bound of a rolled individual value.
const MaxIV = 32

// ErrUnknownSpecies is returned when a species id has no definition.
var ErrUnknownSpecies = errors.New("unknown species")

// Provider is the read-only static data lookup used by the engine.
type Provider interface {
	move.TypeChart
	Species(id string) (*Species, bool)
	Move(id string) (*move.Def, bool)
	// LevelMoves returns the moves species unlocks on levels in (from, to],
	// in ascending level order.
	LevelMoves(species string, from, to int) []LevelMove
}

// Store is the in-memory Provider. It is immutable after loading and safe
// for concurrent reads.
type Store struct {
	species map[string]*Species
	moves   map[string]*move.Def
	chart   *TypeChart
	ids     []string
}

// NewStore creates an empty Store with a neutral type chart.
func NewStore() *Store {
	return &Store{
		species: make(map[string]*Species),
		moves:   make(map[string]*move.Def),
		chart:   NewTypeChart(nil),
	}
}

// AddSpecies registers s, replacing any definition with the same id.
//
// Precondition: s must be non-nil and valid.
func (st *Store) AddSpecies(s *Species) {
	if _, ok := st.species[s.ID]; !ok {
		st.ids = append(st.ids, s.ID)
		slices.Sort(st.ids)
	}
	st.species[s.ID] = s
}

// AddMove registers d, replacing any definition with the same id.
//
// Precondition: d must be non-nil and valid.
func (st *Store) AddMove(d *move.Def) {
	st.moves[d.ID] = d
}

// SetTypeChart replaces the type chart.
func (st *Store) SetTypeChart(c *TypeChart) {
	st.chart = c
}

// Species returns the species for id, or (nil, false).
func (st *Store) Species(id string) (*Species, bool) {
	s, ok := st.species[id]
	return s, ok
}

// Move returns the move for id, or (nil, false).
func (st *Store) Move(id string) (*move.Def, bool) {
	d, ok := st.moves[id]
	return d, ok
}

// SpeciesIDs returns every species id in sorted order.
func (st *Store) SpeciesIDs() []string {
	return slices.Clone(st.ids)
}

// LevelMoves implements Provider.
func (st *Store) LevelMoves(species string, from, to int) []LevelMove {
	s, ok := st.species[species]
	if !ok {
		return nil
	}
	return s.MovesBetween(from, to)
}

// Effectiveness implements move.TypeChart.
func (st *Store) Effectiveness(attack string, defend []string) float64 {
	return st.chart.Effectiveness(attack, defend)
}

// Spawn creates a combatant of species at level. IVs are drawn from src
// first (one Intn(MaxIV) per stat, in stat order), then the shiny roll.
// The combatant knows the last four moves its learnset unlocks by level.
//
// Precondition: 1 <= level <= exp.MaxLevel; src must be non-nil.
// Postcondition: Returns a full-health combatant or an error wrapping ErrUnknownSpecies.
func (st *Store) Spawn(speciesID string, level int, side battler.Side, src dice.Source) (*battler.Combatant, error) {
	s, ok := st.species[speciesID]
	if !ok {
		return nil, fmt.Errorf("spawning %q: %w", speciesID, ErrUnknownSpecies)
	}
	var ivs battler.Stats
	for i := range ivs {
		ivs[i] = src.Intn(MaxIV)
	}
	shiny := src.Intn(ShinyOdds) == 0

	var slots []battler.MoveSlot
	for _, id := range s.StartingMoves(level) {
		d, ok := st.moves[id]
		if !ok {
			return nil, fmt.Errorf("spawning %q: learnset move %q is not defined", speciesID, id)
		}
		slots = append(slots, battler.MoveSlot{Move: d.ID, MaxPP: d.PP})
	}
	return battler.New(battler.Params{
		Species:   s.ID,
		Name:      s.Name,
		Types:     s.Types,
		Side:      side,
		Level:     level,
		Growth:    s.Growth,
		Base:      s.Base.Stats(),
		IVs:       ivs,
		Moves:     slots,
		CatchRate: s.CatchRate,
		BaseExp:   s.BaseExp,
		Shiny:     shiny,
	}), nil
}

// RandomSpecies picks a species id uniformly from the sorted id list.
//
// Precondition: at least one species is registered.
func (st *Store) RandomSpecies(src dice.Source) string {
	return st.ids[src.Intn(len(st.ids))]
}

// Validate checks every definition and every cross reference, reporting all
// violations.
//
// Postcondition: Returns nil iff every learnset move is defined and every definition is valid.
func (st *Store) Validate() error {
	var errs []error
	for _, id := range slices.Sorted(maps.Keys(st.moves)) {
		if err := st.moves[id].Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, id := range st.ids {
		s := st.species[id]
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, lm := range s.Learnset {
			if _, ok := st.moves[lm.Move]; !ok {
				errs = append(errs, fmt.Errorf("species %q: learnset move %q is not defined", id, lm.Move))
			}
		}
	}
	return errors.Join(errs...)
}

// Load reads species.yaml, moves.yaml and types.yaml from dir and validates
// the result.
//
// Precondition: dir must be a readable directory containing all three files.
// Postcondition: Returns a validated Store, or an error naming the offending file.
func Load(dir string) (*Store, error) {
	st := NewStore()

	var species []*Species
	if err := decodeFile(filepath.Join(dir, SpeciesFile), &species); err != nil {
		return nil, err
	}
	var moves []*move.Def
	if err := decodeFile(filepath.Join(dir, MovesFile), &moves); err != nil {
		return nil, err
	}
	var types []TypeMatchups
	if err := decodeFile(filepath.Join(dir, TypesFile), &types); err != nil {
		return nil, err
	}

	for _, d := range moves {
		st.AddMove(d)
	}
	for _, s := range species {
		st.AddSpecies(s)
	}
	st.SetTypeChart(NewTypeChart(types))

	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("validating content in %q: %w", dir, err)
	}
	if len(st.ids) == 0 {
		return nil, fmt.Errorf("validating content in %q: no species defined", dir)
	}
	return st, nil
}

// decodeFile strictly decodes the YAML document at path into out.
func decodeFile(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %q: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("parsing %q: %w", path, err)
	}
	return nil
}

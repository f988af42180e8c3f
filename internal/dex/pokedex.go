// Package dex builds the per-run lookup tables the extractors share: the
// roster table, species types and base stats, plus single-battle views
// such as last-seen HP and the bench.
package dex

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/showdown-ml/battle-features/internal/models"
	"github.com/showdown-ml/battle-features/internal/typechart"
)

// ErrRosterConflict is returned in strict mode when a species is seen with
// different types or stats in different battles.
var ErrRosterConflict = errors.New("conflicting roster entries")

// Stat names, in vector order.
var StatNames = [...]string{"hp", "atk", "def", "spa", "spd", "spe"}

// BaseStats are a species' base stats.
type BaseStats struct {
	HP, Atk, Def, SpA, SpD, Spe float64
}

// Vector returns the stats in StatNames order.
func (s BaseStats) Vector() [6]float64 {
	return [6]float64{s.HP, s.Atk, s.Def, s.SpA, s.SpD, s.Spe}
}

// Map returns the stats keyed by name.
func (s BaseStats) Map() map[string]float64 {
	v := s.Vector()
	m := make(map[string]float64, len(v))
	for i, name := range StatNames {
		m[name] = v[i]
	}
	return m
}

// Get returns one stat by name.
func (s BaseStats) Get(stat string) (float64, bool) {
	for i, name := range StatNames {
		if name == stat {
			return s.Vector()[i], true
		}
	}
	return 0, false
}

// IsStatName reports whether stat is one of StatNames.
func IsStatName(stat string) bool {
	_, ok := BaseStats{}.Get(stat)
	return ok
}

// RosterEntry is one (battle, Pokémon) row of the roster table.
type RosterEntry struct {
	BattleID string
	Name     string
	Level    int
	Type1    string
	Type2    string
	Stats    BaseStats
}

// BuildRoster flattens every P1 team member and every P2 lead into one
// table.
func BuildRoster(battles []models.Battle) []RosterEntry {
	var out []RosterEntry
	for i := range battles {
		b := &battles[i]
		for _, p := range b.P1Team {
			out = append(out, entryFromSpec(b.BattleID, p))
		}
		if lead, ok := b.Lead(); ok {
			out = append(out, entryFromSpec(b.BattleID, lead))
		}
	}
	return out
}

func entryFromSpec(battleID string, p models.PokemonSpec) RosterEntry {
	e := RosterEntry{
		BattleID: battleID,
		Name:     p.Name,
		Level:    p.Level,
		Type1:    typechart.NoType,
		Type2:    typechart.NoType,
		Stats: BaseStats{
			HP: p.BaseHP, Atk: p.BaseAtk, Def: p.BaseDef,
			SpA: p.BaseSpA, SpD: p.BaseSpD, Spe: p.BaseSpe,
		},
	}
	if len(p.Types) > 0 {
		e.Type1 = p.Types[0]
	}
	if len(p.Types) > 1 {
		e.Type2 = p.Types[1]
	}
	return e
}

func (e RosterEntry) sameSpecies(o RosterEntry) bool {
	return strings.EqualFold(e.Type1, o.Type1) && strings.EqualFold(e.Type2, o.Type2) && e.Stats == o.Stats
}

// BuildOptions controls how the Pokedex resolves duplicate species.
type BuildOptions struct {
	// Strict fails on conflicting rows instead of letting the last one win.
	Strict bool
}

// Pokedex is the deduplicated species table of one extraction run. It is
// read-only after Build.
type Pokedex struct {
	entries map[string]RosterEntry
}

// Build deduplicates the roster table by name. Rows are stably sorted by
// name and the last row of each name wins, so a species' types and stats
// are assumed constant across the dataset.
func Build(battles []models.Battle, opts BuildOptions) (*Pokedex, error) {
	rows := BuildRoster(battles)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	d := &Pokedex{entries: make(map[string]RosterEntry, len(rows))}
	for _, r := range rows {
		if prev, ok := d.entries[r.Name]; ok && opts.Strict && !prev.sameSpecies(r) {
			return nil, fmt.Errorf("%w: %q in battles %q and %q", ErrRosterConflict, r.Name, prev.BattleID, r.BattleID)
		}
		d.entries[r.Name] = r
	}
	return d, nil
}

// MustBuild is Build with last-wins resolution, which cannot fail.
func MustBuild(battles []models.Battle) *Pokedex {
	d, _ := Build(battles, BuildOptions{})
	return d
}

// Len returns the number of known species.
func (d *Pokedex) Len() int { return len(d.entries) }

// Names returns the known species, sorted.
func (d *Pokedex) Names() []string {
	names := make([]string, 0, len(d.entries))
	for n := range d.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Known reports whether a species appears in any roster.
func (d *Pokedex) Known(name string) bool {
	_, ok := d.entries[name]
	return ok
}

// DefensiveTypes returns the lowercased, deduplicated types of a species,
// without the sentinel. Unknown species have no types, which makes every
// attack against them neutral.
func (d *Pokedex) DefensiveTypes(name string) []string {
	e, ok := d.entries[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, 2)
	for _, t := range [2]string{e.Type1, e.Type2} {
		t = strings.ToLower(t)
		if t == "" || typechart.IsSentinel(t) {
			continue
		}
		if len(out) == 1 && out[0] == t {
			continue
		}
		out = append(out, t)
	}
	return out
}

// AttackingTypes returns the types a species gets STAB on, in roster order.
func (d *Pokedex) AttackingTypes(name string) []string {
	return d.DefensiveTypes(name)
}

// HasType reports whether a species carries a type, case-insensitive.
func (d *Pokedex) HasType(name, typ string) bool {
	for _, t := range d.AttackingTypes(name) {
		if strings.EqualFold(t, typ) {
			return true
		}
	}
	return false
}

// Stats returns a species' base stats; zero for unknown species.
func (d *Pokedex) Stats(name string) BaseStats {
	return d.entries[name].Stats
}

// StatVector returns a species' base stats in StatNames order.
func (d *Pokedex) StatVector(name string) [6]float64 {
	return d.Stats(name).Vector()
}

// StatMap returns a species' base stats keyed by stat name.
func (d *Pokedex) StatMap(name string) map[string]float64 {
	return d.Stats(name).Map()
}

// AllDefensiveTypes returns every type observed in any roster, sorted.
func (d *Pokedex) AllDefensiveTypes() []string {
	set := make(map[string]struct{})
	for name := range d.entries {
		for _, t := range d.DefensiveTypes(name) {
			set[t] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

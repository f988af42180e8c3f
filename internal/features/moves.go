package features

import (
	"github.com/showdown-ml/battle-features/internal/dex"
	"github.com/showdown-ml/battle-features/internal/models"
	"github.com/showdown-ml/battle-features/internal/typechart"
)

const (
	stabBonus = 1.5
	// level 100: 2*100/5 + 2
	levelFactor = 42.0
	// mean of the 217..255 random roll
	averageRoll = 0.925
)

// EffectivenessOptions configures the type-effectiveness extractor.
type EffectivenessOptions struct {
	Options
	// IncludeStatusMoves scores STATUS moves too; otherwise they count as
	// a turn worth 0.
	IncludeStatusMoves bool
}

// NewEffectiveness averages, per turn, how effective each side's move type
// was against the opponent's active Pokémon.
func NewEffectiveness(opts EffectivenessOptions) (Extractor, error) {
	return perTurn{
		name:    "effectiveness",
		metrics: []string{"avg_effectiveness"},
		score: func(t *models.Turn, d *dex.Pokedex, acc []Pair) error {
			for _, side := range models.Sides {
				m := t.Move(side)
				if m == nil || (!opts.IncludeStatusMoves && !m.IsDamaging()) {
					continue
				}
				eff, err := typechart.Effectiveness(m.Type, d.DefensiveTypes(t.State(side.Opponent()).Name))
				if err != nil {
					return err
				}
				acc[0].Add(side, eff)
			}
			return nil
		},
	}.build(opts.Options), nil
}

// NewSTAB averages the same-type attack bonus of each side's moves. Status
// moves and turns without a move count as 1.0.
func NewSTAB(opts Options) (Extractor, error) {
	return perTurn{
		name:    "stab",
		metrics: []string{"avg_stab"},
		score: func(t *models.Turn, d *dex.Pokedex, acc []Pair) error {
			for _, side := range models.Sides {
				acc[0].Add(side, stabMultiplier(t.Move(side), t.State(side).Name, d))
			}
			return nil
		},
	}.build(opts), nil
}

func stabMultiplier(m *models.MoveDetails, attacker string, d *dex.Pokedex) float64 {
	if m == nil || !m.IsDamaging() {
		return 1.0
	}
	if d.HasType(attacker, m.Type) {
		return stabBonus
	}
	return 1.0
}

// NewCategoryImpact averages the attacker/defender stat ratio relevant to
// each move's category.
func NewCategoryImpact(opts Options) (Extractor, error) {
	return perTurn{
		name:    "category_impact",
		metrics: []string{"cat_impact"},
		score: func(t *models.Turn, d *dex.Pokedex, acc []Pair) error {
			for _, side := range models.Sides {
				m := t.Move(side)
				if m == nil {
					continue
				}
				att := d.Stats(t.State(side).Name)
				def := d.Stats(t.State(side.Opponent()).Name)
				switch m.Cat() {
				case models.CategoryPhysical:
					acc[0].Add(side, att.Atk/guard(def.Def))
				case models.CategorySpecial:
					acc[0].Add(side, att.SpA/guard(def.SpD))
				case models.CategoryStatus:
					acc[0].Add(side, 1)
				}
			}
			return nil
		},
	}.build(opts), nil
}

// guard replaces a zero denominator with 1.
func guard(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// NewApproxDamage averages the damage each side's moves would deal at
// level 100 with base stats and an average roll.
func NewApproxDamage(opts Options) (Extractor, error) {
	return perTurn{
		name:    "approx_damage",
		metrics: []string{"avg_damage"},
		score: func(t *models.Turn, d *dex.Pokedex, acc []Pair) error {
			for _, side := range models.Sides {
				dmg, err := approxDamage(t.Move(side), t.State(side).Name, t.State(side.Opponent()).Name, d)
				if err != nil {
					return err
				}
				acc[0].Add(side, dmg)
			}
			return nil
		},
	}.build(opts), nil
}

func approxDamage(m *models.MoveDetails, attacker, defender string, d *dex.Pokedex) (float64, error) {
	if m == nil || !m.IsDamaging() || m.BasePower == 0 {
		return 0, nil
	}
	att, def := d.Stats(attacker), d.Stats(defender)
	a, b := att.Atk, def.Def
	if m.Cat() == models.CategorySpecial {
		a, b = att.SpA, def.SpD
	}
	eff, err := typechart.Effectiveness(m.Type, d.DefensiveTypes(defender))
	if err != nil {
		return 0, err
	}
	base := (levelFactor*m.BasePower*a/guard(b))/50 + 2
	return base * stabMultiplier(m, attacker, d) * eff * averageRoll, nil
}

// NewMoveStats averages accuracy, base power and priority of each side's
// moves. A turn without a move scores 0 on all three.
func NewMoveStats(opts Options) (Extractor, error) {
	return perTurn{
		name:    "move_stats",
		metrics: []string{"avg_accuracy", "avg_base_power", "avg_priority"},
		score: func(t *models.Turn, _ *dex.Pokedex, acc []Pair) error {
			for _, side := range models.Sides {
				m := t.Move(side)
				if m == nil {
					continue
				}
				acc[0].Add(side, m.AccuracyOrDefault())
				acc[1].Add(side, m.BasePower)
				acc[2].Add(side, m.Priority)
			}
			return nil
		},
	}.build(opts), nil
}

// NewMoveCategoryRatio reports the share of turns each side spent on
// physical, special and status moves.
func NewMoveCategoryRatio(opts Options) (Extractor, error) {
	return perTurn{
		name:    "move_category_ratio",
		metrics: []string{"physical_ratio", "special_ratio", "status_ratio"},
		score: func(t *models.Turn, _ *dex.Pokedex, acc []Pair) error {
			for _, side := range models.Sides {
				m := t.Move(side)
				if m == nil {
					continue
				}
				switch m.Cat() {
				case models.CategoryPhysical:
					acc[0].Add(side, 1)
				case models.CategorySpecial:
					acc[1].Add(side, 1)
				case models.CategoryStatus:
					acc[2].Add(side, 1)
				}
			}
			return nil
		},
	}.build(opts), nil
}

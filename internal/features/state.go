package features

import (
	"fmt"

	"github.com/showdown-ml/battle-features/internal/dex"
	"github.com/showdown-ml/battle-features/internal/models"
)

// Stats that can carry boost stages.
var boostStats = [...]string{"atk", "def", "spa", "spd", "spe"}

// GranularStatuses are the statuses tracked one column each.
var GranularStatuses = []string{"brn", "frz", "par", "psn", "slp", "tox"}

// NegativeEffects are the volatile effects that hinder the Pokémon carrying them.
var NegativeEffects = []string{
	"confusion", "disable", "wrap", "bind", "clamp", "firespin",
	"partiallytrapped", "leechseed", "mustrecharge",
}

// NewBoostDiff averages the sum of the active Pokémon's boost stages.
func NewBoostDiff(opts Options) (Extractor, error) {
	return perTurn{
		name:    "boost_diff",
		metrics: []string{"avg_boost"},
		score: func(t *models.Turn, _ *dex.Pokedex, acc []Pair) error {
			for _, side := range models.Sides {
				s := t.State(side)
				total := 0
				for _, stat := range boostStats {
					total += s.Boost(stat)
				}
				acc[0].Add(side, float64(total))
			}
			return nil
		},
	}.build(opts), nil
}

// StatDiffOptions configures the per-turn base-stat extractor.
type StatDiffOptions struct {
	Options
	// Stats to compare; all six when empty.
	Stats []string
}

// NewStatDiff averages the active Pokémon's base stats per turn. HP is
// scaled by the current hp_pct.
func NewStatDiff(opts StatDiffOptions) (Extractor, error) {
	stats := opts.Stats
	if len(stats) == 0 {
		stats = dex.StatNames[:]
	}
	metrics := make([]string, len(stats))
	for i, s := range stats {
		if !dex.IsStatName(s) {
			return nil, fmt.Errorf("%w: unknown stat %q", ErrUnsupportedOption, s)
		}
		metrics[i] = "avg_" + s + "_per_turn"
	}
	return perTurn{
		name:    "stat_diff",
		metrics: metrics,
		score: func(t *models.Turn, d *dex.Pokedex, acc []Pair) error {
			for _, side := range models.Sides {
				s := t.State(side)
				base := d.Stats(s.Name)
				for i, stat := range stats {
					v, _ := base.Get(stat)
					if stat == "hp" {
						v *= s.HPPct
					}
					acc[i].Add(side, v)
				}
			}
			return nil
		},
	}.build(opts.Options), nil
}

// NewHPDiff averages the active Pokémon's hp_pct per turn.
func NewHPDiff(opts Options) (Extractor, error) {
	return perTurn{
		name:    "hp_diff",
		metrics: []string{"avg_active_hp"},
		score: func(t *models.Turn, _ *dex.Pokedex, acc []Pair) error {
			for _, side := range models.Sides {
				acc[0].Add(side, t.State(side).HPPct)
			}
			return nil
		},
	}.build(opts), nil
}

// NewSpeedAdvantage emits the share of turns where P1's active Pokémon is
// strictly faster minus the share where it is strictly slower.
func NewSpeedAdvantage(opts Options) (Extractor, error) {
	return perTurn{
		name:    "speed_advantage",
		metrics: []string{"speed_adv_ratio"},
		single:  true,
		score: func(t *models.Turn, d *dex.Pokedex, acc []Pair) error {
			s1 := d.Stats(t.P1State.Name).Spe
			s2 := d.Stats(t.P2State.Name).Spe
			switch {
			case s1 > s2:
				acc[0].P1++
			case s1 < s2:
				acc[0].P2++
			}
			return nil
		},
	}.build(opts), nil
}

// NewStatusTurns counts the turns each side spent with a status condition.
func NewStatusTurns(opts Options) (Extractor, error) {
	if err := opts.noSegments("status_turns"); err != nil {
		return nil, err
	}
	return pairExtractor("status_turns", []string{"status_turns"}, opts, func(b *models.Battle, _ *dex.Pokedex) ([]Pair, error) {
		return countTurns(b, 1, func(s *models.PokemonState, acc []float64) {
			if s.StatusOrDefault() != models.NoStatus {
				acc[0]++
			}
		}), nil
	}), nil
}

// VocabularyOptions configures the granular extractors.
type VocabularyOptions struct {
	Options
	// Vocabulary overrides the default statuses or effects. A non-nil
	// empty slice is rejected.
	Vocabulary []string
}

func (o VocabularyOptions) vocabulary(name string, def []string) ([]string, error) {
	if o.Vocabulary == nil {
		return def, nil
	}
	if len(o.Vocabulary) == 0 {
		return nil, fmt.Errorf("%w: %s needs a non-empty vocabulary", ErrUnsupportedOption, name)
	}
	return o.Vocabulary, nil
}

// NewStatusTurnsGranular counts, per status, the turns each side spent
// with it.
func NewStatusTurnsGranular(opts VocabularyOptions) (Extractor, error) {
	const name = "status_turns_granular"
	if err := opts.noSegments(name); err != nil {
		return nil, err
	}
	vocab, err := opts.vocabulary(name, GranularStatuses)
	if err != nil {
		return nil, err
	}
	metrics := make([]string, len(vocab))
	for i, s := range vocab {
		metrics[i] = "status_" + s + "_turns"
	}
	return pairExtractor(name, metrics, opts.Options, func(b *models.Battle, _ *dex.Pokedex) ([]Pair, error) {
		return countTurns(b, len(vocab), func(s *models.PokemonState, acc []float64) {
			status := s.StatusOrDefault()
			for i, v := range vocab {
				if status == v {
					acc[i]++
				}
			}
		}), nil
	}), nil
}

// NewNegativeEffectTurns counts the turns each side carried at least one
// negative effect.
func NewNegativeEffectTurns(opts Options) (Extractor, error) {
	if err := opts.noSegments("negative_effect_turns"); err != nil {
		return nil, err
	}
	return pairExtractor("negative_effect_turns", []string{"neg_effect_turns"}, opts, func(b *models.Battle, _ *dex.Pokedex) ([]Pair, error) {
		return countTurns(b, 1, func(s *models.PokemonState, acc []float64) {
			for _, e := range NegativeEffects {
				if s.HasEffect(e) {
					acc[0]++
					return
				}
			}
		}), nil
	}), nil
}

// NewNegativeEffectTurnsGranular counts, per negative effect, the turns
// each side carried it.
func NewNegativeEffectTurnsGranular(opts VocabularyOptions) (Extractor, error) {
	const name = "negative_effect_turns_granular"
	if err := opts.noSegments(name); err != nil {
		return nil, err
	}
	vocab, err := opts.vocabulary(name, NegativeEffects)
	if err != nil {
		return nil, err
	}
	metrics := make([]string, len(vocab))
	for i, e := range vocab {
		metrics[i] = "effect_" + e + "_turns"
	}
	return pairExtractor(name, metrics, opts.Options, func(b *models.Battle, _ *dex.Pokedex) ([]Pair, error) {
		return countTurns(b, len(vocab), func(s *models.PokemonState, acc []float64) {
			for i, e := range vocab {
				if s.HasEffect(e) {
					acc[i]++
				}
			}
		}), nil
	}), nil
}

// countTurns applies count to both active Pokémon on every turn.
func countTurns(b *models.Battle, metrics int, count func(s *models.PokemonState, acc []float64)) []Pair {
	p1 := make([]float64, metrics)
	p2 := make([]float64, metrics)
	for i := range b.Timeline {
		count(b.Timeline[i].P1State, p1)
		count(b.Timeline[i].P2State, p2)
	}
	out := make([]Pair, metrics)
	for i := range out {
		out[i] = Pair{P1: p1[i], P2: p2[i]}
	}
	return out
}

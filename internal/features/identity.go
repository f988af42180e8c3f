package features

import (
	"fmt"

	"github.com/showdown-ml/battle-features/internal/dex"
	"github.com/showdown-ml/battle-features/internal/models"
)

// Species is the default identity vocabulary: the Pokémon that make up
// nearly every team in the format.
var Species = []string{
	"alakazam", "articuno", "chansey", "cloyster", "dragonite", "exeggutor",
	"gengar", "golem", "jolteon", "jynx", "lapras", "persian",
	"rhydon", "slowbro", "snorlax", "starmie", "tauros", "victreebel", "zapdos",
}

func speciesIndex(vocab []string) map[string]int {
	idx := make(map[string]int, len(vocab))
	for i, s := range vocab {
		idx[s] = i
	}
	return idx
}

// NewPokemonOneHot flags, per vocabulary species, whether P1 brought it,
// whether P2 showed it, and whether either side lost it.
func NewPokemonOneHot(opts VocabularyOptions) (Extractor, error) {
	const name = "pokemon_one_hot"
	if err := opts.noSegments(name); err != nil {
		return nil, err
	}
	vocab, err := opts.vocabulary(name, Species)
	if err != nil {
		return nil, err
	}
	idx := speciesIndex(vocab)
	n := len(vocab)

	columns := make([]string, 0, 4*n)
	for _, prefix := range []string{"p1_has_", "p2_seen_", "p1_fainted_", "p2_fainted_"} {
		for _, s := range vocab {
			columns = append(columns, prefix+s)
		}
	}

	return singleExtractor(name, columns, opts.Options, func(b *models.Battle, _ *dex.Pokedex) ([]float64, error) {
		values := make([]float64, 4*n)
		set := func(block int, species string) {
			if i, ok := idx[species]; ok {
				values[block*n+i] = 1
			}
		}
		for _, p := range b.P1Team {
			set(0, p.Name)
		}
		for i := range b.Timeline {
			set(1, b.Timeline[i].P2State.Name)
		}
		fainted := faintedNames(b)
		for s := range fainted[models.P1] {
			set(2, s)
		}
		for s := range fainted[models.P2] {
			set(3, s)
		}
		return values, nil
	}), nil
}

// NewPokemonOrdinal encodes each team as TeamSize vocabulary indices, -1
// for an empty slot or a species outside the vocabulary. P1 slots follow
// the declared roster, P2 slots the order of first appearance.
func NewPokemonOrdinal(opts VocabularyOptions) (Extractor, error) {
	const name = "pokemon_ordinal"
	if err := opts.noSegments(name); err != nil {
		return nil, err
	}
	vocab, err := opts.vocabulary(name, Species)
	if err != nil {
		return nil, err
	}
	idx := speciesIndex(vocab)

	columns := make([]string, 0, 2*TeamSize)
	for _, side := range models.Sides {
		for i := 1; i <= TeamSize; i++ {
			columns = append(columns, fmt.Sprintf("%s_slot_%d", side, i))
		}
	}

	return singleExtractor(name, columns, opts.Options, func(b *models.Battle, _ *dex.Pokedex) ([]float64, error) {
		values := make([]float64, 0, 2*TeamSize)
		p1 := make([]string, 0, len(b.P1Team))
		for _, p := range b.P1Team {
			p1 = append(p1, p.Name)
		}
		values = appendSlots(values, p1, idx)
		values = appendSlots(values, dex.OpponentsSeen(b), idx)
		return values, nil
	}), nil
}

func appendSlots(dst []float64, names []string, idx map[string]int) []float64 {
	for i := 0; i < TeamSize; i++ {
		v := -1.0
		if i < len(names) {
			if j, ok := idx[names[i]]; ok {
				v = float64(j)
			}
		}
		dst = append(dst, v)
	}
	return dst
}

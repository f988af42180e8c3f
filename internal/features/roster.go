package features

import (
	"sort"

	"github.com/showdown-ml/battle-features/internal/dex"
	"github.com/showdown-ml/battle-features/internal/models"
	"github.com/showdown-ml/battle-features/internal/typechart"
)

// NewTeamVsLead compares the mean base stats of P1's roster with the base
// stats of P2's lead.
func NewTeamVsLead(opts Options) (Extractor, error) {
	if err := opts.noSegments("team_vs_lead"); err != nil {
		return nil, err
	}
	metrics := make([]string, len(dex.StatNames))
	for i, s := range dex.StatNames {
		metrics[i] = "base_" + s
	}
	return pairExtractor("team_vs_lead", metrics, opts, func(b *models.Battle, _ *dex.Pokedex) ([]Pair, error) {
		out := make([]Pair, len(dex.StatNames))
		for _, p := range b.P1Team {
			v := specStats(p).Vector()
			for i := range out {
				out[i].P1 += v[i]
			}
		}
		if n := len(b.P1Team); n > 0 {
			for i := range out {
				out[i].P1 /= float64(n)
			}
		}
		if lead, ok := b.Lead(); ok {
			v := specStats(lead).Vector()
			for i := range out {
				out[i].P2 = v[i]
			}
		}
		return out, nil
	}), nil
}

func specStats(p models.PokemonSpec) dex.BaseStats {
	return dex.BaseStats{HP: p.BaseHP, Atk: p.BaseAtk, Def: p.BaseDef, SpA: p.BaseSpA, SpD: p.BaseSpD, Spe: p.BaseSpe}
}

// NewBenchSize counts P1's declared Pokémon that never entered the field.
// P2's roster is unknown, so its side is always 0.
func NewBenchSize(opts Options) (Extractor, error) {
	if err := opts.noSegments("bench_size"); err != nil {
		return nil, err
	}
	return pairExtractor("bench_size", []string{"bench_size"}, opts, func(b *models.Battle, _ *dex.Pokedex) ([]Pair, error) {
		return []Pair{{P1: float64(len(dex.Bench(b)))}}, nil
	}), nil
}

// NewVoluntarySwaps counts the turns where a side's active Pokémon changed
// without a move being logged.
func NewVoluntarySwaps(opts Options) (Extractor, error) {
	if err := opts.noSegments("voluntary_swaps"); err != nil {
		return nil, err
	}
	return pairExtractor("voluntary_swaps", []string{"swaps"}, opts, func(b *models.Battle, _ *dex.Pokedex) ([]Pair, error) {
		var swaps Pair
		for i := 1; i < len(b.Timeline); i++ {
			prev, cur := &b.Timeline[i-1], &b.Timeline[i]
			for _, side := range models.Sides {
				if cur.State(side).Name != prev.State(side).Name && cur.Move(side) == nil {
					swaps.Add(side, 1)
				}
			}
		}
		return []Pair{swaps}, nil
	}), nil
}

// NewLeadMatchup scores the best multiplier each side's first active
// Pokémon lands on the other's.
func NewLeadMatchup(opts Options) (Extractor, error) {
	if err := opts.noSegments("lead_matchup"); err != nil {
		return nil, err
	}
	return pairExtractor("lead_matchup", []string{"lead_best_eff"}, opts, func(b *models.Battle, d *dex.Pokedex) ([]Pair, error) {
		if len(b.Timeline) == 0 {
			return []Pair{{}}, nil
		}
		first := &b.Timeline[0]
		n1, n2 := first.P1State.Name, first.P2State.Name
		p1, err := dex.BestAttack(d.AttackingTypes(n1), d.DefensiveTypes(n2))
		if err != nil {
			return nil, err
		}
		p2, err := dex.BestAttack(d.AttackingTypes(n2), d.DefensiveTypes(n1))
		if err != nil {
			return nil, err
		}
		return []Pair{{P1: p1, P2: p2}}, nil
	}), nil
}

// NewFinalTypePower scores how well each side's surviving Pokémon hit the
// other side's survivors, averaged over every attacker/defender pair.
func NewFinalTypePower(opts Options) (Extractor, error) {
	if err := opts.noSegments("final_type_power"); err != nil {
		return nil, err
	}
	return pairExtractor("final_type_power", []string{"final_type_power"}, opts, func(b *models.Battle, d *dex.Pokedex) ([]Pair, error) {
		alive := dex.LastSeenHP(b, false)
		a, bb := sortedKeys(alive.P1), sortedKeys(alive.P2)
		p1, err := typePower(a, bb, d)
		if err != nil {
			return nil, err
		}
		p2, err := typePower(bb, a, d)
		if err != nil {
			return nil, err
		}
		return []Pair{{P1: p1, P2: p2}}, nil
	}), nil
}

func typePower(attackers, defenders []string, d *dex.Pokedex) (float64, error) {
	if len(attackers) == 0 || len(defenders) == 0 {
		return 0, nil
	}
	total := 0.0
	for _, att := range attackers {
		types := d.AttackingTypes(att)
		for _, def := range defenders {
			defTypes := d.DefensiveTypes(def)
			if len(types) == 0 {
				total += 1.0
				continue
			}
			sum := 0.0
			for _, t := range types {
				eff, err := typechart.Effectiveness(t, defTypes)
				if err != nil {
					return 0, err
				}
				sum += eff
			}
			total += sum / float64(len(types))
		}
	}
	return total / float64(len(attackers)*len(defenders)), nil
}

func sortedKeys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NewTeamPotential reports the team-potential metrics of each side at the
// end of the battle. P1 attacks with its survivors and its bench; P2, whose
// roster is unknown, with its observed survivors.
func NewTeamPotential(opts Options) (Extractor, error) {
	if err := opts.noSegments("team_potential"); err != nil {
		return nil, err
	}
	metrics := make([]string, len(dex.PotentialMetrics))
	for i, m := range dex.PotentialMetrics {
		metrics[i] = "potential_" + m
	}
	return pairExtractor("team_potential", metrics, opts, func(b *models.Battle, d *dex.Pokedex) ([]Pair, error) {
		p1Team := append(dex.Survivors(b, models.P1), dex.Bench(b)...)
		p2Team := dex.Survivors(b, models.P2)

		p1, err := dex.TeamPotential(p1Team, p2Team, d)
		if err != nil {
			return nil, err
		}
		p2, err := dex.TeamPotential(p2Team, p1Team, d)
		if err != nil {
			return nil, err
		}
		v1, v2 := p1.Values(), p2.Values()
		out := make([]Pair, len(v1))
		for i := range out {
			out[i] = Pair{P1: v1[i], P2: v2[i]}
		}
		return out, nil
	}), nil
}

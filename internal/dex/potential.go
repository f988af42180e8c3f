package dex

import (
	"math"

	"github.com/showdown-ml/battle-features/internal/typechart"
)

// MaxEffectiveness is the best multiplier a single attack can land.
const MaxEffectiveness = 4.0

// PotentialMetrics lists the Potential fields in output order.
var PotentialMetrics = [...]string{
	"avg_best_potential", "min_best_potential", "max_best_potential",
	"avg_redundancy", "min_redundancy", "coverage_fraction", "entropy",
}

// Potential summarises how well one team's types hit another team.
type Potential struct {
	AvgBest   float64
	MinBest   float64
	MaxBest   float64
	AvgRedund float64
	MinRedund float64
	Coverage  float64
	Entropy   float64
}

// Values returns the metrics in PotentialMetrics order.
func (p Potential) Values() []float64 {
	return []float64{p.AvgBest, p.MinBest, p.MaxBest, p.AvgRedund, p.MinRedund, p.Coverage, p.Entropy}
}

// TeamPotential scores attackers against defenders. For each defender it
// takes the best effectiveness any attacker type lands and counts the
// attackers that land at least 2x, then aggregates over defenders.
//
// No attackers scores 0 everywhere. Attackers against an empty defender
// set score the ceiling: 4.0 potential, full coverage, redundancy equal to
// the attacker count and zero entropy.
func TeamPotential(attackers, defenders []string, d *Pokedex) (Potential, error) {
	if len(attackers) == 0 {
		return Potential{}, nil
	}
	if len(defenders) == 0 {
		n := float64(len(attackers))
		return Potential{
			AvgBest: MaxEffectiveness, MinBest: MaxEffectiveness, MaxBest: MaxEffectiveness,
			AvgRedund: n, MinRedund: n,
			Coverage: 1.0,
		}, nil
	}

	best := make([]float64, 0, len(defenders))
	redundancy := make([]float64, 0, len(defenders))
	for _, def := range defenders {
		defTypes := d.DefensiveTypes(def)

		top := math.Inf(-1)
		strong := 0
		for _, att := range attackers {
			eff, err := BestAttack(d.AttackingTypes(att), defTypes)
			if err != nil {
				return Potential{}, err
			}
			if eff > top {
				top = eff
			}
			if eff >= 2.0 {
				strong++
			}
		}
		best = append(best, top)
		redundancy = append(redundancy, float64(strong))
	}

	p := Potential{
		AvgBest:   mean(best),
		MinBest:   minOf(best),
		MaxBest:   maxOf(best),
		AvgRedund: mean(redundancy),
		MinRedund: minOf(redundancy),
		Entropy:   normalizedEntropy(best),
	}
	covered := 0
	for _, b := range best {
		if b >= 2.0 {
			covered++
		}
	}
	p.Coverage = float64(covered) / float64(len(best))
	return p, nil
}

// BestAttack is the best multiplier any of the attacker's types lands. An
// attacker with no known types hits neutrally.
func BestAttack(attTypes, defTypes []string) (float64, error) {
	if len(attTypes) == 0 {
		return 1.0, nil
	}
	top := math.Inf(-1)
	for _, t := range attTypes {
		eff, err := typechart.Effectiveness(t, defTypes)
		if err != nil {
			return 0, err
		}
		if eff > top {
			top = eff
		}
	}
	return top, nil
}

// normalizedEntropy is the Shannon entropy of the distribution of values,
// divided by ln(n) when there is more than one value.
func normalizedEntropy(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	if sum <= 0 {
		return 0.0
	}
	h := 0.0
	for _, v := range values {
		p := v / sum
		h -= p * math.Log(p+1e-12)
	}
	if len(values) > 1 {
		h /= math.Log(float64(len(values)))
	}
	return h
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

func minOf(v []float64) float64 {
	m := math.Inf(1)
	for _, x := range v {
		m = math.Min(m, x)
	}
	return m
}

func maxOf(v []float64) float64 {
	m := math.Inf(-1)
	for _, x := range v {
		m = math.Max(m, x)
	}
	return m
}

package dex

import (
	"sort"

	"github.com/showdown-ml/battle-features/internal/models"
)

// HPSnapshot maps each side's observed Pokémon to their last seen hp_pct.
type HPSnapshot struct {
	P1 map[string]float64
	P2 map[string]float64
}

// Side returns the map of one side.
func (s HPSnapshot) Side(side models.Side) map[string]float64 {
	if side == models.P1 {
		return s.P1
	}
	return s.P2
}

// LastSeenHP walks a battle's timeline once and keeps, per side, the last
// hp_pct observed for each Pokémon. Fainted Pokémon are dropped unless
// includeFainted is set.
func LastSeenHP(b *models.Battle, includeFainted bool) HPSnapshot {
	p1 := make(map[string]float64)
	p2 := make(map[string]float64)
	for i := range b.Timeline {
		t := &b.Timeline[i]
		p1[t.P1State.Name] = t.P1State.HPPct
		p2[t.P2State.Name] = t.P2State.HPPct
	}
	if !includeFainted {
		dropFainted(p1)
		dropFainted(p2)
	}
	return HPSnapshot{P1: p1, P2: p2}
}

func dropFainted(m map[string]float64) {
	for name, hp := range m {
		if hp <= 0 {
			delete(m, name)
		}
	}
}

// Survivors returns the sorted names of a side's Pokémon still standing at
// the end of the timeline.
func Survivors(b *models.Battle, side models.Side) []string {
	return sortedNames(LastSeenHP(b, false).Side(side))
}

// Observed returns the sorted names of every Pokémon a side sent out.
func Observed(b *models.Battle, side models.Side) []string {
	set := make(map[string]struct{})
	for i := range b.Timeline {
		set[b.Timeline[i].State(side).Name] = struct{}{}
	}
	return sortedKeys(set)
}

// Bench returns P1's declared Pokémon that never appeared in the timeline.
func Bench(b *models.Battle) []string {
	appeared := make(map[string]struct{}, len(b.Timeline))
	for i := range b.Timeline {
		appeared[b.Timeline[i].P1State.Name] = struct{}{}
	}
	bench := make(map[string]struct{})
	for _, p := range b.P1Team {
		if _, ok := appeared[p.Name]; !ok {
			bench[p.Name] = struct{}{}
		}
	}
	return sortedKeys(bench)
}

// OpponentsSeen returns P2's Pokémon in order of first appearance.
func OpponentsSeen(b *models.Battle) []string {
	return appearanceOrder(b, models.P2)
}

func appearanceOrder(b *models.Battle, side models.Side) []string {
	var out []string
	seen := make(map[string]struct{})
	for i := range b.Timeline {
		name := b.Timeline[i].State(side).Name
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// StatusConditions returns every status observed in the dataset.
func StatusConditions(battles []models.Battle) []string {
	set := make(map[string]struct{})
	for i := range battles {
		for j := range battles[i].Timeline {
			t := &battles[i].Timeline[j]
			set[t.P1State.StatusOrDefault()] = struct{}{}
			set[t.P2State.StatusOrDefault()] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Effects returns every effect observed in the dataset.
func Effects(battles []models.Battle) []string {
	set := make(map[string]struct{})
	for i := range battles {
		for j := range battles[i].Timeline {
			t := &battles[i].Timeline[j]
			for _, e := range t.P1State.Effects {
				set[e] = struct{}{}
			}
			for _, e := range t.P2State.Effects {
				set[e] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

func sortedNames(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

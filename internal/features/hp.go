package features

import (
	"github.com/showdown-ml/battle-features/internal/dex"
	"github.com/showdown-ml/battle-features/internal/models"
)

// teamHP averages last-seen HP over a full team. Slots never seen are
// presumed healthy. The divisor is max(TeamSize, len(hp)), so a log naming
// more than six Pokémon for one side still yields a mean in [0, 1].
func teamHP(hp map[string]float64) (mean float64, values []float64) {
	n := max(TeamSize, len(hp))
	values = make([]float64, 0, n)
	for _, v := range hp {
		values = append(values, v)
	}
	for len(values) < n {
		values = append(values, 1.0)
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(n), values
}

// NewFinalHP reports each side's mean team HP at the end of the timeline.
func NewFinalHP(opts Options) (Extractor, error) {
	if err := opts.noSegments("final_hp"); err != nil {
		return nil, err
	}
	return pairExtractor("final_hp", []string{"avg_final_hp_pct"}, opts, func(b *models.Battle, _ *dex.Pokedex) ([]Pair, error) {
		last := dex.LastSeenHP(b, true)
		p1, _ := teamHP(last.P1)
		p2, _ := teamHP(last.P2)
		return []Pair{{P1: p1, P2: p2}}, nil
	}), nil
}

// NewFinalHPVariance reports the population variance of each side's final
// team HP, over the same imputed slots as NewFinalHP.
func NewFinalHPVariance(opts Options) (Extractor, error) {
	if err := opts.noSegments("final_hp_variance"); err != nil {
		return nil, err
	}
	return pairExtractor("final_hp_variance", []string{"final_hp_var"}, opts, func(b *models.Battle, _ *dex.Pokedex) ([]Pair, error) {
		last := dex.LastSeenHP(b, true)
		return []Pair{{P1: hpVariance(last.P1), P2: hpVariance(last.P2)}}, nil
	}), nil
}

func hpVariance(hp map[string]float64) float64 {
	mean, values := teamHP(hp)
	v := 0.0
	for _, x := range values {
		v += (x - mean) * (x - mean)
	}
	return v / float64(len(values))
}

// faintedNames returns, per side, the distinct Pokémon seen at 0 HP.
func faintedNames(b *models.Battle) [2]map[string]struct{} {
	out := [2]map[string]struct{}{{}, {}}
	for i := range b.Timeline {
		t := &b.Timeline[i]
		for _, side := range models.Sides {
			if s := t.State(side); s.Fainted() {
				out[side][s.Name] = struct{}{}
			}
		}
	}
	return out
}

// NewFaintCount counts the distinct Pokémon each side lost.
func NewFaintCount(opts Options) (Extractor, error) {
	if err := opts.noSegments("faint_count"); err != nil {
		return nil, err
	}
	return pairExtractor("faint_count", []string{"fainted"}, opts, func(b *models.Battle, _ *dex.Pokedex) ([]Pair, error) {
		f := faintedNames(b)
		return []Pair{{P1: float64(len(f[models.P1])), P2: float64(len(f[models.P2]))}}, nil
	}), nil
}

// NewAliveCount reports how many of each side's six Pokémon are still
// standing at the end.
func NewAliveCount(opts Options) (Extractor, error) {
	if err := opts.noSegments("alive_count"); err != nil {
		return nil, err
	}
	return pairExtractor("alive_count", []string{"alive"}, opts, func(b *models.Battle, _ *dex.Pokedex) ([]Pair, error) {
		f := faintedNames(b)
		return []Pair{{
			P1: float64(max(0, TeamSize-len(f[models.P1]))),
			P2: float64(max(0, TeamSize-len(f[models.P2]))),
		}}, nil
	}), nil
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// flipCounter counts leader changes. Ties are ignored: the leader before a
// tie is compared with the leader after it, so +1, 0, -1 is one flip and
// +1, 0, +1 is none. The first non-tied state sets the leader without
// counting.
type flipCounter struct {
	leader int
	flips  int
}

func (f *flipCounter) observe(state int) {
	if state == 0 {
		return
	}
	if f.leader != 0 && state != f.leader {
		f.flips++
	}
	f.leader = state
}

// NewHPAdvantageFlips counts how often the lead in active-Pokémon HP
// changed hands.
func NewHPAdvantageFlips(opts Options) (Extractor, error) {
	if err := opts.noSegments("hp_advantage_flips"); err != nil {
		return nil, err
	}
	return singleExtractor("hp_advantage_flips", []string{"total_hp_adv_flips"}, opts, func(b *models.Battle, _ *dex.Pokedex) ([]float64, error) {
		var fc flipCounter
		for i := range b.Timeline {
			t := &b.Timeline[i]
			fc.observe(sign(t.P1State.HPPct - t.P2State.HPPct))
		}
		return []float64{float64(fc.flips)}, nil
	}), nil
}

// NewTeamHPAdvantageFlips counts how often the lead in mean team HP
// changed hands.
func NewTeamHPAdvantageFlips(opts Options) (Extractor, error) {
	if err := opts.noSegments("team_hp_advantage_flips"); err != nil {
		return nil, err
	}
	return singleExtractor("team_hp_advantage_flips", []string{"team_hp_adv_flips"}, opts, func(b *models.Battle, _ *dex.Pokedex) ([]float64, error) {
		var fc flipCounter
		p1 := make(map[string]float64)
		p2 := make(map[string]float64)
		for i := range b.Timeline {
			t := &b.Timeline[i]
			p1[t.P1State.Name] = t.P1State.HPPct
			p2[t.P2State.Name] = t.P2State.HPPct
			m1, _ := teamHP(p1)
			m2, _ := teamHP(p2)
			fc.observe(sign(m1 - m2))
		}
		return []float64{float64(fc.flips)}, nil
	}), nil
}

// NewDamageEfficiency reports each side's damage dealt over damage taken.
// Damage is the sum of HP drops against each Pokémon's last seen HP,
// starting from full health. A side that took no damage scores dealt+1.
func NewDamageEfficiency(opts Options) (Extractor, error) {
	if err := opts.noSegments("damage_efficiency"); err != nil {
		return nil, err
	}
	return pairExtractor("damage_efficiency", []string{"der"}, opts, func(b *models.Battle, _ *dex.Pokedex) ([]Pair, error) {
		loss := hpLoss(b)
		return []Pair{{
			P1: der(loss.P2, loss.P1),
			P2: der(loss.P1, loss.P2),
		}}, nil
	}), nil
}

func der(dealt, taken float64) float64 {
	if taken == 0 {
		return dealt + 1.0
	}
	return dealt / taken
}

// hpLoss sums the HP each side lost over the timeline.
func hpLoss(b *models.Battle) Pair {
	last := [2]map[string]float64{{}, {}}
	for _, side := range models.Sides {
		for _, p := range b.Roster(side) {
			last[side][p.Name] = 1.0
		}
	}
	var loss Pair
	for i := range b.Timeline {
		t := &b.Timeline[i]
		for _, side := range models.Sides {
			s := t.State(side)
			prev, ok := last[side][s.Name]
			if !ok {
				prev = 1.0
			}
			if s.HPPct < prev {
				loss.Add(side, prev-s.HPPct)
			}
			last[side][s.Name] = s.HPPct
		}
	}
	return loss
}

// NewFirstKO scores the first knockout of the battle: +1/turn when P1
// landed it, -1/turn when P2 did, 0 when nobody did or both fell on the
// same turn.
func NewFirstKO(opts Options) (Extractor, error) {
	if err := opts.noSegments("first_ko"); err != nil {
		return nil, err
	}
	return singleExtractor("first_ko", []string{"first_ko_momentum"}, opts, func(b *models.Battle, _ *dex.Pokedex) ([]float64, error) {
		return []float64{firstKOMomentum(b)}, nil
	}), nil
}

func firstKOMomentum(b *models.Battle) float64 {
	last := [2]map[string]float64{{}, {}}
	knockedOut := func(side models.Side, s *models.PokemonState) bool {
		prev, ok := last[side][s.Name]
		if !ok {
			prev = 1.0
		}
		last[side][s.Name] = s.HPPct
		return prev > 0 && s.Fainted()
	}
	for i := range b.Timeline {
		t := &b.Timeline[i]
		p2Down := knockedOut(models.P2, t.P2State)
		p1Down := knockedOut(models.P1, t.P1State)
		switch {
		case p1Down && p2Down:
			return 0.0
		case p2Down:
			return 1.0 / float64(t.Number(i))
		case p1Down:
			return -1.0 / float64(t.Number(i))
		}
	}
	return 0.0
}

package dex

import (
	"math"
	"testing"

	tu "github.com/showdown-ml/battle-features/internal/testutils"
)

func TestTeamPotential_Boundaries(t *testing.T) {
	d := MustBuild(tu.SampleBattles())

	empty, err := TeamPotential(nil, []string{"snorlax", "zapdos"}, d)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range empty.Values() {
		if v != 0 {
			t.Errorf("no attackers: %s = %v, want 0", PotentialMetrics[i], v)
		}
	}

	attackers := []string{"starmie", "zapdos", "gengar"}
	ceiling, err := TeamPotential(attackers, nil, d)
	if err != nil {
		t.Fatal(err)
	}
	if ceiling.AvgBest != 4.0 || ceiling.MinBest != 4.0 || ceiling.MaxBest != 4.0 {
		t.Errorf("no defenders: best potential = %+v, want 4.0", ceiling)
	}
	if ceiling.Coverage != 1.0 || ceiling.Entropy != 0.0 {
		t.Errorf("no defenders: coverage/entropy = %v/%v", ceiling.Coverage, ceiling.Entropy)
	}
	if ceiling.AvgRedund != 3 || ceiling.MinRedund != 3 {
		t.Errorf("no defenders: redundancy = %v, want 3", ceiling.AvgRedund)
	}
}

func TestTeamPotential_Standard(t *testing.T) {
	d := MustBuild(tu.SampleBattles())

	// zapdos (electric/flying) vs starmie (water/psychic): electric 2x.
	// zapdos vs exeggutor (grass/psychic): flying 2x, electric 0.5x.
	p, err := TeamPotential([]string{"zapdos"}, []string{"starmie", "exeggutor"}, d)
	if err != nil {
		t.Fatal(err)
	}
	if p.AvgBest != 2.0 || p.MinBest != 2.0 || p.MaxBest != 2.0 {
		t.Errorf("best = %+v, want all 2.0", p)
	}
	if p.Coverage != 1.0 {
		t.Errorf("coverage = %v, want 1.0", p.Coverage)
	}
	if p.AvgRedund != 1.0 {
		t.Errorf("redundancy = %v, want 1.0", p.AvgRedund)
	}
	// Uniform distribution over two defenders normalises to ~1.
	if math.Abs(p.Entropy-1.0) > 1e-9 {
		t.Errorf("entropy = %v, want ~1.0", p.Entropy)
	}
}

func TestTeamPotential_SingleDefenderEntropyUnnormalised(t *testing.T) {
	d := MustBuild(tu.SampleBattles())
	p, err := TeamPotential([]string{"tauros"}, []string{"gengar"}, d)
	if err != nil {
		t.Fatal(err)
	}
	// normal vs ghost is 0: sum of best is 0 so entropy is 0.
	if p.AvgBest != 0 || p.Entropy != 0 || p.Coverage != 0 {
		t.Errorf("tauros vs gengar = %+v", p)
	}
}

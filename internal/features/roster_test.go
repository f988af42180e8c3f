package features

import (
	"testing"

	"github.com/showdown-ml/battle-features/internal/models"
	tu "github.com/showdown-ml/battle-features/internal/testutils"
)

func TestTeamVsLead(t *testing.T) {
	battles := tu.SampleBattles()
	battles = append(battles, tu.Battle("nolead", tu.Won(true), tu.Team("tauros"), nil))

	e, err := NewTeamVsLead(Options{})
	tbl := extract(t, e, err, battles...)
	// starmie, snorlax, zapdos vs tauros
	if got := col(t, tbl, 0, "base_hp_p1"); !approx(got, (60+160+90)/3.0) {
		t.Errorf("base_hp_p1 = %v", got)
	}
	if got := col(t, tbl, 0, "base_spe_p2"); got != 110 {
		t.Errorf("base_spe_p2 = %v, want 110", got)
	}
	if got := col(t, tbl, 3, "base_atk_p2"); got != 0 {
		t.Errorf("missing lead atk = %v, want 0", got)
	}
}

func TestBenchSize(t *testing.T) {
	e, err := NewBenchSize(Options{})
	tbl := extract(t, e, err, tu.SampleBattles()...)
	want := []float64{1, 0, 1}
	for i, w := range want {
		if got := col(t, tbl, i, "bench_size_p1"); got != w {
			t.Errorf("%s: bench = %v, want %v", tbl.Rows[i].BattleID, got, w)
		}
		if got := col(t, tbl, i, "bench_size_p2"); got != 0 {
			t.Errorf("%s: p2 bench = %v, want 0", tbl.Rows[i].BattleID, got)
		}
	}
}

func TestVoluntarySwaps(t *testing.T) {
	hit := tu.Move("normal", models.CategoryPhysical, 80)
	b := tu.Battle("swaps", tu.Won(true), tu.Team("starmie", "snorlax"), tu.Lead("tauros"),
		tu.Turn(1, tu.State("starmie", 1), tu.State("tauros", 1), hit, hit),
		tu.Turn(2, tu.State("snorlax", 1), tu.State("tauros", 1), nil, hit),
		tu.Turn(3, tu.State("snorlax", 1), tu.State("chansey", 1), hit, hit),
		tu.Turn(4, tu.State("starmie", 1), tu.State("chansey", 1), &models.MoveDetails{}, nil),
	)
	e, err := NewVoluntarySwaps(Options{})
	tbl := extract(t, e, err, b)
	if got := col(t, tbl, 0, "swaps_p1"); got != 2 {
		t.Errorf("swaps_p1 = %v, want 2", got)
	}
	if got := col(t, tbl, 0, "swaps_p2"); got != 0 {
		t.Errorf("swaps_p2 = %v, want 0 (switch-in attacked)", got)
	}
}

func TestLeadMatchup(t *testing.T) {
	e, err := NewLeadMatchup(Options{})
	tbl := extract(t, e, err, tu.SampleBattles()...)
	// gengar (ghost/poison) vs snorlax: poison is neutral; normal cannot touch ghost
	if got := col(t, tbl, 2, "lead_best_eff_p1"); got != 1 {
		t.Errorf("p1 lead eff = %v, want 1", got)
	}
	if got := col(t, tbl, 2, "lead_best_eff_p2"); got != 0 {
		t.Errorf("p2 lead eff = %v, want 0", got)
	}
}

func TestFinalTypePower(t *testing.T) {
	e, err := NewFinalTypePower(Options{})
	tbl := extract(t, e, err, tu.SampleBattles()...)

	// b2: exeggutor (grass/psychic) vs zapdos (electric/flying)
	if got := col(t, tbl, 1, "final_type_power_p1"); !approx(got, (0.5+1.0)/2) {
		t.Errorf("p1 power = %v, want 0.75", got)
	}
	if got := col(t, tbl, 1, "final_type_power_p2"); !approx(got, (0.5+2.0)/2) {
		t.Errorf("p2 power = %v, want 1.25", got)
	}

	wiped := hpBattle("wiped", [][2]float64{{1.0, 1.0}, {0.0, 0.5}})
	tbl = extract(t, e, err, wiped)
	if p1, p2 := col(t, tbl, 0, "final_type_power_p1"), col(t, tbl, 0, "final_type_power_p2"); p1 != 0 || p2 != 0 {
		t.Errorf("no survivors: p1=%v p2=%v, want 0", p1, p2)
	}
}

func TestTeamPotentialColumns(t *testing.T) {
	// P1's only Pokémon faints and the bench is empty: P1 has no attackers
	// while P2 faces no defenders.
	wiped := hpBattle("wiped", [][2]float64{{1.0, 1.0}, {0.0, 0.5}})
	e, err := NewTeamPotential(Options{})
	tbl := extract(t, e, err, wiped)

	if got := col(t, tbl, 0, "potential_avg_best_potential_p1"); got != 0 {
		t.Errorf("p1 potential = %v, want 0", got)
	}
	if got := col(t, tbl, 0, "potential_avg_best_potential_p2"); got != 4.0 {
		t.Errorf("p2 potential = %v, want 4.0", got)
	}
	if got := col(t, tbl, 0, "potential_coverage_fraction_p2"); got != 1.0 {
		t.Errorf("p2 coverage = %v, want 1.0", got)
	}
	if got := col(t, tbl, 0, "potential_avg_redundancy_p2"); got != 1.0 {
		t.Errorf("p2 redundancy = %v, want 1.0", got)
	}
}

func TestSpeedAdvantage(t *testing.T) {
	e, err := NewSpeedAdvantage(Options{})
	tbl := extract(t, e, err, tu.SampleBattles()[0])
	// starmie outspeeds tauros twice, snorlax is slower three times
	if got := col(t, tbl, 0, "speed_adv_ratio"); !approx(got, -0.2) {
		t.Errorf("speed_adv_ratio = %v, want -0.2", got)
	}
}

func TestStatDiff(t *testing.T) {
	b := tu.Battle("stats", tu.Won(true), tu.Team("starmie"), tu.Lead("tauros"),
		tu.Turn(1, tu.State("starmie", 0.5), tu.State("tauros", 1.0), nil, nil),
		tu.Turn(2, tu.State("starmie", 1.0), tu.State("tauros", 1.0), nil, nil),
	)
	e, err := NewStatDiff(StatDiffOptions{Options: Options{Difference: true}, Stats: []string{"hp", "spe"}})
	tbl := extract(t, e, err, b)
	if len(tbl.Columns) != 2 {
		t.Fatalf("columns = %v", tbl.Columns)
	}
	// (30 + 60)/2 - 75
	if got := col(t, tbl, 0, "avg_hp_per_turn_diff"); !approx(got, 45-75) {
		t.Errorf("hp diff = %v, want -30", got)
	}
	if got := col(t, tbl, 0, "avg_spe_per_turn_diff"); !approx(got, 5) {
		t.Errorf("spe diff = %v, want 5", got)
	}
}

func TestBoostDiff(t *testing.T) {
	boosted := tu.State("starmie", 1)
	boosted.Boosts = map[string]int{"spa": 2, "spe": 1, "def": -1}
	b := tu.Battle("boost", tu.Won(true), tu.Team("starmie"), tu.Lead("tauros"),
		tu.Turn(1, boosted, tu.State("tauros", 1), nil, nil),
		tu.Turn(2, tu.State("starmie", 1), tu.State("tauros", 1), nil, nil),
	)
	e, err := NewBoostDiff(Options{})
	tbl := extract(t, e, err, b)
	if got := col(t, tbl, 0, "avg_boost_p1"); got != 1 {
		t.Errorf("avg_boost_p1 = %v, want 1", got)
	}
}

func TestStatusAndEffectTurns(t *testing.T) {
	par := tu.State("starmie", 1)
	par.Status = "PAR"
	confused := tu.State("tauros", 1)
	confused.Effects = []string{"confusion", "wrap"}
	harmless := tu.State("tauros", 1)
	harmless.Effects = []string{"substitute"}

	b := tu.Battle("status", tu.Won(true), tu.Team("starmie"), tu.Lead("tauros"),
		tu.Turn(1, par, confused, nil, nil),
		tu.Turn(2, par, harmless, nil, nil),
		tu.Turn(3, tu.State("starmie", 1), confused, nil, nil),
	)

	e, err := NewStatusTurns(Options{})
	tbl := extract(t, e, err, b)
	if got := col(t, tbl, 0, "status_turns_p1"); got != 2 {
		t.Errorf("status_turns_p1 = %v, want 2", got)
	}

	e, err = NewStatusTurnsGranular(VocabularyOptions{})
	tbl = extract(t, e, err, b)
	if len(tbl.Columns) != 2*len(GranularStatuses) {
		t.Errorf("granular columns = %d", len(tbl.Columns))
	}
	if got := col(t, tbl, 0, "status_par_turns_p1"); got != 2 {
		t.Errorf("status_par_turns_p1 = %v, want 2", got)
	}

	e, err = NewNegativeEffectTurns(Options{})
	tbl = extract(t, e, err, b)
	if got := col(t, tbl, 0, "neg_effect_turns_p2"); got != 2 {
		t.Errorf("neg_effect_turns_p2 = %v, want 2", got)
	}

	e, err = NewNegativeEffectTurnsGranular(VocabularyOptions{Options: Options{Difference: true}})
	tbl = extract(t, e, err, b)
	if got := col(t, tbl, 0, "effect_wrap_turns_diff"); got != -2 {
		t.Errorf("effect_wrap_turns_diff = %v, want -2", got)
	}
}

func TestPokemonIdentity(t *testing.T) {
	b := tu.SampleBattles()[0]

	e, err := NewPokemonOrdinal(VocabularyOptions{})
	tbl := extract(t, e, err, b)
	want := map[string]float64{
		"p1_slot_1": 15, "p1_slot_2": 14, "p1_slot_3": 18, "p1_slot_4": -1,
		"p2_slot_1": 16, "p2_slot_2": 2, "p2_slot_3": -1,
	}
	for c, w := range want {
		if got := col(t, tbl, 0, c); got != w {
			t.Errorf("%s = %v, want %v", c, got, w)
		}
	}

	e, err = NewPokemonOneHot(VocabularyOptions{Vocabulary: []string{"starmie", "tauros", "mew"}})
	tbl = extract(t, e, err, b)
	flags := map[string]float64{
		"p1_has_starmie": 1, "p1_has_tauros": 0, "p2_seen_tauros": 1,
		"p2_fainted_tauros": 1, "p1_fainted_starmie": 0, "p2_seen_mew": 0,
	}
	for c, w := range flags {
		if got := col(t, tbl, 0, c); got != w {
			t.Errorf("%s = %v, want %v", c, got, w)
		}
	}
}

// Package testutils provides battle fixtures shared by package tests.
package testutils

import (
	"github.com/showdown-ml/battle-features/internal/models"
)

// Species fixtures, keyed by name.
var Species = map[string]models.PokemonSpec{
	"starmie":   spec("starmie", "water", "psychic", 60, 75, 85, 100, 100, 115),
	"snorlax":   spec("snorlax", "normal", "notype", 160, 110, 65, 65, 110, 30),
	"tauros":    spec("tauros", "normal", "notype", 75, 100, 95, 40, 70, 110),
	"chansey":   spec("chansey", "normal", "notype", 250, 5, 5, 35, 105, 50),
	"alakazam":  spec("alakazam", "psychic", "notype", 55, 50, 45, 135, 95, 120),
	"exeggutor": spec("exeggutor", "grass", "psychic", 95, 95, 85, 125, 75, 55),
	"zapdos":    spec("zapdos", "electric", "flying", 90, 90, 85, 125, 90, 100),
	"gengar":    spec("gengar", "ghost", "poison", 60, 65, 60, 130, 75, 110),
}

func spec(name, t1, t2 string, hp, atk, def, spa, spd, spe float64) models.PokemonSpec {
	return models.PokemonSpec{
		Name: name, Level: 100, Types: []string{t1, t2},
		BaseHP: hp, BaseAtk: atk, BaseDef: def, BaseSpA: spa, BaseSpD: spd, BaseSpe: spe,
	}
}

// Team returns the fixtures for the given names, in order.
func Team(names ...string) []models.PokemonSpec {
	out := make([]models.PokemonSpec, 0, len(names))
	for _, n := range names {
		out = append(out, Species[n])
	}
	return out
}

// Lead returns a pointer to a fixture, for P2 leads.
func Lead(name string) *models.PokemonSpec {
	s := Species[name]
	return &s
}

// Won returns a label pointer.
func Won(b bool) *bool { return &b }

// State builds an active Pokémon state.
func State(name string, hp float64) *models.PokemonState {
	return &models.PokemonState{Name: name, HPPct: hp, Status: models.NoStatus}
}

// Move builds a move with full accuracy.
func Move(typ, category string, power float64) *models.MoveDetails {
	acc := 100.0
	return &models.MoveDetails{Name: typ + "-move", Type: typ, Category: category, BasePower: power, Accuracy: &acc}
}

// Turn builds one timeline entry.
func Turn(n int, p1, p2 *models.PokemonState, m1, m2 *models.MoveDetails) models.Turn {
	return models.Turn{Turn: n, P1State: p1, P2State: p2, P1Move: m1, P2Move: m2}
}

// Battle builds a battle record.
func Battle(id string, won *bool, team []models.PokemonSpec, lead *models.PokemonSpec, turns ...models.Turn) models.Battle {
	return models.Battle{BattleID: id, PlayerWon: won, P1Team: team, P2Lead: lead, Timeline: turns}
}

// Repeat returns n turns produced by fn, numbered from 1.
func Repeat(n int, fn func(i int) models.Turn) []models.Turn {
	out := make([]models.Turn, 0, n)
	for i := 0; i < n; i++ {
		t := fn(i)
		t.Turn = i + 1
		out = append(out, t)
	}
	return out
}

// SampleBattles returns three small labelled battles with distinct ids.
func SampleBattles() []models.Battle {
	return []models.Battle{
		Battle("b1", Won(true), Team("starmie", "snorlax", "zapdos"), Lead("tauros"),
			Turn(1, State("starmie", 1.0), State("tauros", 1.0), Move("water", "SPECIAL", 95), Move("normal", "PHYSICAL", 120)),
			Turn(2, State("starmie", 0.6), State("tauros", 0.55), Move("psychic", "SPECIAL", 90), Move("normal", "PHYSICAL", 120)),
			Turn(3, State("snorlax", 1.0), State("tauros", 0.1), nil, Move("ground", "PHYSICAL", 100)),
			Turn(4, State("snorlax", 0.7), State("tauros", 0.0), Move("normal", "PHYSICAL", 85), nil),
			Turn(5, State("snorlax", 0.7), State("chansey", 1.0), Move("normal", "STATUS", 0), Move("normal", "STATUS", 0)),
		),
		Battle("b2", Won(false), Team("alakazam", "exeggutor"), Lead("zapdos"),
			Turn(1, State("alakazam", 1.0), State("zapdos", 1.0), Move("psychic", "SPECIAL", 90), Move("electric", "SPECIAL", 90)),
			Turn(2, State("alakazam", 0.0), State("zapdos", 0.7), nil, Move("electric", "SPECIAL", 90)),
			Turn(3, State("exeggutor", 1.0), State("zapdos", 0.7), Move("grass", "SPECIAL", 120), Move("flying", "PHYSICAL", 140)),
		),
		Battle("b3", Won(true), Team("gengar", "chansey"), Lead("snorlax"),
			Turn(1, State("gengar", 1.0), State("snorlax", 1.0), Move("ghost", "SPECIAL", 80), Move("normal", "PHYSICAL", 85)),
		),
	}
}

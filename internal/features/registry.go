package features

import (
	"fmt"
)

// Settings carries the options of every extractor family, so a feature
// plan can build any of them from one value.
type Settings struct {
	Options
	IncludeStatusMoves bool
	Stats              []string
}

type entry struct {
	segmented bool
	build     func(s Settings) (Extractor, error)
}

func plain(fn func(Options) (Extractor, error)) func(Settings) (Extractor, error) {
	return func(s Settings) (Extractor, error) { return fn(s.Options) }
}

func vocab(fn func(VocabularyOptions) (Extractor, error)) func(Settings) (Extractor, error) {
	return func(s Settings) (Extractor, error) { return fn(VocabularyOptions{Options: s.Options}) }
}

// Catalogue lists every extractor, in the order a full plan runs them.
var Catalogue = []string{
	"effectiveness", "stab", "category_impact", "approx_damage",
	"final_hp", "final_hp_variance", "boost_diff", "stat_diff", "move_stats",
	"status_turns", "status_turns_granular", "negative_effect_turns",
	"negative_effect_turns_granular", "team_vs_lead", "faint_count",
	"move_category_ratio", "voluntary_swaps", "hp_advantage_flips",
	"team_hp_advantage_flips", "damage_efficiency", "pokemon_one_hot",
	"pokemon_ordinal", "first_ko", "final_type_power", "team_potential",
	"hp_diff", "speed_advantage", "lead_matchup", "bench_size", "alive_count",
}

var registry = map[string]entry{
	"effectiveness": {segmented: true, build: func(s Settings) (Extractor, error) {
		return NewEffectiveness(EffectivenessOptions{Options: s.Options, IncludeStatusMoves: s.IncludeStatusMoves})
	}},
	"stab":              {segmented: true, build: plain(NewSTAB)},
	"category_impact":   {segmented: true, build: plain(NewCategoryImpact)},
	"approx_damage":     {segmented: true, build: plain(NewApproxDamage)},
	"final_hp":          {build: plain(NewFinalHP)},
	"final_hp_variance": {build: plain(NewFinalHPVariance)},
	"boost_diff":        {segmented: true, build: plain(NewBoostDiff)},
	"stat_diff": {segmented: true, build: func(s Settings) (Extractor, error) {
		return NewStatDiff(StatDiffOptions{Options: s.Options, Stats: s.Stats})
	}},
	"move_stats":                     {segmented: true, build: plain(NewMoveStats)},
	"status_turns":                   {build: plain(NewStatusTurns)},
	"status_turns_granular":          {build: vocab(NewStatusTurnsGranular)},
	"negative_effect_turns":          {build: plain(NewNegativeEffectTurns)},
	"negative_effect_turns_granular": {build: vocab(NewNegativeEffectTurnsGranular)},
	"team_vs_lead":                   {build: plain(NewTeamVsLead)},
	"faint_count":                    {build: plain(NewFaintCount)},
	"move_category_ratio":            {segmented: true, build: plain(NewMoveCategoryRatio)},
	"voluntary_swaps":                {build: plain(NewVoluntarySwaps)},
	"hp_advantage_flips":             {build: plain(NewHPAdvantageFlips)},
	"team_hp_advantage_flips":        {build: plain(NewTeamHPAdvantageFlips)},
	"damage_efficiency":              {build: plain(NewDamageEfficiency)},
	"pokemon_one_hot":                {build: vocab(NewPokemonOneHot)},
	"pokemon_ordinal":                {build: vocab(NewPokemonOrdinal)},
	"first_ko":                       {build: plain(NewFirstKO)},
	"final_type_power":               {build: plain(NewFinalTypePower)},
	"team_potential":                 {build: plain(NewTeamPotential)},
	"hp_diff":                        {segmented: true, build: plain(NewHPDiff)},
	"speed_advantage":                {segmented: true, build: plain(NewSpeedAdvantage)},
	"lead_matchup":                   {build: plain(NewLeadMatchup)},
	"bench_size":                     {build: plain(NewBenchSize)},
	"alive_count":                    {build: plain(NewAliveCount)},
}

// Segmented reports whether an extractor supports DivideTurns.
func Segmented(name string) bool {
	return registry[name].segmented
}

// New builds a catalogue extractor. DivideTurns is dropped for families
// that only work on the whole battle.
func New(name string, s Settings) (Extractor, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown extractor %q", ErrUnsupportedOption, name)
	}
	if !e.segmented {
		s.DivideTurns = false
	}
	return e.build(s)
}

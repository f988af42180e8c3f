package logic

import (
	"fmt"

	"github.com/showdown-ml/battle-features/internal/features"
)

// FeatureSet selects which extractors a run uses.
type FeatureSet string

const (
	// SetTree runs every extractor; meant for tree ensembles.
	SetTree FeatureSet = "tree"
	// SetLinear runs a compact set suited to linear models.
	SetLinear FeatureSet = "linear"
)

// ParseFeatureSet accepts "tree" and "linear"; empty defaults to tree.
func ParseFeatureSet(s string) (FeatureSet, error) {
	switch FeatureSet(s) {
	case "", SetTree:
		return SetTree, nil
	case SetLinear:
		return SetLinear, nil
	}
	return "", fmt.Errorf("unknown feature set %q", s)
}

var linearPlan = []string{
	"effectiveness", "category_impact", "stab", "final_hp", "boost_diff",
	"stat_diff", "move_stats", "damage_efficiency", "faint_count", "first_ko",
}

// GenerateOptions configures one feature generation run.
type GenerateOptions struct {
	// FlagTest marks unlabelled input: no row carries player_won.
	FlagTest    bool
	Set         FeatureSet
	OneHot      bool
	Difference  bool
	DivideTurns bool
	// Workers bounds how many extractors run at once; 0 uses the service default.
	Workers int
}

// identity returns the identity encoder the options ask for.
func (o GenerateOptions) identity() string {
	if o.OneHot {
		return "pokemon_one_hot"
	}
	return "pokemon_ordinal"
}

// PlanNames returns the extractors of a run, in join order.
func PlanNames(opts GenerateOptions) []string {
	if opts.Set == SetLinear {
		names := append([]string(nil), linearPlan...)
		return append(names, opts.identity())
	}
	skip := "pokemon_ordinal"
	if !opts.OneHot {
		skip = "pokemon_one_hot"
	}
	names := make([]string, 0, len(features.Catalogue)-1)
	for _, n := range features.Catalogue {
		if n != skip {
			names = append(names, n)
		}
	}
	return names
}

// Plan builds the extractors of a run. Every extractor shares the run's
// label flag so their tables agree at join time.
func Plan(opts GenerateOptions) ([]features.Extractor, error) {
	settings := features.Settings{
		Options: features.Options{
			Difference:  opts.Difference,
			Test:        opts.FlagTest,
			DivideTurns: opts.DivideTurns,
		},
		IncludeStatusMoves: opts.Set != SetLinear,
	}
	names := PlanNames(opts)
	out := make([]features.Extractor, 0, len(names))
	for _, n := range names {
		e, err := features.New(n, settings)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", opts.Set, err)
		}
		out = append(out, e)
	}
	return out, nil
}

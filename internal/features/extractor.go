// Package features turns battle timelines into numeric feature tables. Each
// extractor walks every battle once and emits exactly one row per battle;
// the logic package joins their tables on battle id.
package features

import (
	"context"
	"errors"
	"fmt"

	"github.com/showdown-ml/battle-features/internal/dex"
	"github.com/showdown-ml/battle-features/internal/models"
)

// TeamSize is the number of Pokémon a full team holds.
const TeamSize = 6

// ErrUnsupportedOption is returned by constructors given an option the
// extractor family cannot honour.
var ErrUnsupportedOption = errors.New("unsupported extractor option")

// Extractor computes one feature family for every battle.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, battles []models.Battle, d *dex.Pokedex) (*models.Table, error)
}

// Options are shared by every extractor family.
type Options struct {
	// Difference emits P1 minus P2 in one column instead of one column per side.
	Difference bool
	// Test drops the player_won label from the output.
	Test bool
	// DivideTurns repeats the computation over the first, middle and last
	// ten turns instead of the whole battle.
	DivideTurns bool
}

func (o Options) noSegments(name string) error {
	if o.DivideTurns {
		return fmt.Errorf("%w: %s does not support divide_turns", ErrUnsupportedOption, name)
	}
	return nil
}

// battleFunc computes the values of one battle, in column order.
type battleFunc func(b *models.Battle, d *dex.Pokedex) ([]float64, error)

// extractor is the common driver behind every family: it owns the column
// layout and applies fn battle by battle.
type extractor struct {
	name    string
	columns []string
	test    bool
	fn      battleFunc
}

func (e *extractor) Name() string { return e.name }

// Columns returns the feature columns the extractor emits.
func (e *extractor) Columns() []string { return e.columns }

func (e *extractor) Extract(ctx context.Context, battles []models.Battle, d *dex.Pokedex) (*models.Table, error) {
	t := models.NewTable(e.columns, !e.test)
	t.Rows = make([]models.Row, 0, len(battles))
	for i := range battles {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		b := &battles[i]
		values, err := e.fn(b, d)
		if err != nil {
			return nil, fmt.Errorf("%s: battle %q: %w", e.name, b.BattleID, err)
		}
		if err := t.Append(b, values); err != nil {
			return nil, fmt.Errorf("%s: %w", e.name, err)
		}
	}
	return t, nil
}

// Pair is a metric measured for both players.
type Pair struct {
	P1, P2 float64
}

// Diff returns P1 minus P2.
func (p Pair) Diff() float64 { return p.P1 - p.P2 }

// Add accumulates a value for one side.
func (p *Pair) Add(side models.Side, v float64) {
	if side == models.P1 {
		p.P1 += v
	} else {
		p.P2 += v
	}
}

// Get returns the value of one side.
func (p Pair) Get(side models.Side) float64 {
	if side == models.P1 {
		return p.P1
	}
	return p.P2
}

func (p Pair) scale(n int) Pair {
	if n == 0 {
		return Pair{}
	}
	return Pair{P1: p.P1 / float64(n), P2: p.P2 / float64(n)}
}

// pairColumns names the columns of per-player metrics: metric_diff in
// difference mode, metric_p1 and metric_p2 otherwise.
func pairColumns(metrics []string, difference bool, suffix string) []string {
	out := make([]string, 0, 2*len(metrics))
	for _, m := range metrics {
		if difference {
			out = append(out, m+"_diff"+suffix)
			continue
		}
		out = append(out, m+"_p1"+suffix, m+"_p2"+suffix)
	}
	return out
}

func appendPairs(dst []float64, pairs []Pair, difference bool) []float64 {
	for _, p := range pairs {
		if difference {
			dst = append(dst, p.Diff())
			continue
		}
		dst = append(dst, p.P1, p.P2)
	}
	return dst
}

// pairExtractor builds an extractor whose metrics are all per-player pairs
// computed over the whole battle.
func pairExtractor(name string, metrics []string, opts Options, fn func(b *models.Battle, d *dex.Pokedex) ([]Pair, error)) *extractor {
	return &extractor{
		name:    name,
		columns: pairColumns(metrics, opts.Difference, ""),
		test:    opts.Test,
		fn: func(b *models.Battle, d *dex.Pokedex) ([]float64, error) {
			pairs, err := fn(b, d)
			if err != nil {
				return nil, err
			}
			return appendPairs(make([]float64, 0, 2*len(pairs)), pairs, opts.Difference), nil
		},
	}
}

// singleExtractor builds an extractor that emits one signed column per
// metric regardless of the difference flag.
func singleExtractor(name string, columns []string, opts Options, fn battleFunc) *extractor {
	return &extractor{name: name, columns: columns, test: opts.Test, fn: fn}
}

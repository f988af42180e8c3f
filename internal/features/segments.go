package features

import (
	"github.com/showdown-ml/battle-features/internal/dex"
	"github.com/showdown-ml/battle-features/internal/models"
)

const segmentLen = 10

// Segment is a named window of a timeline.
type Segment struct {
	Name  string
	Turns []models.Turn
}

// Segments splits a timeline into turns [0,10), [10,20) and the last ten
// turns. Windows are clamped to the timeline, so on short battles they may
// be empty or overlap.
func Segments(timeline []models.Turn) [3]Segment {
	n := len(timeline)
	return [3]Segment{
		{Name: "first_10", Turns: window(timeline, 0, segmentLen)},
		{Name: "middle_10", Turns: window(timeline, segmentLen, 2*segmentLen)},
		{Name: "last_10", Turns: timeline[max(0, n-segmentLen):]},
	}
}

func window(timeline []models.Turn, start, end int) []models.Turn {
	n := len(timeline)
	return timeline[min(start, n):min(end, n)]
}

// segmentSuffixes returns "" for whole-battle output, or one suffix per
// segment.
func segmentSuffixes(divide bool) []string {
	if !divide {
		return []string{""}
	}
	return []string{"_first_10", "_middle_10", "_last_10"}
}

// turnScorer adds one turn's contribution for every metric into acc.
type turnScorer func(t *models.Turn, d *dex.Pokedex, acc []Pair) error

// averageTurns sums score over turns and divides by the turn count. Every
// turn counts towards the denominator, including turns without a move.
func averageTurns(turns []models.Turn, d *dex.Pokedex, metrics int, score turnScorer) ([]Pair, error) {
	acc := make([]Pair, metrics)
	for i := range turns {
		if err := score(&turns[i], d, acc); err != nil {
			return nil, err
		}
	}
	for i := range acc {
		acc[i] = acc[i].scale(len(turns))
	}
	return acc, nil
}

// perTurn describes an extractor made of per-turn averages.
type perTurn struct {
	name    string
	metrics []string
	// single emits P1 minus P2 as one unsuffixed column per metric.
	single bool
	score  turnScorer
}

func (p perTurn) columns(opts Options) []string {
	var out []string
	for _, suffix := range segmentSuffixes(opts.DivideTurns) {
		if p.single {
			for _, m := range p.metrics {
				out = append(out, m+suffix)
			}
			continue
		}
		out = append(out, pairColumns(p.metrics, opts.Difference, suffix)...)
	}
	return out
}

func (p perTurn) build(opts Options) *extractor {
	cols := p.columns(opts)
	return &extractor{
		name:    p.name,
		columns: cols,
		test:    opts.Test,
		fn: func(b *models.Battle, d *dex.Pokedex) ([]float64, error) {
			windows := [][]models.Turn{b.Timeline}
			if opts.DivideTurns {
				segs := Segments(b.Timeline)
				windows = [][]models.Turn{segs[0].Turns, segs[1].Turns, segs[2].Turns}
			}
			values := make([]float64, 0, len(cols))
			for _, turns := range windows {
				avg, err := averageTurns(turns, d, len(p.metrics), p.score)
				if err != nil {
					return nil, err
				}
				if p.single {
					for _, a := range avg {
						values = append(values, a.Diff())
					}
					continue
				}
				values = appendPairs(values, avg, opts.Difference)
			}
			return values, nil
		},
	}
}

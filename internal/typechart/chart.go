// Package typechart holds the type list and the attacker/defender
// effectiveness chart used by every damage-related feature.
package typechart

import (
	"errors"
	"fmt"
	"strings"
)

// NoType is the placeholder for a missing second type.
const NoType = "notype"

// ErrUnknownType is returned when a type name is not part of the chart.
var ErrUnknownType = errors.New("unknown type")

// Types lists every type in chart order.
var Types = [...]string{
	"bug", "dark", "dragon", "electric", "fairy", "fighting", "fire",
	"flying", "ghost", "grass", "ground", "ice", "normal", "poison",
	"psychic", "rock", "steel", "stellar", "water",
}

var typeIndex = func() map[string]int {
	m := make(map[string]int, len(Types))
	for i, t := range Types {
		m[t] = i
	}
	return m
}()

// chart[attacker][defender]. Values are 0, 0.5, 1 or 2.
// Source: https://www.smogon.com/dex/sv/types/
var chart = [len(Types)][len(Types)]float64{
	//bug dar  dra  ele  fai  fig  fir  fly  gho  gra  gro  ice  nor  poi  psy  roc  ste  stl  wat
	{1, 2, 1, 1, 1, 0.5, 0.5, 0.5, 1, 2, 1, 1, 1, 0.5, 2, 1, 1, 1, 1},           // bug
	{1, 1, 1, 1, 0.5, 0.5, 1, 1, 2, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1},               // dark
	{1, 1, 2, 1, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0.5, 1, 1},                 // dragon
	{1, 1, 0.5, 0.5, 1, 1, 1, 2, 1, 0.5, 0, 1, 1, 1, 1, 1, 1, 1, 2},             // electric
	{1, 2, 1, 1, 1, 2, 0.5, 1, 1, 1, 1, 1, 1, 0.5, 1, 1, 0.5, 1, 1},             // fairy
	{2, 2, 1, 1, 0.5, 1, 1, 0.5, 0, 1, 1, 2, 2, 0.5, 0.5, 2, 2, 1, 1},           // fighting
	{2, 1, 0.5, 1, 1, 1, 0.5, 1, 1, 2, 1, 2, 1, 1, 1, 0.5, 2, 1, 0.5},           // fire
	{2, 1, 1, 0.5, 1, 2, 1, 1, 1, 2, 0, 1, 1, 1, 1, 0.5, 0.5, 1, 1},             // flying
	{1, 0.5, 1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 0, 1, 2, 1, 1, 1, 1},                 // ghost
	{0.5, 1, 0.5, 1, 0.5, 0.5, 0.5, 0.5, 1, 0.5, 2, 1, 1, 0.5, 1, 2, 0.5, 1, 2}, // grass
	{1, 1, 1, 2, 1, 1, 2, 0, 1, 0.5, 1, 1, 1, 2, 1, 2, 1, 1, 1},                 // ground
	{1, 1, 2, 1, 1, 1, 1, 2, 1, 1, 2, 0.5, 1, 1, 1, 1, 0.5, 1, 0.5},             // ice
	{1, 1, 1, 1, 1, 1, 1, 1, 0, 1, 1, 1, 1, 1, 1, 0.5, 0.5, 1, 1},               // normal
	{1, 1, 1, 1, 0.5, 1, 1, 1, 0.5, 2, 0.5, 1, 1, 0.5, 1, 0.5, 0, 1, 1},         // poison
	{1, 0, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 0.5, 1, 0.5, 1, 1},               // psychic
	{2, 1, 1, 1, 1, 0.5, 2, 2, 1, 1, 0.5, 2, 1, 1, 1, 0.5, 0.5, 1, 2},           // rock
	{1, 1, 1, 0.5, 2, 1, 0.5, 1, 1, 1, 1, 2, 1, 1, 1, 2, 0.5, 1, 0.5},           // steel
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},                   // stellar
	{1, 1, 0.5, 1, 1, 1, 2, 1, 1, 0.5, 1, 1, 1, 1, 1, 1, 1, 1, 0.5},             // water
}

// Index returns the chart position of a type name, case-insensitive.
func Index(name string) (int, bool) {
	i, ok := typeIndex[strings.ToLower(name)]
	return i, ok
}

// Cell returns the raw multiplier of one attacking type against one
// defending type.
func Cell(attacking, defending string) (float64, error) {
	a, ok := Index(attacking)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, attacking)
	}
	d, ok := Index(defending)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, defending)
	}
	return chart[a][d], nil
}

// Effectiveness multiplies the chart cells of an attacking type against
// every defending type. The NoType sentinel is skipped, so a mono-typed
// defender is scored on its single type.
func Effectiveness(attacking string, defending []string) (float64, error) {
	a, ok := Index(attacking)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, attacking)
	}

	mult := 1.0
	for _, d := range defending {
		if strings.EqualFold(d, NoType) {
			continue
		}
		di, ok := Index(d)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownType, d)
		}
		mult *= chart[a][di]
	}
	return mult, nil
}

// IsSentinel reports whether a type name is the NoType placeholder.
func IsSentinel(name string) bool {
	return strings.EqualFold(name, NoType)
}

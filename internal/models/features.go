package models

import (
	"errors"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

const (
	ColumnBattleID  = "battle_id"
	ColumnPlayerWon = "player_won"
)

var (
	// ErrColumnCollision is returned when two joined tables share a feature column.
	ErrColumnCollision = errors.New("feature column collision")
	// ErrLabelMismatch is returned when joined tables disagree on a battle outcome.
	ErrLabelMismatch = errors.New("player_won mismatch")
	// ErrRowWidth is returned when a row does not match the table's columns.
	ErrRowWidth = errors.New("row width does not match columns")
	// ErrDuplicateBattle is returned when a battle id appears more than once.
	ErrDuplicateBattle = errors.New("duplicate battle id")
)

// Row is the feature vector of one battle. Values are aligned with the
// owning Table's Columns.
type Row struct {
	BattleID  string
	PlayerWon *bool
	Values    []float64
}

// Table is a feature matrix keyed by battle id.
type Table struct {
	Columns  []string
	HasLabel bool
	Rows     []Row
}

// NewTable creates an empty table with the given feature columns.
func NewTable(columns []string, hasLabel bool) *Table {
	return &Table{Columns: columns, HasLabel: hasLabel}
}

// Append adds a row for a battle. The label is kept only when the table
// carries one.
func (t *Table) Append(b *Battle, values []float64) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("%w: battle %q has %d values for %d columns", ErrRowWidth, b.BattleID, len(values), len(t.Columns))
	}
	row := Row{BattleID: b.BattleID, Values: values}
	if t.HasLabel {
		row.PlayerWon = b.PlayerWon
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// ColumnIndex returns the position of a feature column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Value returns a feature value of a row by column name.
func (t *Table) Value(row int, column string) (float64, bool) {
	i, ok := t.ColumnIndex(column)
	if !ok || row < 0 || row >= len(t.Rows) {
		return 0, false
	}
	return t.Rows[row].Values[i], true
}

// Find returns the row of a battle.
func (t *Table) Find(battleID string) (Row, bool) {
	for _, r := range t.Rows {
		if r.BattleID == battleID {
			return r, true
		}
	}
	return Row{}, false
}

// Header returns battle_id, player_won (when present) and the feature columns.
func (t *Table) Header() []string {
	h := make([]string, 0, len(t.Columns)+2)
	h = append(h, ColumnBattleID)
	if t.HasLabel {
		h = append(h, ColumnPlayerWon)
	}
	return append(h, t.Columns...)
}

// Records flattens the table into one map per battle.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, t.record(r))
	}
	return out
}

func (t *Table) record(r Row) map[string]any {
	m := make(map[string]any, len(t.Columns)+2)
	m[ColumnBattleID] = r.BattleID
	if t.HasLabel && r.PlayerWon != nil {
		m[ColumnPlayerWon] = *r.PlayerWon
	}
	for i, c := range t.Columns {
		m[c] = r.Values[i]
	}
	return m
}

// MarshalJSON encodes the table as a list of flat records.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Records())
}

// Strings renders a row in Header order.
func (t *Table) Strings(r Row) []string {
	out := make([]string, 0, len(t.Columns)+2)
	out = append(out, r.BattleID)
	if t.HasLabel {
		switch {
		case r.PlayerWon == nil:
			out = append(out, "")
		case *r.PlayerWon:
			out = append(out, "1")
		default:
			out = append(out, "0")
		}
	}
	for _, v := range r.Values {
		out = append(out, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return out
}

// Join inner-joins two tables on battle_id. Rows keep the left table's
// order; battles missing from either side are dropped. Ids must be unique
// on both sides, otherwise a row could pick up another battle's features.
func Join(left, right *Table) (*Table, error) {
	seen := make(map[string]struct{}, len(left.Columns))
	for _, c := range left.Columns {
		seen[c] = struct{}{}
	}
	for _, c := range right.Columns {
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrColumnCollision, c)
		}
	}

	if err := uniqueIDs(left); err != nil {
		return nil, err
	}
	byID := make(map[string]int, len(right.Rows))
	for i, r := range right.Rows {
		if _, dup := byID[r.BattleID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateBattle, r.BattleID)
		}
		byID[r.BattleID] = i
	}

	columns := make([]string, 0, len(left.Columns)+len(right.Columns))
	columns = append(columns, left.Columns...)
	columns = append(columns, right.Columns...)
	out := NewTable(columns, left.HasLabel || right.HasLabel)

	for _, l := range left.Rows {
		ri, ok := byID[l.BattleID]
		if !ok {
			continue
		}
		r := right.Rows[ri]

		label := l.PlayerWon
		if left.HasLabel && right.HasLabel && l.PlayerWon != nil && r.PlayerWon != nil && *l.PlayerWon != *r.PlayerWon {
			return nil, fmt.Errorf("%w: battle %q", ErrLabelMismatch, l.BattleID)
		}
		if label == nil {
			label = r.PlayerWon
		}

		values := make([]float64, 0, len(columns))
		values = append(values, l.Values...)
		values = append(values, r.Values...)
		out.Rows = append(out.Rows, Row{BattleID: l.BattleID, PlayerWon: label, Values: values})
	}
	return out, nil
}

func uniqueIDs(t *Table) error {
	ids := make(map[string]struct{}, len(t.Rows))
	for _, r := range t.Rows {
		if _, dup := ids[r.BattleID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateBattle, r.BattleID)
		}
		ids[r.BattleID] = struct{}{}
	}
	return nil
}

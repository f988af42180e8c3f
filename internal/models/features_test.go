package models

import (
	"errors"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestJoin(t *testing.T) {
	left := &Table{
		Columns:  []string{"a"},
		HasLabel: true,
		Rows: []Row{
			{BattleID: "1", PlayerWon: boolPtr(true), Values: []float64{1}},
			{BattleID: "2", PlayerWon: boolPtr(false), Values: []float64{2}},
			{BattleID: "3", PlayerWon: boolPtr(true), Values: []float64{3}},
		},
	}
	right := &Table{
		Columns: []string{"b", "c"},
		Rows: []Row{
			{BattleID: "3", Values: []float64{30, 31}},
			{BattleID: "1", Values: []float64{10, 11}},
		},
	}

	got, err := Join(left, right)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(got.Rows))
	}
	if got.Rows[0].BattleID != "1" || got.Rows[1].BattleID != "3" {
		t.Errorf("join should keep left order, got %s,%s", got.Rows[0].BattleID, got.Rows[1].BattleID)
	}
	if v, _ := got.Value(1, "c"); v != 31 {
		t.Errorf("c for battle 3 = %v, want 31", v)
	}
	if !got.HasLabel || got.Rows[0].PlayerWon == nil || !*got.Rows[0].PlayerWon {
		t.Error("label should survive the join")
	}
}

func TestJoin_Errors(t *testing.T) {
	a := &Table{Columns: []string{"x"}, HasLabel: true, Rows: []Row{{BattleID: "1", PlayerWon: boolPtr(true), Values: []float64{1}}}}
	sameCol := &Table{Columns: []string{"x"}, Rows: []Row{{BattleID: "1", Values: []float64{1}}}}
	badLabel := &Table{Columns: []string{"y"}, HasLabel: true, Rows: []Row{{BattleID: "1", PlayerWon: boolPtr(false), Values: []float64{1}}}}

	if _, err := Join(a, sameCol); !errors.Is(err, ErrColumnCollision) {
		t.Errorf("err = %v, want ErrColumnCollision", err)
	}
	if _, err := Join(a, badLabel); !errors.Is(err, ErrLabelMismatch) {
		t.Errorf("err = %v, want ErrLabelMismatch", err)
	}
}

func TestJoin_DuplicateBattleIDs(t *testing.T) {
	twice := func(col string, v1, v2 float64) *Table {
		return &Table{Columns: []string{col}, Rows: []Row{
			{BattleID: "x", Values: []float64{v1}},
			{BattleID: "x", Values: []float64{v2}},
		}}
	}
	once := &Table{Columns: []string{"b"}, Rows: []Row{{BattleID: "x", Values: []float64{10}}}}

	tests := []struct {
		name        string
		left, right *Table
	}{
		{"both sides", twice("a", 1, 2), twice("b", 10, 20)},
		{"left side", twice("a", 1, 2), once},
		{"right side", &Table{Columns: []string{"a"}, Rows: []Row{{BattleID: "x", Values: []float64{1}}}}, twice("b", 10, 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Join(tt.left, tt.right)
			if !errors.Is(err, ErrDuplicateBattle) {
				t.Fatalf("Join() = %+v, %v; want ErrDuplicateBattle", got, err)
			}
		})
	}
}

func TestTableAppend(t *testing.T) {
	tbl := NewTable([]string{"a", "b"}, false)
	b := &Battle{BattleID: "x", PlayerWon: boolPtr(true)}
	if err := tbl.Append(b, []float64{1}); !errors.Is(err, ErrRowWidth) {
		t.Errorf("err = %v, want ErrRowWidth", err)
	}
	if err := tbl.Append(b, []float64{1, 2}); err != nil {
		t.Fatal(err)
	}
	if tbl.Rows[0].PlayerWon != nil {
		t.Error("unlabelled table should drop player_won")
	}
	if h := tbl.Header(); len(h) != 3 || h[0] != ColumnBattleID {
		t.Errorf("Header() = %v", h)
	}
	rec := tbl.Records()[0]
	if _, ok := rec[ColumnPlayerWon]; ok {
		t.Error("record should not carry player_won")
	}
}

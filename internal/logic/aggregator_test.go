package logic

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/showdown-ml/battle-features/internal/dex"
	"github.com/showdown-ml/battle-features/internal/models"
	tu "github.com/showdown-ml/battle-features/internal/testutils"
)

func TestParseFeatureSet(t *testing.T) {
	tests := []struct {
		in      string
		want    FeatureSet
		wantErr bool
	}{
		{"", SetTree, false},
		{"tree", SetTree, false},
		{"linear", SetLinear, false},
		{"forest", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFeatureSet(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFeatureSet(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestPlanNames(t *testing.T) {
	linear := PlanNames(GenerateOptions{Set: SetLinear})
	if len(linear) != len(linearPlan)+1 || linear[len(linear)-1] != "pokemon_ordinal" {
		t.Errorf("linear plan = %v", linear)
	}
	if linear[0] != "effectiveness" {
		t.Errorf("linear plan starts with %q", linear[0])
	}

	tree := PlanNames(GenerateOptions{Set: SetTree, OneHot: true})
	for _, n := range tree {
		if n == "pokemon_ordinal" {
			t.Error("one-hot tree plan still holds the ordinal encoder")
		}
	}
	if len(tree) == 0 || tree[len(tree)-1] != "pokemon_one_hot" {
		t.Errorf("tree plan = %v", tree)
	}
}

func TestGenerateThreeBattles(t *testing.T) {
	battles := tu.SampleBattles()
	svc := NewFeatureService(FeatureServiceConfig{Workers: 2}, zap.NewNop())

	for _, set := range []FeatureSet{SetLinear, SetTree} {
		t.Run(string(set), func(t *testing.T) {
			opts := GenerateOptions{FlagTest: true, Set: set, Difference: true}
			tbl, err := svc.Generate(context.Background(), battles, opts)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if len(tbl.Rows) != 3 {
				t.Fatalf("rows = %d, want 3", len(tbl.Rows))
			}
			if tbl.HasLabel {
				t.Error("test run kept the player_won label")
			}
			for i, r := range tbl.Rows {
				if r.BattleID != battles[i].BattleID {
					t.Errorf("row %d = %q, want %q", i, r.BattleID, battles[i].BattleID)
				}
				if r.PlayerWon != nil {
					t.Errorf("row %d carries a label", i)
				}
			}

			// the joined columns are the union of every extractor's columns
			extractors, err := Plan(opts)
			if err != nil {
				t.Fatal(err)
			}
			d := dex.MustBuild(battles)
			want := 0
			for _, e := range extractors {
				part, err := e.Extract(context.Background(), battles, d)
				if err != nil {
					t.Fatal(err)
				}
				want += len(part.Columns)
			}
			if len(tbl.Columns) != want {
				t.Errorf("columns = %d, want %d", len(tbl.Columns), want)
			}
		})
	}
}

func TestGenerateKeepsLabels(t *testing.T) {
	svc := NewFeatureService(FeatureServiceConfig{}, zap.NewNop())
	tbl, err := svc.Generate(context.Background(), tu.SampleBattles(), GenerateOptions{Set: SetLinear})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !tbl.HasLabel {
		t.Fatal("labelled run lost player_won")
	}
	if r, _ := tbl.Find("b2"); r.PlayerWon == nil || *r.PlayerWon {
		t.Errorf("b2 label = %v, want false", r.PlayerWon)
	}
}

func TestGenerateErrors(t *testing.T) {
	ctx := context.Background()

	svc := NewFeatureService(FeatureServiceConfig{}, zap.NewNop())
	if _, err := svc.Generate(ctx, nil, GenerateOptions{}); !errors.Is(err, ErrNoBattles) {
		t.Errorf("empty input err = %v", err)
	}

	conflict := tu.SampleBattles()
	tweaked := tu.Species["starmie"]
	tweaked.BaseSpe = 1
	conflict = append(conflict, tu.Battle("b4", tu.Won(true), []models.PokemonSpec{tweaked}, tu.Lead("tauros")))

	strict := NewFeatureService(FeatureServiceConfig{StrictRoster: true}, zap.NewNop())
	if _, err := strict.Generate(ctx, conflict, GenerateOptions{}); !errors.Is(err, dex.ErrRosterConflict) {
		t.Errorf("strict roster err = %v", err)
	}
	if _, err := svc.Generate(ctx, conflict, GenerateOptions{}); err != nil {
		t.Errorf("lenient roster err = %v", err)
	}

	bad := tu.SampleBattles()
	bad[0].Timeline[0].P1Move.Type = "cosmic"
	if _, err := svc.Generate(ctx, bad, GenerateOptions{Set: SetLinear}); err == nil {
		t.Error("unknown move type should abort the run")
	}

	dup := tu.SampleBattles()
	dup[2].BattleID = dup[0].BattleID
	if _, err := svc.Generate(ctx, dup, GenerateOptions{Set: SetTree}); !errors.Is(err, models.ErrDuplicateBattle) {
		t.Errorf("duplicate id err = %v", err)
	}

	missing := tu.SampleBattles()
	missing[1].Timeline[1].P2State = nil
	if _, err := svc.Generate(ctx, missing, GenerateOptions{Set: SetTree}); !errors.Is(err, ErrInvalidBattle) {
		t.Errorf("nil turn state err = %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := svc.Generate(cancelled, tu.SampleBattles(), GenerateOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled err = %v", err)
	}
}

func BenchmarkGenerateTree(b *testing.B) {
	battles := make([]models.Battle, 0, 300)
	for i := 0; i < 100; i++ {
		for _, s := range tu.SampleBattles() {
			s.BattleID = s.BattleID + "-" + string(rune('a'+i%26)) + string(rune('a'+i/26))
			battles = append(battles, s)
		}
	}
	svc := NewFeatureService(FeatureServiceConfig{Workers: 4}, zap.NewNop())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Generate(context.Background(), battles, GenerateOptions{Set: SetTree}); err != nil {
			b.Fatal(err)
		}
	}
}

// Package export writes feature tables to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/showdown-ml/battle-features/internal/models"
)

// WriteTable writes the header then one record per row.
func WriteTable(w io.Writer, t *models.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range t.Rows {
		if err := cw.Write(t.Strings(r)); err != nil {
			return fmt.Errorf("write battle %q: %w", r.BattleID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Prediction is a model's outcome for one battle.
type Prediction struct {
	BattleID  string
	PlayerWon bool
}

// WriteSubmission writes battle_id,player_won with the outcome as 0 or 1.
func WriteSubmission(w io.Writer, preds []Prediction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{models.ColumnBattleID, models.ColumnPlayerWon}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range preds {
		won := "0"
		if p.PlayerWon {
			won = "1"
		}
		if err := cw.Write([]string{p.BattleID, won}); err != nil {
			return fmt.Errorf("write battle %q: %w", p.BattleID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

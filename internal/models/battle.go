package models

import (
	"strings"

	json "github.com/goccy/go-json"
)

const (
	// NoStatus is the status value of a healthy Pokémon.
	NoStatus = "nostatus"
	// DefaultAccuracy is used when a move does not report its accuracy.
	DefaultAccuracy = 100.0
)

// Move categories, upper-cased.
const (
	CategoryPhysical = "PHYSICAL"
	CategorySpecial  = "SPECIAL"
	CategoryStatus   = "STATUS"
)

// Side identifies one of the two players.
type Side int

const (
	P1 Side = iota
	P2
)

// Sides lists both players in output order.
var Sides = [2]Side{P1, P2}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == P1 {
		return P2
	}
	return P1
}

func (s Side) String() string {
	if s == P1 {
		return "p1"
	}
	return "p2"
}

// Battle is one recorded match as read from the battle log.
type Battle struct {
	BattleID  string        `json:"battle_id" validate:"required"`
	PlayerWon *bool         `json:"player_won,omitempty"`
	P1Team    []PokemonSpec `json:"p1_team_details" validate:"max=6,dive"`
	P2Lead    *PokemonSpec  `json:"p2_lead_details,omitempty"`
	Timeline  []Turn        `json:"battle_timeline" validate:"dive"`
}

// UnmarshalJSON treats an empty p2_lead_details object as "no lead".
func (b *Battle) UnmarshalJSON(data []byte) error {
	type Alias Battle
	a := (*Alias)(b)
	if err := json.Unmarshal(data, a); err != nil {
		return err
	}
	if b.P2Lead != nil && b.P2Lead.Name == "" {
		b.P2Lead = nil
	}
	return nil
}

// Label returns the outcome and whether the battle carries one.
func (b *Battle) Label() (bool, bool) {
	if b.PlayerWon == nil {
		return false, false
	}
	return *b.PlayerWon, true
}

// Lead returns P2's declared lead.
func (b *Battle) Lead() (PokemonSpec, bool) {
	if b.P2Lead == nil {
		return PokemonSpec{}, false
	}
	return *b.P2Lead, true
}

// Roster returns the Pokémon a side declared before the battle. P2 only
// ever declares its lead.
func (b *Battle) Roster(side Side) []PokemonSpec {
	if side == P1 {
		return b.P1Team
	}
	if b.P2Lead == nil {
		return nil
	}
	return []PokemonSpec{*b.P2Lead}
}

// PokemonSpec is a roster entry with the species' base stats.
type PokemonSpec struct {
	Name    string   `json:"name" validate:"required"`
	Level   int      `json:"level" validate:"gte=0"`
	Types   []string `json:"types" validate:"len=2"`
	BaseHP  float64  `json:"base_hp"`
	BaseAtk float64  `json:"base_atk"`
	BaseDef float64  `json:"base_def"`
	BaseSpA float64  `json:"base_spa"`
	BaseSpD float64  `json:"base_spd"`
	BaseSpe float64  `json:"base_spe"`
}

// Turn is one step of the battle timeline.
type Turn struct {
	Turn    int           `json:"turn"`
	P1State *PokemonState `json:"p1_pokemon_state" validate:"required"`
	P2State *PokemonState `json:"p2_pokemon_state" validate:"required"`
	P1Move  *MoveDetails  `json:"p1_move_details"`
	P2Move  *MoveDetails  `json:"p2_move_details"`
}

// State returns the active Pokémon of a side.
func (t *Turn) State(side Side) *PokemonState {
	if side == P1 {
		return t.P1State
	}
	return t.P2State
}

// Move returns the move a side made this turn, or nil when it made none.
// Both null and {} are "no move".
func (t *Turn) Move(side Side) *MoveDetails {
	m := t.P1Move
	if side == P2 {
		m = t.P2Move
	}
	if m == nil || m.IsEmpty() {
		return nil
	}
	return m
}

// Number returns the 1-based turn number, falling back to the position in
// the timeline when the log does not carry one.
func (t *Turn) Number(index int) int {
	if t.Turn > 0 {
		return t.Turn
	}
	return index + 1
}

// PokemonState is the observed state of an active Pokémon.
type PokemonState struct {
	Name    string         `json:"name" validate:"required"`
	HPPct   float64        `json:"hp_pct" validate:"gte=0,lte=1"`
	Status  string         `json:"status"`
	Boosts  map[string]int `json:"boosts"`
	Effects []string       `json:"effects"`
}

// StatusOrDefault returns the status, NoStatus when unset.
func (s *PokemonState) StatusOrDefault() string {
	if s.Status == "" {
		return NoStatus
	}
	return strings.ToLower(s.Status)
}

// Boost returns the boost stage of a stat, 0 when unlisted.
func (s *PokemonState) Boost(stat string) int {
	return s.Boosts[stat]
}

// Fainted reports whether the Pokémon is at exactly 0 HP.
func (s *PokemonState) Fainted() bool {
	return s.HPPct == 0
}

// HasEffect reports whether the Pokémon carries the given effect.
func (s *PokemonState) HasEffect(effect string) bool {
	for _, e := range s.Effects {
		if strings.EqualFold(e, effect) {
			return true
		}
	}
	return false
}

// MoveDetails describes the move used in a turn.
type MoveDetails struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Category  string   `json:"category"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	BasePower float64  `json:"base_power"`
	Priority  float64  `json:"priority"`
}

// IsEmpty reports whether the move object carried no data ({}).
func (m *MoveDetails) IsEmpty() bool {
	return m.Name == "" && m.Type == "" && m.Category == ""
}

// Cat returns the upper-cased category.
func (m *MoveDetails) Cat() string {
	return strings.ToUpper(m.Category)
}

// IsDamaging reports whether the move is PHYSICAL or SPECIAL.
func (m *MoveDetails) IsDamaging() bool {
	c := m.Cat()
	return c == CategoryPhysical || c == CategorySpecial
}

// AccuracyOrDefault returns the accuracy, DefaultAccuracy when absent.
func (m *MoveDetails) AccuracyOrDefault() float64 {
	if m.Accuracy == nil {
		return DefaultAccuracy
	}
	return *m.Accuracy
}

package models

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// UnmarshalJSON accepts the shapes move payloads come in across log
// exporters: numbers encoded as strings, and accuracy given as `true` for
// moves that never miss (read as DefaultAccuracy).
func (m *MoveDetails) UnmarshalJSON(data []byte) error {
	// Alias prevents infinite recursion
	type Alias MoveDetails
	a := (*Alias)(m)

	// Fast path: all values are native
	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal move: %w", err)
	}

	*m = MoveDetails{}
	for key, rawVal := range raw {
		switch key {
		case "name":
			m.Name = flexString(rawVal)
		case "type":
			m.Type = flexString(rawVal)
		case "category":
			m.Category = flexString(rawVal)
		case "accuracy":
			if acc, ok := flexAccuracy(rawVal); ok {
				m.Accuracy = &acc
			}
		case "base_power":
			m.BasePower, _ = flexFloat(rawVal)
		case "priority":
			m.Priority, _ = flexFloat(rawVal)
		}
	}
	return nil
}

func flexString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

func flexFloat(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func flexAccuracy(raw json.RawMessage) (float64, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return DefaultAccuracy, true
		}
		return 0, false
	}
	return flexFloat(raw)
}

package models

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidateStruct checks the struct tags of a decoded record.
func ValidateStruct(v any) error {
	return getValidator().Struct(v)
}

// ValidateBattle checks that a battle carries every field the feature
// engine treats as always present.
func ValidateBattle(b *Battle) error {
	if err := ValidateStruct(b); err != nil {
		return fmt.Errorf("battle %q: %w", b.BattleID, err)
	}
	return nil
}

package persistence

import (
	"errors"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateWriteError maps driver errors from inserts and updates to domain errors
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if isDuplicateKey(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Connections opened without TranslateError surface the raw driver text.
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

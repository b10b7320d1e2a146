package postgres

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/attempt-service/internal/repositories"
	"gorm.io/gorm"
)

// translate maps gorm sentinels onto repository errors.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, repositories.ErrDuplicate)
	default:
		return fmt.Errorf("failed to %s: %w", what, err)
	}
}

package persistence

import (
	"errors"
	"strings"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// translateUniqueViolation maps unique constraint violations to the
// domain ALREADY_EXISTS error so concurrency races surface as coded
// conflicts instead of raw driver errors. Handles postgres (code
// 23505) and the sqlite driver used in tests.
func translateUniqueViolation(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return shared.ErrAlreadyExists
	}

	if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value") {
		return shared.ErrAlreadyExists
	}

	return err
}

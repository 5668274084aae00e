package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

// Postgres error codes meaning the schema has not been migrated yet
const (
	codeUndefinedTable    = "42P01"
	codeInvalidSchemaName = "3F000"
)

// wrapError annotates err and maps driver conditions onto domain errors
func wrapError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUndefinedTable, codeInvalidSchemaName:
			return fmt.Errorf("%s: %w: %v", msg, domain.ErrCatalogNotReady, err)
		}
	}

	return fmt.Errorf("%s: %w", msg, err)
}

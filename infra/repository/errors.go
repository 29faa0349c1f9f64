package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes that mean the statement failed without effect
// and can be retried.
var retryableSQLState = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57014": true, // query_canceled (lock_timeout / statement_timeout)
	"57P01": true, // admin_shutdown
	"53300": true, // too_many_connections
}

// MapGormErrorToDomain converts GORM and driver errors to domain errors.
// Traverses the error chain: unique-key collisions become
// domain.ErrDuplicateReference, lock/deadlock/connection failures become
// domain.ErrStorageUnavailable. Errors that already carry a domain kind and
// unrecognised errors are returned as-is.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}
	if domain.CodeOf(err) != domain.CodeInternal {
		return err
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", domain.ErrDuplicateReference, err)
	case errors.As(err, &pgErr):
		if pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateReference, pgErr.ConstraintName)
		}
		if retryableSQLState[pgErr.Code] || strings.HasPrefix(pgErr.Code, "08") {
			return fmt.Errorf("%w: %s %s", domain.ErrStorageUnavailable, pgErr.Code, pgErr.Message)
		}
		return err
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	// SQLite reports constraint and lock errors by message only.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %s", domain.ErrDuplicateReference, msg)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "SQLITE_BUSY"):
		return fmt.Errorf("%w: %s", domain.ErrStorageUnavailable, msg)
	}
	return err
}

// WrapError wraps a GORM operation and automatically maps errors.
//
// Usage:
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(&m).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}

package services

import (
	"errors"
	"fmt"

	"facility-booking-backend/apperror"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	mysqlDuplicateEntry = 1062
	mysqlForeignKey     = 1452

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	errDuplicate        = apperror.Validation("error.duplicate", "record already exists")
	errInvalidReference = apperror.Validation("error.invalidReference", "referenced record does not exist")
)

// classify turns infrastructure errors into typed errors. notFound is returned
// for gorm.ErrRecordNotFound; typed errors pass through untouched.
func classify(err error, notFound *apperror.Error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil {
		return notFound
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return errDuplicate
		case mysqlForeignKey:
			return errInvalidReference
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errDuplicate
		case pgForeignKeyViolation:
			return errInvalidReference
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Package repository holds the MySQL and MongoDB data access code.  Every
// exported method returns errors classified through apperr so handlers
// never see raw driver messages.
package repository

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/go-sql-driver/mysql"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
)

// MySQL server error numbers we translate.
const (
	errDupEntry        = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
	errDataTooLong     = 1406
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

// translate classifies a database error.  what names the entity for the
// client facing message, e.g. "theater".
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Wrap(err, apperr.NotFound, what+" not found")
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDupEntry:
			return apperr.Wrap(err, apperr.Conflict, what+" already exists")
		case errRowIsReferenced:
			return apperr.Wrap(err, apperr.Conflict, what+" is still referenced by other records")
		case errNoReferencedRow:
			return apperr.Wrap(err, apperr.Validation, "referenced record does not exist")
		case errDataTooLong:
			return apperr.Wrap(err, apperr.Validation, "value too long")
		case errDeadlock, errLockWaitTimeout:
			return apperr.Wrap(err, apperr.Conflict, "concurrent update, please retry")
		}
	}
	return errors.WithStack(err)
}

// expectOne turns a zero-row UPDATE/DELETE into a not-found error.
func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return apperr.NotFoundf("%s not found", what)
	}
	return nil
}

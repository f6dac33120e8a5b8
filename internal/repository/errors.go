// Package repository holds the MySQL data access layer.  The sentinel
// values below let services distinguish failure scenarios without
// inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicate is returned when an insert or update violates a unique
// key, e.g. a second non-cancelled booking for the same field, slot and
// date.
var ErrDuplicate = errors.New("repository: duplicate key")

// ErrConflict is returned when InnoDB aborted the statement because of
// a concurrent transaction (deadlock or lock wait timeout).  Callers treat
// it as a retryable conflict.
var ErrConflict = errors.New("repository: concurrent modification")

// MySQL server error numbers inspected by the repositories.
const (
	mysqlErrDupEntry        = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// translate maps driver errors onto repository sentinels.  Unknown
// errors are returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrDupEntry:
			return ErrDuplicate
		case mysqlErrDeadlock, mysqlErrLockWaitTimeout:
			return ErrConflict
		}
	}
	return err
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("store: duplicate key")

	// ErrInvalidParams is returned when required fields are missing or out of range.
	ErrInvalidParams = errors.New("store: invalid parameters")

	// ErrNoFields is returned by an update that carries nothing to change.
	ErrNoFields = errors.New("store: no fields to update")

	// ErrTimeout is returned when a statement exceeds its deadline or is canceled.
	ErrTimeout = errors.New("store: query timeout")
)

// Error keeps the driver error behind one of the sentinels above, so callers can
// use errors.Is for the kind and still log the original cause.
type Error struct {
	Kind  error
	Cause error
}

func (e *Error) Error() string        { return fmt.Sprintf("%s (cause: %v)", e.Kind, e.Cause) }
func (e *Error) Is(target error) bool { return errors.Is(e.Kind, target) }
func (e *Error) Unwrap() error        { return e.Cause }

// mapErr translates driver errors from MySQL and SQLite into the package sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Kind: ErrNotFound, Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: ErrTimeout, Cause: err}
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1062: // ER_DUP_ENTRY
			return &Error{Kind: ErrDuplicateKey, Cause: err}
		case 3024: // ER_QUERY_TIMEOUT
			return &Error{Kind: ErrTimeout, Cause: err}
		}
		return err
	}

	// mattn/go-sqlite3 reports constraint failures in the message text
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &Error{Kind: ErrDuplicateKey, Cause: err}
	}
	return err
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/schemaroute/internal/errs"
)

// PostgreSQL SQLSTATE error codes we classify explicitly.
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrInsufficientPrivilege = "42501"
	pgErrInvalidPassword       = "28P01"
	pgErrInvalidAuthorization  = "28000"
	pgErrDuplicateTable        = "42P07"
	pgErrUndefinedTable        = "42P01"
)

// mapError translates pgx / pgconn native errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	// Postgres server-side error (SQLSTATE codes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(classifySQLState(pgErr.Code), fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	// Fallthrough: connection-level errors (TLS, network, auth)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

func classifySQLState(code string) errs.ErrKind {
	switch code {
	case pgErrInsufficientPrivilege:
		return errs.ErrKindPermissionDenied
	case pgErrInvalidPassword, pgErrInvalidAuthorization:
		return errs.ErrKindConnectionFailed
	case pgErrDuplicateTable:
		return errs.ErrKindInvalidInput
	case pgErrUndefinedTable:
		return errs.ErrKindIntrospection
	}
	// Class 08: connection exceptions
	if len(code) >= 2 && code[:2] == "08" {
		return errs.ErrKindConnectionFailed
	}
	return errs.ErrKindQueryFailed
}

// Package errs defines the single error type returned across schemaroute.
//
// Database adapters, the resolver and the snapshot store translate native
// errors into *errs.Error, so callers branch on a kind instead of importing
// driver packages:
//
//	if errs.IsNoAcceptableConnection(err) {
//		http.Error(w, "unknown table", http.StatusNotFound)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind classifies an error independently of the backend that raised it.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no rows, no object, no bucket
	ErrKindConnectionFailed         // cannot reach or authenticate to the backend
	ErrKindTimeout                  // context deadline or cancellation
	ErrKindQueryFailed              // SQL or storage operation error
	ErrKindInvalidInput             // bad arguments from the caller
	ErrKindPermissionDenied         // access denied

	ErrKindNoAcceptableConnection // no registered connection has the table
	ErrKindIntrospection          // schema metadata could not be fetched
	ErrKindTableNotFound          // table absent on every connection
	ErrKindColumnNotFound         // column absent from the resolved table
)

var kindNames = [...]string{
	ErrKindUnknown:                "unknown",
	ErrKindNotFound:               "not_found",
	ErrKindConnectionFailed:       "connection_failed",
	ErrKindTimeout:                "timeout",
	ErrKindQueryFailed:            "query_failed",
	ErrKindInvalidInput:           "invalid_input",
	ErrKindPermissionDenied:       "permission_denied",
	ErrKindNoAcceptableConnection: "no_acceptable_connection",
	ErrKindIntrospection:          "introspection_failed",
	ErrKindTableNotFound:          "table_not_found",
	ErrKindColumnNotFound:         "column_not_found",
}

func (k ErrKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[ErrKindUnknown]
	}
	return kindNames[k]
}

// Error carries a kind, a message for humans and the native cause.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps cause reachable through errors.Is and errors.As.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func NoAcceptableConnection(table string) *Error {
	return Newf(ErrKindNoAcceptableConnection, "no acceptable connection for table %q", table)
}

func TableNotFound(table string) *Error {
	return Newf(ErrKindTableNotFound, "table %q does not exist", table)
}

func ColumnNotFound(table, column string) *Error {
	return Newf(ErrKindColumnNotFound, "column %q does not exist on table %q", column, table)
}

// Introspection wraps cause as an introspection failure. A cause that
// already is one is returned as is, so messages do not stack up across
// layers.
func Introspection(msg string, cause error) error {
	if cause != nil && IsIntrospectionFailed(cause) {
		return cause
	}
	return Wrap(ErrKindIntrospection, msg, cause)
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// ErrKindUnknown.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}

func IsNotFound(err error) bool               { return KindOf(err) == ErrKindNotFound }
func IsTimeout(err error) bool                { return KindOf(err) == ErrKindTimeout }
func IsConnectionFailed(err error) bool       { return KindOf(err) == ErrKindConnectionFailed }
func IsQueryFailed(err error) bool            { return KindOf(err) == ErrKindQueryFailed }
func IsInvalidInput(err error) bool           { return KindOf(err) == ErrKindInvalidInput }
func IsPermissionDenied(err error) bool       { return KindOf(err) == ErrKindPermissionDenied }
func IsNoAcceptableConnection(err error) bool { return KindOf(err) == ErrKindNoAcceptableConnection }
func IsIntrospectionFailed(err error) bool    { return KindOf(err) == ErrKindIntrospection }
func IsTableNotFound(err error) bool          { return KindOf(err) == ErrKindTableNotFound }
func IsColumnNotFound(err error) bool         { return KindOf(err) == ErrKindColumnNotFound }

// Package dbcore holds the on-disk data model: typed field columns, pages,
// per-database metadata records, and the condition language used to
// evaluate WHERE-style predicates against them.
package dbcore

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error taxonomy buckets from the error handling
// design: schema errors, constraint violations, missing objects, illegal
// engine state, parse failures, I/O failures, and illegal index requests.
type Kind string

const (
	KindSchema     Kind = "schema"
	KindConstraint Kind = "constraint"
	KindNotFound   Kind = "not_found"
	KindState      Kind = "state"
	KindParse      Kind = "parse"
	KindIO         Kind = "io"
	KindIndex      Kind = "index"
)

// Error wraps a Kind with a message and an optional cause. Callers that need
// to branch on the kind use errors.As, the way the teacher's validate*.go
// wraps plain errors with %w and lets callers errors.Is against sentinels.
type Error struct {
	Kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.cause)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// Newf builds a new taxonomy error with a formatted message.
func Newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind and contextual message to an existing error.
func Wrap(k Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: k, msg: fmt.Sprintf(format, args...), cause: cause}
}

// Is reports whether err is a taxonomy error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// Sentinel causes for conditions callers commonly need to branch on
// regardless of the wrapping message, mirroring the teacher's pattern of
// small sentinel errors (core/validate.go's bare errors.New values).
var (
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrNullViolation  = errors.New("null violation")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrNoActiveDB     = errors.New("no active database")
	ErrTxnInProgress  = errors.New("transaction already in progress")
	ErrNoTransaction  = errors.New("no transaction in progress")
)

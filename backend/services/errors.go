package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindNotEnrolled     Kind = "NOT_ENROLLED"
	KindAlreadyEnrolled Kind = "ALREADY_ENROLLED"
	KindValidation      Kind = "VALIDATION"
	KindInternal        Kind = "INTERNAL"
)

// Sentinels for errors.Is; any *Error of the same kind matches.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrNotEnrolled     = &Error{Kind: KindNotEnrolled}
	ErrAlreadyEnrolled = &Error{Kind: KindAlreadyEnrolled}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrInternal        = &Error{Kind: KindInternal}
)

type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "":
		b.WriteString(e.Msg)
	default:
		b.WriteString(strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " ")))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message. Internal errors never expose their cause.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "internal error"
	}
	if e.Msg != "" {
		return e.Msg
	}
	return strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " "))
}

func notFound(op, msg string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: msg}
}

func notEnrolled(op string) *Error {
	return &Error{Kind: KindNotEnrolled, Op: op, Msg: "user is not enrolled in this course"}
}

func alreadyEnrolled(op string) *Error {
	return &Error{Kind: KindAlreadyEnrolled, Op: op, Msg: "user is already enrolled in this course"}
}

func invalid(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

// wrap leaves typed errors alone and turns anything else into an internal error.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Op: op, Err: err}
	}
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}

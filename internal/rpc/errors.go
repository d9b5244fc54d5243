package rpc

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUnknownAction = errors.New("unknown action")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("invalid state")
	ErrConsistency   = errors.New("consistency fault")
	ErrPersistence   = errors.New("persistence error")
	ErrCancelled     = errors.New("cancelled")
)

// FieldError reports the first field of a submission that failed to parse.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("error parsing `%s`: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return []error{ErrValidation, e.Err}
}

// ActionError names the action kind a failure belongs to.
type ActionError struct {
	Method Method
	Err    error
}

func (e *ActionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *ActionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// NotFoundf builds an error matching ErrNotFound with a readable message.
func NotFoundf(format string, args ...any) error {
	return &kindError{msg: fmt.Sprintf(format, args...), kind: ErrNotFound}
}

// Conflictf builds an error matching ErrConflict for a failed precondition.
func Conflictf(format string, args ...any) error {
	return &kindError{msg: fmt.Sprintf(format, args...), kind: ErrConflict}
}

type persistenceError struct {
	op  string
	err error
}

func (e *persistenceError) Error() string { return e.op + ": " + e.err.Error() }

func (e *persistenceError) Unwrap() []error { return []error{ErrPersistence, e.err} }

// Persistence marks err as a store failure that happened during op.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &persistenceError{op: op, err: err}
}

// Reason returns the part of err meant for the person who ran the action.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var actionErr *ActionError
	if errors.As(err, &actionErr) && actionErr.Err != nil {
		return actionErr.Err.Error()
	}
	return err.Error()
}

// Package apperr classifies failures surfaced by workflows and the use-case
// layer into a small closed set of kinds.
package apperr

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindUnexpected Kind = iota
	KindDomainRule
	KindNotFound
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindDomainRule:
		return "domain_rule"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// Error carries a kind and the underlying cause. Op is set only by Wrap.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

func NotFound(err error) error  { return newKind(KindNotFound, err) }
func Rule(err error) error      { return newKind(KindDomainRule, err) }
func Forbidden(err error) error { return newKind(KindForbidden, err) }
func Conflict(err error) error  { return newKind(KindConflict, err) }

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindUnexpected when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Wrap leaves already classified failures untouched and turns anything else
// into an unexpected failure of op that keeps err as its cause.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindUnexpected {
		return err
	}
	var e *Error
	if errors.As(err, &e) && e.Op != "" {
		return err
	}
	return &Error{Op: op, Kind: KindUnexpected, Err: err}
}

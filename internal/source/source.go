// Package source fetches the raw 2-D values a dataset is built from.
package source

import (
	"context"
	"errors"
)

// DefaultRange is the A1 range read when none is configured.
const DefaultRange = "Sheet1!A:Z"

// Error kinds. Match them with errors.Is.
var (
	ErrAuth      = errors.New("authorization failed")
	ErrTransport = errors.New("fetch failed")
)

// Source returns the raw values of a range; the first row is the header.
type Source interface {
	Fetch(ctx context.Context, rangeRef string) ([][]string, error)
}

// AuthResetter is implemented by sources that cache an authorization artifact.
// ResetAuth discards it so the next Fetch authorizes from scratch.
type AuthResetter interface {
	ResetAuth(ctx context.Context) error
}

// Error is a fetch failure tagged with its kind.
type Error struct {
	Kind error // ErrAuth or ErrTransport
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func authError(op string, err error) error {
	return &Error{Kind: ErrAuth, Op: op, Err: err}
}

func transportError(op string, err error) error {
	return &Error{Kind: ErrTransport, Op: op, Err: err}
}

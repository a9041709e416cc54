package model

import (
	"errors"
	"fmt"
)

// Sentinel errors used to classify allocation failures.
var (
	// ErrMalformedInput reports a profile or catalog that does not have the
	// expected shape or keys.
	ErrMalformedInput = errors.New("malformed input")
	// ErrDegenerateWeights reports a total Load weight of zero.
	ErrDegenerateWeights = errors.New("degenerate weights")
	// ErrIO reports a failure while reading inputs or writing results.
	ErrIO = errors.New("io failure")
)

// ErrorKind is a coarse classification of an OpError.
type ErrorKind string

const (
	KindMalformedInput    ErrorKind = "malformed_input"
	KindDegenerateWeights ErrorKind = "degenerate_weights"
	KindIO                ErrorKind = "io"
)

// OpError wraps an underlying error with the operation that failed.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // optional
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is match an OpError against the sentinel of its kind.
func (e *OpError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindMalformedInput:
		return target == ErrMalformedInput
	case KindDegenerateWeights:
		return target == ErrDegenerateWeights
	case KindIO:
		return target == ErrIO
	}
	return false
}

// Malformed returns an OpError of kind KindMalformedInput.
func Malformed(op, path string, format string, args ...any) error {
	return &OpError{Op: op, Kind: KindMalformedInput, Path: path, Err: fmt.Errorf(format, args...)}
}

// IOError wraps err as an OpError of kind KindIO.
func IOError(op, path string, err error) error {
	return &OpError{Op: op, Kind: KindIO, Path: path, Err: err}
}

// IsKind reports whether err wraps an OpError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// KindOf classifies err by the sentinel it matches. It returns "" for
// errors outside the taxonomy, such as a cancelled context.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedInput):
		return KindMalformedInput
	case errors.Is(err, ErrDegenerateWeights):
		return KindDegenerateWeights
	case errors.Is(err, ErrIO):
		return KindIO
	}
	return ""
}

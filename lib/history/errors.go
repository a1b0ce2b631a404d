package history

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

type ErrorClass int

const (
	ClassTransient ErrorClass = iota
	ClassFatal
)

func (c ErrorClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassFatal:
		return "fatal"
	default:
		return fmt.Sprintf("ErrorClass(%d)", int(c))
	}
}

// PreconditionError means the provider reported a change with a shape the
// store can't represent. It is never retried.
type PreconditionError struct {
	Msg string
}

func NewPreconditionError(format string, a ...any) error {
	return errors.WithStack(&PreconditionError{Msg: fmt.Sprintf(format, a...)})
}

func (e *PreconditionError) Error() string {
	return "precondition violated: " + e.Msg
}

type ProviderError struct {
	Class ErrorClass
	Op    string
	Err   error
}

func NewProviderError(class ErrorClass, op string, err error) error {
	return errors.WithStack(&ProviderError{Class: class, Op: op, Err: err})
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func Classify(err error) ErrorClass {
	if err == nil {
		return ClassTransient
	}

	var pre *PreconditionError
	if errors.As(err, &pre) {
		return ClassFatal
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Class
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassFatal
	}

	return ClassTransient
}

func IsFatal(err error) bool {
	return Classify(err) == ClassFatal
}

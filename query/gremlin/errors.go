package gremlin

import (
	"errors"
	"fmt"
)

// ErrorKind classifies compilation errors.
type ErrorKind int

const (
	// MissingPivot is returned when a step that requires a current element runs without one.
	MissingPivot ErrorKind = iota + 1
	// InvalidFragmentLabels is returned for match fragments with a wrong number of start or end labels.
	InvalidFragmentLabels
	// InvalidArgument is returned when a step receives a value it cannot lower.
	InvalidArgument
	// UnsupportedOperation is returned when the current element does not implement the step.
	UnsupportedOperation
)

func (k ErrorKind) String() string {
	switch k {
	case MissingPivot:
		return "missing pivot"
	case InvalidFragmentLabels:
		return "invalid fragment labels"
	case InvalidArgument:
		return "invalid argument"
	case UnsupportedOperation:
		return "unsupported operation"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// CompilationError is the only error type returned by the compiler.
type CompilationError struct {
	Kind ErrorKind
	Step string // name of the innermost failing step
	Msg  string
}

func (e *CompilationError) Error() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Step != "" {
		s = e.Step + ": " + s
	}
	return s
}

// Is allows to compare errors with sentinel values by kind.
func (e *CompilationError) Is(target error) bool {
	t, ok := target.(*CompilationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Step == "" && t.Msg == ""
}

var (
	ErrMissingPivot          = &CompilationError{Kind: MissingPivot}
	ErrInvalidFragmentLabels = &CompilationError{Kind: InvalidFragmentLabels}
	ErrInvalidArgument       = &CompilationError{Kind: InvalidArgument}
	ErrUnsupportedOperation  = &CompilationError{Kind: UnsupportedOperation}
)

func errorf(kind ErrorKind, format string, args ...interface{}) error {
	return &CompilationError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func errMissingPivot() error {
	return &CompilationError{Kind: MissingPivot, Msg: "no current element"}
}

func errUnsupported(op Op, k Kind) error {
	return errorf(UnsupportedOperation, "%s is not supported for %s", op, k)
}

// withStep attributes an error to a step, unless a nested step was already blamed.
func withStep(err error, step string) error {
	var ce *CompilationError
	if errors.As(err, &ce) {
		if ce.Step == "" {
			cp := *ce
			cp.Step = step
			return &cp
		}
		return err
	}
	return &CompilationError{Kind: InvalidArgument, Step: step, Msg: err.Error()}
}

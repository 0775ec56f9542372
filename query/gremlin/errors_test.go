package gremlin

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompilationError(t *testing.T) {
	err := errorf(UnsupportedOperation, "out is not supported for value")
	require.Equal(t, "unsupported operation: out is not supported for value", err.Error())

	named := withStep(err, "Out")
	require.Equal(t, "Out: unsupported operation: out is not supported for value", named.Error())
	require.True(t, errors.Is(named, ErrUnsupportedOperation))
	require.False(t, errors.Is(named, ErrMissingPivot))

	// the innermost step keeps the blame
	require.Equal(t, named, withStep(named, "Union"))

	wrapped := fmt.Errorf("compile: %w", named)
	var ce *CompilationError
	require.True(t, errors.As(wrapped, &ce))
	require.Equal(t, "Out", ce.Step)
}

func TestForeignErrorsAreInvalidArguments(t *testing.T) {
	err := withStep(errors.New("boom"), "Has")
	require.True(t, errors.Is(err, ErrInvalidArgument))
	require.Equal(t, "Has: invalid argument: boom", err.Error())
}

func TestErrorKindString(t *testing.T) {
	require.Equal(t, "missing pivot", MissingPivot.String())
	require.Equal(t, "invalid fragment labels", InvalidFragmentLabels.String())
	require.Equal(t, "ErrorKind(42)", ErrorKind(42).String())
}

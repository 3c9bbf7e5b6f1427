package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrInput, "Host list not found", "Check the path passed to --input")

	assert.Equal(t, ErrInput, err.Code)
	assert.Equal(t, "Host list not found", err.Message)
	assert.Equal(t, "Check the path passed to --input", err.Suggestion)
	assert.Nil(t, err.Cause)
}

func TestErrorFormat(t *testing.T) {
	err := New(ErrProbe, "Probe failed", "Check the ssh binary is installed")
	msg := err.Error()

	assert.Contains(t, msg, "✗ Probe failed")
	assert.Contains(t, msg, "Check the ssh binary is installed")
}

func TestErrorFormatWithCause(t *testing.T) {
	cause := errors.New("exec: \"ssh\": executable file not found in $PATH")
	err := WrapWithCode(cause, ErrExec, "Couldn't start the SSH client", "Install openssh-client")

	msg := err.Error()
	assert.Contains(t, msg, "✗ Couldn't start the SSH client")
	assert.Contains(t, msg, "executable file not found")
	assert.Contains(t, msg, "Install openssh-client")
}

func TestWrapDefaultsToProbe(t *testing.T) {
	err := Wrap(errors.New("boom"), "Probe blew up")
	assert.Equal(t, ErrProbe, err.Code)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := WrapWithCode(cause, ErrStore, "Store open failed", "")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Bad config", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrInput))
	assert.False(t, IsCode(nil, ErrConfig))
	assert.False(t, IsCode(errors.New("plain"), ErrConfig))
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := New(ErrInput, "Missing file", "")
	outer := fmt.Errorf("loading hosts: %w", inner)

	assert.True(t, IsCode(outer, ErrInput))
}

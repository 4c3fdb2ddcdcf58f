package errors

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrConfig, "Interval too short", "Minimum interval is 100ms")

	assert.Equal(t, ErrConfig, err.Code)
	assert.Equal(t, "Interval too short", err.Message)
	assert.Equal(t, "Minimum interval is 100ms", err.Suggestion)
	assert.Nil(t, err.Cause)
}

func TestErrorFormat(t *testing.T) {
	err := New(ErrUnavailable, "Cannot read /proc/stat", "Check that procfs is mounted")
	msg := err.Error()

	assert.True(t, strings.HasPrefix(msg, "✗ Cannot read /proc/stat"))
	assert.Contains(t, msg, "Check that procfs is mounted")
}

func TestErrorFormat_WithCause(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := WrapWithCode(cause, ErrPermission, "Cannot read counters", "Run with more privilege")
	msg := err.Error()

	assert.Contains(t, msg, "✗ Cannot read counters")
	assert.Contains(t, msg, "permission denied")
	assert.Contains(t, msg, "Run with more privilege")
}

func TestWrap_DefaultsToUnavailable(t *testing.T) {
	cause := stderrors.New("no such file")
	err := Wrap(cause, "Cannot read /proc/diskstats")

	assert.Equal(t, ErrUnavailable, err.Code)
	assert.Equal(t, cause, err.Cause)
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := WrapWithCode(cause, ErrParse, "bad layout", "")

	assert.True(t, stderrors.Is(err, cause))
}

func TestIsCode(t *testing.T) {
	err := New(ErrParse, "Unexpected layout", "")

	assert.True(t, IsCode(err, ErrParse))
	assert.False(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(nil, ErrParse))
	assert.False(t, IsCode(stderrors.New("plain"), ErrParse))
}

func TestIsCode_Wrapped(t *testing.T) {
	inner := New(ErrPermission, "denied", "")
	outer := WrapWithCode(inner, ErrUnavailable, "outer", "")

	// The outermost structured code wins.
	require.True(t, IsCode(outer, ErrUnavailable))
}

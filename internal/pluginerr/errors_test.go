package pluginerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := New(CodeCorruptCatalog, "failed to write catalog").
		WithContext("path", "/data/plugins.db").
		WithCause(cause)

	assert.Equal(t, CodeCorruptCatalog, err.Code)
	assert.Equal(t, "/data/plugins.db", err.Context["path"])
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "CORRUPT_CATALOG")
	assert.Contains(t, err.Error(), "disk full")
}

func TestIs(t *testing.T) {
	err := New(CodeIncompatibleSchema, "unrecognized version")
	assert.True(t, Is(err, CodeIncompatibleSchema))
	assert.False(t, Is(err, CodeCommitFailed))

	var plain error = errors.New("plain error")
	assert.False(t, Is(plain, CodeIncompatibleSchema))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(CodeInternal, "wrapped").WithCause(cause)
	require.Equal(t, cause, errors.Unwrap(err))
}

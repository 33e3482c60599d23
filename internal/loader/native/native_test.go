package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStubAlwaysFailsOpen(t *testing.T) {
	ld := New()
	_, err := ld.Open("/plugins/Anything.vst3", "Anything")
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestStubParametersFails(t *testing.T) {
	ld := New()
	_, err := ld.Parameters(nil)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

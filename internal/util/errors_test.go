package util

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestPanicError(t *testing.T) {
	sentinel := errors.New("boom")
	err := panicError(sentinel)
	// an error panic value keeps its identity
	assert.True(t, errors.Is(err, sentinel))

	err = panicError("not an error")
	assert.EqualError(t, err, "panic: not an error")

	err = panicError(42)
	assert.EqualError(t, err, "panic: 42")
}

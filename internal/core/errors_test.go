package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransient(t *testing.T) {
	base := errors.New("connection reset")

	assert.Nil(t, Transient(nil))
	assert.True(t, IsTransient(Transient(base)))
	assert.False(t, IsTransient(base))

	// Wrapping preserves the classification and the cause.
	wrapped := fmt.Errorf("call llm: %w", Transient(base))
	assert.True(t, IsTransient(wrapped))
	assert.ErrorIs(t, wrapped, base)
}

package common

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTry(t *testing.T) {
	result, err, stack := Try(func() int { return 42 })
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Empty(t, stack)

	_, err, stack = Try(func() int { panic("unreachable: boom") })
	var internal *InternalError
	require.ErrorAs(t, err, &internal)
	assert.Equal(t, "internal error: unreachable: boom", err.Error())
	assert.Contains(t, stack, "TestTry")

	_, err, _ = Try(func() int { panic(io.EOF) })
	assert.True(t, errors.Is(err, io.EOF))
}

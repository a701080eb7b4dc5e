package transport

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsShutdownErr(t *testing.T) {
	assert.True(t, isShutdownErr(context.Canceled))
	assert.True(t, isShutdownErr(context.DeadlineExceeded))
	assert.True(t, isShutdownErr(fmt.Errorf("poll: %w", context.Canceled)))

	assert.False(t, isShutdownErr(nil))
	assert.False(t, isShutdownErr(assert.AnError))
}

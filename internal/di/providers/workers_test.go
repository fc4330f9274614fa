package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootContext(t *testing.T) {
	ctx, cancel := bootContext()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(bootTimeout), deadline, 5*time.Second)

	cancel()
	assert.Error(t, ctx.Err())
}

package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgInterval(t *testing.T) {
	assert.Equal(t, "90 seconds", PgInterval(90*time.Second))
	assert.Equal(t, "3600 seconds", PgInterval(time.Hour))
}

func TestNextBackoffWithJitterBounds(t *testing.T) {
	for attempts := -1; attempts < 15; attempts++ {
		d := NextBackoffWithJitter(attempts)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond, "attempts=%d", attempts)
		assert.LessOrEqual(t, d, 30*time.Minute, "attempts=%d", attempts)
	}
}

func TestSleepCtxCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SleepCtx(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSleepCtxZeroDuration(t *testing.T) {
	require.NoError(t, SleepCtx(context.Background(), 0))
}

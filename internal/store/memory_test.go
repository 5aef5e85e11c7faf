// ABOUTME: Tests for the in-memory conversation log
// ABOUTME: Covers snapshot isolation and closed-log behaviour

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLog_AllReturnsSnapshot(t *testing.T) {
	log := NewMemoryLog(0)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, entry(1)))
	snapshot, err := log.All(ctx)
	require.NoError(t, err)

	require.NoError(t, log.Append(ctx, entry(2)))

	assert.Len(t, snapshot, 1)
	assert.Equal(t, 2, log.Len())
}

func TestMemoryLog_CapHoldsSteady(t *testing.T) {
	log := NewMemoryLog(2)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		require.NoError(t, log.Append(ctx, entry(i)))
		assert.LessOrEqual(t, log.Len(), 2)
	}
}

func TestMemoryLog_AppendAfterClose(t *testing.T) {
	log := NewMemoryLog(0)
	require.NoError(t, log.Close())

	err := log.Append(context.Background(), entry(1))
	assert.ErrorIs(t, err, ErrClosed)
}

package playback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochAdvanceSupersedes(t *testing.T) {
	e := NewEpoch()
	first := e.Advance(context.Background())
	assert.True(t, first.Current())
	assert.Equal(t, uint64(1), first.Generation())

	second := e.Advance(context.Background())
	assert.False(t, first.Current())
	assert.ErrorIs(t, first.Context().Err(), context.Canceled)
	assert.True(t, second.Current())

	ran := false
	assert.False(t, e.Do(first, func() { ran = true }))
	assert.False(t, ran)
	assert.True(t, e.Do(second, func() { ran = true }))
	assert.True(t, ran)

	e.Close()
	assert.False(t, second.Current())
	assert.Equal(t, uint64(2), e.Generation())
}

func TestEpochParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tok := NewEpoch().Advance(ctx)
	cancel()
	assert.False(t, tok.Current())
}

func TestZeroTokenIsNeverCurrent(t *testing.T) {
	var tok Token
	assert.False(t, tok.Current())
	assert.NotNil(t, tok.Context())
}

func TestEpochClaimFollowsReservationOrder(t *testing.T) {
	e := NewEpoch()
	older := e.Reserve()
	newer := e.Reserve()

	tok, ok := e.Claim(context.Background(), newer)
	require.True(t, ok)
	assert.Equal(t, uint64(1), tok.Generation())

	_, ok = e.Claim(context.Background(), older)
	assert.False(t, ok)
	assert.True(t, tok.Current())
	assert.Equal(t, uint64(1), e.Generation())

	// a later ticket that never claims does not block earlier ones
	pending := e.Reserve()
	e.Reserve()
	tok, ok = e.Claim(context.Background(), pending)
	require.True(t, ok)
	assert.Equal(t, uint64(2), tok.Generation())
}

package timeout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingExpiresAfterDuration(t *testing.T) {
	policy := NewSliding(10*time.Millisecond, UnlimitedUses)

	assert.False(t, policy.HasExpired())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, policy.HasExpired())
}

func TestSlidingUseResetsClock(t *testing.T) {
	policy := NewSliding(40*time.Millisecond, UnlimitedUses)

	time.Sleep(25 * time.Millisecond)
	_, err := policy.IncrementUses()
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)
	assert.False(t, policy.HasExpired())
}

func TestSlidingExpiresAfterMaxUses(t *testing.T) {
	policy := NewSliding(time.Hour, 2)

	exhausted, err := policy.IncrementUses()
	require.NoError(t, err)
	assert.False(t, exhausted)
	assert.False(t, policy.HasExpired())

	exhausted, err = policy.IncrementUses()
	require.NoError(t, err)
	assert.True(t, exhausted)
	assert.True(t, policy.HasExpired())
}

func TestSlidingIncrementAfterDepletionFails(t *testing.T) {
	policy := NewSliding(time.Hour, 1)

	_, err := policy.IncrementUses()
	require.NoError(t, err)

	_, err = policy.IncrementUses()
	require.ErrorIs(t, err, ErrUsesDepleted)
}

func TestSlidingHasExpiredIsIdempotent(t *testing.T) {
	policy := NewSliding(time.Hour, 1)

	for i := 0; i < 3; i++ {
		assert.False(t, policy.HasExpired())
	}
}

func TestDeadlineExpiresAtDeadline(t *testing.T) {
	policy := NewDeadline(time.Now().Add(15*time.Millisecond), UnlimitedUses)

	assert.False(t, policy.HasExpired())

	time.Sleep(30 * time.Millisecond)
	assert.True(t, policy.HasExpired())
}

func TestDeadlineUsesDoNotMoveDeadline(t *testing.T) {
	policy := NewDeadline(time.Now().Add(20*time.Millisecond), UnlimitedUses)

	_, err := policy.IncrementUses()
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	assert.True(t, policy.HasExpired())
}

func TestDeadlineExpiresAfterMaxUses(t *testing.T) {
	policy := NewDeadline(time.Now().Add(time.Hour), 1)

	exhausted, err := policy.IncrementUses()
	require.NoError(t, err)
	assert.True(t, exhausted)
	assert.True(t, policy.HasExpired())

	_, err = policy.IncrementUses()
	require.ErrorIs(t, err, ErrUsesDepleted)
}

func TestNeverDoesNotExpire(t *testing.T) {
	policy := Never{}

	for i := 0; i < 5; i++ {
		exhausted, err := policy.IncrementUses()
		require.NoError(t, err)
		assert.False(t, exhausted)
	}

	assert.False(t, policy.HasExpired())
}

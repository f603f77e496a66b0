package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whitebit/pkg/core"
)

func newTestBreaker(t *testing.T, config Config) *Breaker {
	t.Helper()
	breaker, err := New(config)
	require.NoError(t, err)
	return breaker
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{FailThreshold: 0, SuccessThreshold: 1, Cooldown: time.Second})
	assert.True(t, core.IsConfigError(err))

	_, err = New(Config{FailThreshold: 1, SuccessThreshold: 0, Cooldown: time.Second})
	assert.True(t, core.IsConfigError(err))

	_, err = New(Config{FailThreshold: 1, SuccessThreshold: 1, Cooldown: 0})
	assert.True(t, core.IsConfigError(err))
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	breaker := newTestBreaker(t, Config{FailThreshold: 3, SuccessThreshold: 1, Cooldown: time.Minute})

	for i := 0; i < 2; i++ {
		assert.True(t, breaker.Allow())
		breaker.Record(false)
		assert.Equal(t, StateClosed, breaker.State())
	}

	breaker.Record(false)
	assert.Equal(t, StateOpen, breaker.State())
	assert.False(t, breaker.Allow())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	breaker := newTestBreaker(t, Config{FailThreshold: 2, SuccessThreshold: 1, Cooldown: time.Minute})

	breaker.Record(false)
	breaker.Record(true)
	breaker.Record(false)

	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreaker_HalfOpenAfterCooldown(t *testing.T) {
	breaker := newTestBreaker(t, Config{FailThreshold: 1, SuccessThreshold: 1, Cooldown: 50 * time.Millisecond})

	breaker.Record(false)
	require.Equal(t, StateOpen, breaker.State())
	assert.False(t, breaker.Allow())

	now := time.Now()
	breaker.clock = func() time.Time { return now.Add(time.Second) }

	assert.True(t, breaker.Allow())
	assert.Equal(t, StateHalfOpen, breaker.State())
}

func TestBreaker_HalfOpenClosesOnSuccess(t *testing.T) {
	breaker := newTestBreaker(t, Config{FailThreshold: 1, SuccessThreshold: 2, Cooldown: time.Minute})

	breaker.Record(false)
	now := time.Now()
	breaker.clock = func() time.Time { return now.Add(2 * time.Minute) }
	require.True(t, breaker.Allow())

	breaker.Record(true)
	assert.Equal(t, StateHalfOpen, breaker.State())

	breaker.Record(true)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreaker_HalfOpenReopensOnFailure(t *testing.T) {
	breaker := newTestBreaker(t, Config{FailThreshold: 1, SuccessThreshold: 1, Cooldown: time.Minute})

	breaker.Record(false)
	now := time.Now()
	breaker.clock = func() time.Time { return now.Add(2 * time.Minute) }
	require.True(t, breaker.Allow())

	breaker.Record(false)
	assert.Equal(t, StateOpen, breaker.State())
	assert.False(t, breaker.Allow())
}

func TestBreaker_Reset(t *testing.T) {
	breaker := newTestBreaker(t, Config{FailThreshold: 1, SuccessThreshold: 1, Cooldown: time.Minute})

	breaker.Record(false)
	require.Equal(t, StateOpen, breaker.State())

	breaker.Reset()
	assert.Equal(t, StateClosed, breaker.State())
	assert.True(t, breaker.Allow())
}

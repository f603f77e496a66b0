package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whitebit/pkg/core"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestLimiter_New(t *testing.T) {
	limiter, err := New(10, time.Second)

	require.NoError(t, err)
	assert.Equal(t, 10, limiter.Capacity())
	assert.Equal(t, time.Second, limiter.Window())
}

func TestLimiter_New_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		_, err := New(capacity, time.Second)

		require.Error(t, err)
		assert.True(t, core.IsConfigError(err))
	}
}

func TestLimiter_New_InvalidWindow(t *testing.T) {
	for _, window := range []time.Duration{0, -time.Second} {
		_, err := New(5, window)

		require.Error(t, err)
		assert.True(t, core.IsConfigError(err))
	}
}

func TestLimiter_NewTier(t *testing.T) {
	limiter, err := NewTier(core.TierPrivateV4)

	require.NoError(t, err)
	assert.Equal(t, 60, limiter.Capacity())
	assert.Equal(t, time.Minute, limiter.Window())
}

func TestLimiter_Wait_UnderCapacity(t *testing.T) {
	limiter, err := New(5, time.Second)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		err := limiter.Wait(context.Background())
		assert.NoError(t, err, "admission %d should not block", i+1)
	}
	assert.Equal(t, 5, limiter.Pending())
}

func TestLimiter_TrailingWindow(t *testing.T) {
	clock := newFakeClock()
	limiter, err := New(2, time.Second, WithClock(clock.Now))
	require.NoError(t, err)

	wait, ok := limiter.tryAcquire()
	assert.True(t, ok)
	assert.Zero(t, wait)

	clock.Advance(300 * time.Millisecond)
	_, ok = limiter.tryAcquire()
	assert.True(t, ok)

	// Window is full; the third attempt must wait until the first
	// admission at t=0 ages out at t=1s.
	clock.Advance(200 * time.Millisecond)
	wait, ok = limiter.tryAcquire()
	assert.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait)

	clock.Advance(wait)
	_, ok = limiter.tryAcquire()
	assert.True(t, ok)
}

func TestLimiter_TrailingWindow_EntriesExpireIndividually(t *testing.T) {
	clock := newFakeClock()
	limiter, err := New(3, time.Second, WithClock(clock.Now))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, ok := limiter.tryAcquire()
		require.True(t, ok)
		clock.Advance(200 * time.Millisecond)
	}
	// t=600ms: all three admissions are inside the window.
	assert.Equal(t, 3, limiter.Pending())

	// t=1.1s: only the admission at t=0 has aged out.
	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, 2, limiter.Pending())

	_, ok := limiter.tryAcquire()
	assert.True(t, ok)
}

func TestLimiter_Wait_BlocksUntilWindowSlides(t *testing.T) {
	limiter, err := New(2, 100*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, limiter.Wait(context.Background()))
	require.NoError(t, limiter.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}

func TestLimiter_Wait_ContextCancellation(t *testing.T) {
	limiter, err := New(1, time.Minute)
	require.NoError(t, err)

	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The canceled wait must not have consumed a slot.
	assert.Equal(t, 1, limiter.Pending())
}

func TestLimiter_Wait_CanceledBeforeCall(t *testing.T) {
	limiter, err := New(1, time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, limiter.Pending())
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, err := New(100, time.Second)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, limiter.Wait(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, limiter.Pending())
}

func TestLimiter_Metrics(t *testing.T) {
	limiter, err := New(2, time.Minute)
	require.NoError(t, err)

	require.NoError(t, limiter.Wait(context.Background()))
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_ = limiter.Wait(ctx)

	snapshot := limiter.Metrics()
	assert.Equal(t, int64(3), snapshot.TotalRequests)
	assert.Equal(t, int64(2), snapshot.Admitted)
	assert.Equal(t, int64(1), snapshot.Canceled)
}

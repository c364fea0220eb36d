package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerClock struct {
	now time.Time
}

func (c *providerClock) Now() time.Time { return c.now }

func (c *providerClock) wait(d time.Duration) { c.now = c.now.Add(d) }

func newProviderBreaker(clock *providerClock) *Breaker {
	return New("gl",
		WithFailureThreshold(3),
		WithSuccessThreshold(2),
		WithCooldown(30*time.Second),
		WithClock(clock.Now),
	)
}

func TestBreaker_StartsClosed(t *testing.T) {
	b := New("standard")
	assert.Equal(t, "standard", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())
	assert.True(t, b.Allow())
}

func TestBreaker_ProviderOutageLifecycle(t *testing.T) {
	clock := &providerClock{now: time.Date(2025, 5, 12, 14, 0, 0, 0, time.UTC)}
	b := newProviderBreaker(clock)

	// three consecutive 5xx responses take the provider out
	for i := 0; i < 2; i++ {
		require.True(t, b.Allow())
		useFallback, change := b.RecordFailure()
		assert.False(t, useFallback)
		assert.False(t, change.Opened)
	}
	require.True(t, b.Allow())
	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.Equal(t, "open", b.State().String())

	// verifications during the outage are rejected without a call
	assert.False(t, b.Allow())
	clock.wait(29 * time.Second)
	assert.False(t, b.Allow())

	// a failed probe keeps it open and restarts the success count
	clock.wait(time.Second)
	require.True(t, b.Allow())
	assert.False(t, b.Allow(), "one probe per cooldown window")
	b.RecordSuccess()
	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened, "already open")

	// the provider recovers: two good probes close the breaker
	clock.wait(30 * time.Second)
	require.True(t, b.Allow())
	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary)
	assert.False(t, change.Closed)

	clock.wait(30 * time.Second)
	require.True(t, b.Allow())
	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.True(t, b.Allow())
}

func TestBreaker_IntermittentFailuresStayClosed(t *testing.T) {
	b := New("standard", WithFailureThreshold(3))

	outcomes := []bool{false, false, true, false, false, true, false, false}
	for i, ok := range outcomes {
		if ok {
			b.RecordSuccess()
		} else {
			b.RecordFailure()
		}
		assert.False(t, b.IsOpen(), "call %d", i)
	}

	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreaker_Reset(t *testing.T) {
	b := New("gl", WithFailureThreshold(1))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock lets tests move a breaker through its cooldowns.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(opts ...Option) (*Breaker, *clock) {
	c := &clock{t: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
	b := New("redis", opts...)
	b.now = c.now
	return b, c
}

// call stands in for one cache command: it asks the breaker, then reports the
// outcome the way the cache store does.
func call(b *Breaker, fails bool) (attempted bool, change StateChange) {
	if !b.Allow() {
		return false, StateChange{}
	}
	if fails {
		_, change = b.RecordFailure()
	} else {
		_, change = b.RecordSuccess()
	}
	return true, change
}

func TestNewDefaults(t *testing.T) {
	b := New("redis")

	assert.Equal(t, "redis", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, 5, b.failureThreshold)
	assert.Equal(t, 2, b.successThreshold)
	assert.Equal(t, 5*time.Second, b.cooldown)
}

func TestOptionsIgnoreNonPositiveValues(t *testing.T) {
	b := New("redis", WithFailureThreshold(0), WithSuccessThreshold(-1), WithCooldown(0))

	assert.Equal(t, 5, b.failureThreshold)
	assert.Equal(t, 2, b.successThreshold)
	assert.Equal(t, 5*time.Second, b.cooldown)
}

func TestRedisOutageTripsSharedBreaker(t *testing.T) {
	// one breaker guards the caches of every kind, so failures add up across them
	b, _ := newTestBreaker(WithFailureThreshold(3), WithCooldown(time.Minute))

	for i, kind := range []string{"country", "doctor", "hospital"} {
		attempted, change := call(b, true)
		require.True(t, attempted, "%s read reaches redis while closed", kind)
		assert.Equal(t, i == 2, change.Opened, "%s failure", kind)
	}
	assert.True(t, b.IsOpen())

	attempted, _ := call(b, true)
	assert.False(t, attempted, "the next kind skips redis inside the cooldown")
}

func TestIntermittentErrorsDoNotTrip(t *testing.T) {
	b, _ := newTestBreaker(WithFailureThreshold(2))

	for _, fails := range []bool{true, false, true, false, true} {
		attempted, change := call(b, fails)
		require.True(t, attempted)
		require.False(t, change.Opened)
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestProbesRecoverAfterCooldown(t *testing.T) {
	b, clk := newTestBreaker(WithFailureThreshold(1), WithSuccessThreshold(2), WithCooldown(time.Second))
	call(b, true)
	require.True(t, b.IsOpen())

	clk.advance(time.Second)
	attempted, change := call(b, false)
	require.True(t, attempted, "first probe after the cooldown")
	assert.False(t, change.Closed, "one good probe is not enough")

	attempted, _ = call(b, false)
	assert.False(t, attempted, "probes are spaced by the cooldown")

	clk.advance(time.Second)
	attempted, change = call(b, false)
	require.True(t, attempted)
	assert.True(t, change.Closed)
	assert.True(t, b.Allow(), "closed breaker lets every call through")
}

func TestFailedProbeKeepsCircuitOpen(t *testing.T) {
	b, clk := newTestBreaker(WithFailureThreshold(1), WithSuccessThreshold(2), WithCooldown(time.Second))
	call(b, true)

	clk.advance(time.Second)
	call(b, false)
	clk.advance(time.Second)
	_, change := call(b, true)
	assert.False(t, change.Opened, "already open")
	assert.True(t, b.IsOpen())

	// the earlier good probe no longer counts
	clk.advance(time.Second)
	_, change = call(b, false)
	assert.False(t, change.Closed)
}

func TestEvictionsWhileOpenCountTowardsRecovery(t *testing.T) {
	// the cache records evictions without asking Allow, so a healthy Redis seen
	// through writes closes the circuit without waiting for read probes
	b, _ := newTestBreaker(WithFailureThreshold(1), WithSuccessThreshold(2), WithCooldown(time.Hour))
	b.RecordFailure()
	require.False(t, b.Allow())

	_, change := b.RecordSuccess()
	assert.False(t, change.Closed)
	_, change = b.RecordSuccess()
	assert.True(t, change.Closed)
	assert.True(t, b.Allow())
}

func TestResetClosesAndClearsCounters(t *testing.T) {
	b, _ := newTestBreaker(WithFailureThreshold(2))
	b.RecordFailure()
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())

	_, change := b.RecordFailure()
	assert.False(t, change.Opened, "failure count starts over after reset")
}

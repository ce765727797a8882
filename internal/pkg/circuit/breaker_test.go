package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAtThreshold(t *testing.T) {
	b := NewBreaker("test", 3, time.Hour)

	for range 2 {
		assert.True(t, b.Allow())
		b.RecordFailure()
	}
	assert.True(t, b.Allow(), "still closed below threshold")
	b.RecordFailure()
	assert.False(t, b.Allow(), "open at threshold")
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker("test", 3, time.Hour)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	assert.True(t, b.Allow(), "count restarts after a success")
	b.RecordFailure()
	assert.False(t, b.Allow())
}

func TestBreakerHalfOpenAllowsSingleProbe(t *testing.T) {
	b := NewBreaker("test", 1, 10*time.Millisecond)

	b.RecordFailure()
	time.Sleep(20 * time.Millisecond)

	assert.True(t, b.Allow(), "first caller after the timeout holds the probe")
	assert.False(t, b.Allow(), "no second probe while one is outstanding")
	assert.False(t, b.Allow())

	b.RecordSuccess()
	assert.True(t, b.Allow(), "closed again after the probe succeeds")
	assert.True(t, b.Allow())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker("test", 1, 10*time.Millisecond)

	b.RecordFailure()
	assert.False(t, b.Allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.Allow(), "one probe allowed after the timeout")

	// A failed probe reopens immediately.
	b.RecordFailure()
	assert.False(t, b.Allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.Allow())
	b.RecordSuccess()
	assert.True(t, b.Allow(), "successful probe closes the breaker")
}

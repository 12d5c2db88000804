package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerElapsedSeconds(t *testing.T) {
	clock := &fakeClock{}
	timer := NewTimer(clock.Now)

	assert.Zero(t, timer.ElapsedSeconds())

	clock.Advance(250 * time.Millisecond)
	assert.InDelta(t, 0.25, timer.ElapsedSeconds(), 1e-12)

	timer.Start()
	assert.Zero(t, timer.ElapsedSeconds())

	clock.Advance(time.Microsecond)
	assert.InDelta(t, 1e-6, timer.ElapsedSeconds(), 1e-15)
}

func TestTimerSystemClockMonotonic(t *testing.T) {
	timer := NewTimer(nil)

	prev := timer.ElapsedSeconds()
	assert.GreaterOrEqual(t, prev, 0.0)
	for i := 0; i < 100; i++ {
		cur := timer.ElapsedSeconds()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

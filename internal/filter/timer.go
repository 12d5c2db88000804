package filter

import "golang.org/x/sys/unix"

// Clock returns a monotonic timestamp in nanoseconds. It must never run
// backwards and must be unaffected by wall-clock adjustments.
type Clock func() int64

// monotonicNow reads CLOCK_MONOTONIC_RAW, which counts hardware time and
// is not slewed by NTP.
func monotonicNow() int64 {
	var ts unix.Timespec
	_ = unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts)
	return ts.Nano()
}

// Timer is a monotonic stopwatch with nanosecond resolution.
type Timer struct {
	clock Clock
	start int64
}

// NewTimer creates a started timer. A nil clock selects the system
// monotonic clock.
func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = monotonicNow
	}
	t := &Timer{clock: clock}
	t.Start()
	return t
}

// Start resets the timer to now.
func (t *Timer) Start() {
	t.start = t.clock()
}

// ElapsedSeconds returns the time since the last Start in seconds.
func (t *Timer) ElapsedSeconds() float64 {
	return float64(t.clock()-t.start) * 1e-9
}

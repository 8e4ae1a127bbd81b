package capture

import "time"

// Timer turns a frame sequence into per-frame elapsed time.
//
// With a positive nominal interval every frame counts as exactly that
// interval. Otherwise the difference between consecutive capture
// timestamps is used and the first frame contributes nothing.
type Timer struct {
	interval time.Duration
	last     time.Time
}

// NewTimer creates a timer; interval <= 0 selects capture timestamps.
func NewTimer(interval time.Duration) *Timer {
	return &Timer{interval: interval}
}

// Elapsed returns the time since the previous frame. The result may be
// zero or negative for a missing or non-monotonic timestamp.
func (t *Timer) Elapsed(frame Frame) time.Duration {
	if t.interval > 0 {
		return t.interval
	}

	if frame.Timestamp.IsZero() {
		return 0
	}

	if t.last.IsZero() {
		t.last = frame.Timestamp
		return 0
	}

	dt := frame.Timestamp.Sub(t.last)
	t.last = frame.Timestamp
	return dt
}

// Reset forgets the previous timestamp.
func (t *Timer) Reset() {
	t.last = time.Time{}
}

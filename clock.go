package busanim

// FrameClock turns frame timestamps into elapsed milliseconds.
// Timestamps must be non-decreasing; a step backwards yields 0.
type FrameClock struct {
	last    float64
	started bool
}

// Delta returns the milliseconds since the previous call, 0 on the first call
func (c *FrameClock) Delta(timestampMs float64) float64 {
	if !c.started {
		c.started = true
		c.last = timestampMs
		return 0
	}
	d := timestampMs - c.last
	if !(d > 0) {
		if d < 0 {
			c.last = timestampMs
		}
		return 0
	}
	c.last = timestampMs
	return d
}

// Reset forgets the previous timestamp
func (c *FrameClock) Reset() {
	c.started = false
	c.last = 0
}

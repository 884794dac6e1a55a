package testutils

// ManualClock is a millisecond clock that only moves when told to.
type ManualClock struct {
	now int64
}

func NewManualClock(start int64) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() int64 {
	return c.now
}

func (c *ManualClock) Set(ms int64) {
	c.now = ms
}

func (c *ManualClock) Advance(ms int64) int64 {
	c.now += ms
	return c.now
}

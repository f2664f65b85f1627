package testfixtures

import (
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/booking"
)

// Clock is a settable UTC time source shared by a service under test and the
// test body. Token claims carry whole seconds, so expiry tests should move the
// clock in whole seconds.
type Clock struct {
	unixNano atomic.Int64
}

// NewClock starts at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	c := &Clock{}
	c.Set(start)
	return c
}

func (c *Clock) Now() time.Time {
	return time.Unix(0, c.unixNano.Load()).UTC()
}

// NowFunc is Now in the shape services accept. A nil clock yields time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

func (c *Clock) Set(t time.Time) {
	c.unixNano.Store(t.UnixNano())
}

// Advance moves the clock by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	return time.Unix(0, c.unixNano.Add(int64(d))).UTC()
}

// Today renders the clock's current day as a booking date.
func (c *Clock) Today() string {
	return c.Now().Format(booking.DateLayout)
}

// Package clock provides the wall-clock source for records inserted without a timestamp.
// It reads the clock through golang.org/x/sys/unix and builds only on unix platforms.
package clock

import (
	"time"

	"golang.org/x/sys/unix"
)

// NowMilli returns the current wall-clock time in Unix milliseconds.
func NowMilli() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return time.Now().UnixMilli()
	}
	return ts.Nano() / int64(time.Millisecond)
}

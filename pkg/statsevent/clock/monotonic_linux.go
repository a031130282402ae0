//go:build linux

package clock

import (
	"time"

	"golang.org/x/sys/unix"
)

// Monotonic returns a Clock reading CLOCK_BOOTTIME.
func Monotonic() Clock { return bootClock{} }

type bootClock struct{}

func (bootClock) NowNanos() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_BOOTTIME, &ts); err != nil {
		return fallbackNanos()
	}
	ns := ts.Nano()
	if ns == 0 {
		return 1
	}
	return ns
}

var processStart = time.Now()

// fallbackNanos measures from process start using the runtime's
// monotonic reading, offset by one so it is never zero.
func fallbackNanos() int64 {
	return int64(time.Since(processStart)) + 1
}

//go:build !linux

package clock

import "time"

// Monotonic returns a Clock measuring elapsed time since process start.
// Readings are never zero.
func Monotonic() Clock { return sinceStart{} }

type sinceStart struct{}

var processStart = time.Now()

func (sinceStart) NowNanos() int64 {
	return int64(time.Since(processStart)) + 1
}

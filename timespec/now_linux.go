//go:build linux
// +build linux

package timespec

import (
	"log"

	"golang.org/x/sys/unix"
)

// Now returns the current CLOCK_MONOTONIC reading. The instant is relative
// to an arbitrary process-wide epoch and is unaffected by wall-clock
// adjustments; it is only meaningful for computing differences.
func Now() Timespec {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		log.Fatalf("getting monotonic clock: %v", err)
	}
	// unix.Timespec fields are int32 on 32-bit targets
	return Timespec{Sec: int64(ts.Sec), Nsec: int64(ts.Nsec)}
}

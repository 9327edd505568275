//go:build !linux
// +build !linux

package timespec

import "time"

// epoch is an arbitrary t0; time.Since reads the Go runtime's monotonic
// clock, so readings never go backwards within the process.
var epoch = time.Now()

// Now returns the current monotonic time relative to an arbitrary
// process-wide epoch.
func Now() Timespec {
	ns := time.Since(epoch).Nanoseconds()
	return Timespec{Sec: ns / nsecPerSec, Nsec: ns % nsecPerSec}
}

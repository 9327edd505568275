// Package stopwatch implements a zero-overhead stopwatch over the monotonic
// clock. A Stopwatch records the most recent start and stop instants plus an
// accumulated elapsed duration; Measure overwrites the accumulator from the
// last interval while Lap adds to it.
//
// The zero value is ready to use: a zero elapsed duration means "never
// measured". Operations may be called in any order and never fail, but
// calling Measure or Lap before both Start and Stop have run produces a
// meaningless interval (typically negative) rather than an error. A
// Stopwatch is not safe for concurrent use; give each goroutine its own or
// serialize access externally.
package stopwatch

import "go.sazak.io/tictoc/timespec"

// now is swapped out in tests to drive a simulated clock.
var now = timespec.Now

// Stopwatch measures elapsed monotonic time across one or more intervals.
type Stopwatch struct {
	start   timespec.Timespec
	stop    timespec.Timespec
	elapsed timespec.Timespec
}

// Start records the current monotonic time as the interval start. Each call
// overwrites the previous start.
func (s *Stopwatch) Start() {
	s.start = now()
}

// Stop records the current monotonic time as the interval end. With the
// measureonstop build tag set, Stop also performs Measure before returning;
// the default build leaves the accumulator untouched.
func (s *Stopwatch) Stop() {
	s.stop = now()
	if measureOnStop {
		s.Measure()
	}
}

// StopMeasure records the interval end and measures in one call, regardless
// of build tags.
func (s *Stopwatch) StopMeasure() {
	s.stop = now()
	s.Measure()
}

// Measure overwrites the accumulated duration with the last start/stop
// interval. Measuring the same interval repeatedly is harmless. If stop
// precedes start the result is negative; no diagnosis is made.
func (s *Stopwatch) Measure() {
	s.elapsed = s.stop.Sub(s.start)
}

// Lap adds the last start/stop interval to the accumulated duration.
func (s *Stopwatch) Lap() {
	s.elapsed = s.elapsed.Add(s.stop.Sub(s.start))
}

// Reset zeroes the accumulated duration. The recorded start/stop instants
// are left alone.
func (s *Stopwatch) Reset() {
	s.elapsed = timespec.Timespec{}
}

// Elapsed returns the accumulated duration.
func (s *Stopwatch) Elapsed() timespec.Timespec {
	return s.elapsed
}

// Interval returns the most recent start and stop instants.
func (s *Stopwatch) Interval() (start, stop timespec.Timespec) {
	return s.start, s.stop
}

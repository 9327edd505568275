// Package timespec provides seconds+nanoseconds timestamps backed by the
// monotonic system clock, with normalized difference/sum arithmetic and
// unit conversions.
package timespec

// unit conversion constants
const (
	msecPerSec = 1_000
	usecPerSec = 1_000_000
	nsecPerSec = 1_000_000_000
)

// Timespec is a whole-seconds plus sub-second-nanoseconds value. It
// represents either an absolute monotonic instant or a duration, depending
// on context. Nsec is in [0, 1e9) for normalized values; the arithmetic
// below does not enforce this on its inputs.
type Timespec struct {
	Sec  int64 `json:"sec"`
	Nsec int64 `json:"nsec"`
}

// Sub returns t - u as a normalized Timespec. When u is chronologically
// after t the result has negative components rather than being an error.
func (t Timespec) Sub(u Timespec) Timespec {
	d := Timespec{
		Sec:  t.Sec - u.Sec,
		Nsec: t.Nsec - u.Nsec,
	}
	if d.Sec > 0 && d.Nsec < 0 {
		d.Nsec += nsecPerSec
		d.Sec--
	} else if d.Sec < 0 && d.Nsec > 0 {
		d.Nsec -= nsecPerSec
		d.Sec++
	}
	// components with agreeing signs are already normalized
	return d
}

// Add returns t + u. Both operands are assumed individually normalized
// (Nsec in [0, 1e9)), so a single carry step suffices.
func (t Timespec) Add(u Timespec) Timespec {
	s := Timespec{
		Sec:  t.Sec + u.Sec,
		Nsec: t.Nsec + u.Nsec,
	}
	if s.Nsec >= nsecPerSec {
		s.Nsec -= nsecPerSec
		s.Sec++
	}
	return s
}

// Seconds returns t as fractional seconds.
func (t Timespec) Seconds() float64 {
	return float64(t.Sec) + float64(t.Nsec)/nsecPerSec
}

// Milliseconds returns t as whole milliseconds, truncating toward zero.
//
// Overflows without diagnosis for Sec values large enough that the
// multiplication exceeds int64; callers measuring durations on that scale
// have bigger problems.
func (t Timespec) Milliseconds() int64 {
	return t.Sec*msecPerSec + t.Nsec/usecPerSec
}

// Microseconds returns t as whole microseconds, truncating toward zero.
func (t Timespec) Microseconds() int64 {
	return t.Sec*usecPerSec + t.Nsec/msecPerSec
}

// Nanoseconds returns t as whole nanoseconds.
func (t Timespec) Nanoseconds() int64 {
	return t.Sec*nsecPerSec + t.Nsec
}

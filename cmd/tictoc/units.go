package main

import (
	"fmt"
	"strings"

	"go.sazak.io/tictoc/timespec"
)

// Unit selects how elapsed times are printed
type Unit int

const (
	UnitAll Unit = iota
	UnitSeconds
	UnitMillis
	UnitMicros
	UnitNanos
)

var unitNames = map[string]Unit{
	"all": UnitAll,
	"s":   UnitSeconds,
	"sec": UnitSeconds,
	"ms":  UnitMillis,
	"us":  UnitMicros,
	"ns":  UnitNanos,
}

// parseUnit parses the output unit from the command line flag
func parseUnit(s string) (Unit, error) {
	u, ok := unitNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return UnitAll, fmt.Errorf("unknown unit: %s (supported: all, s, ms, us, ns)", s)
	}
	return u, nil
}

// formatElapsed renders a duration in the requested unit. UnitAll yields one
// line per unit, the way ctimer-style tools print their final report.
func formatElapsed(ts timespec.Timespec, u Unit) []string {
	switch u {
	case UnitSeconds:
		return []string{fmt.Sprintf("%f s", ts.Seconds())}
	case UnitMillis:
		return []string{fmt.Sprintf("%d ms", ts.Milliseconds())}
	case UnitMicros:
		return []string{fmt.Sprintf("%d us", ts.Microseconds())}
	case UnitNanos:
		return []string{fmt.Sprintf("%d ns", ts.Nanoseconds())}
	default:
		return []string{
			fmt.Sprintf("%f s", ts.Seconds()),
			fmt.Sprintf("%d ms", ts.Milliseconds()),
			fmt.Sprintf("%d us", ts.Microseconds()),
			fmt.Sprintf("%d ns", ts.Nanoseconds()),
		}
	}
}

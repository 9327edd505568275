//go:build !measureonstop
// +build !measureonstop

package stopwatch

// measureOnStop is resolved at compile time so the branch in Stop costs
// nothing in the default build.
const measureOnStop = false

//go:build measureonstop
// +build measureonstop

package stopwatch

const measureOnStop = true

// Package clock centralises time access so that proposal and journal
// timestamps can be frozen in tests.
package clock

import "time"

// NowFunc returns the current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Freeze pins Now to the supplied instant and returns a restore function.
func Freeze(at time.Time) (restore func()) {
	prev := NowFunc
	NowFunc = func() time.Time { return at }
	return func() { NowFunc = prev }
}

// Package clock provides a mockable time source, grounded in the
// teacher's utils/clock.go pattern (a thin interface over time.Now
// swappable in tests) but without that file's
// interfaces.MockableTimer dependency, which no longer exists in this
// module's dependency graph.
package clock

import "time"

// Clock abstracts wall-clock time so controller scheduling
// (SPEC_FULL.md §4.5) can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

// Real is the production Clock backed by time.Now.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fake is a test Clock that returns a fixed, settable time.
type Fake struct {
	t time.Time
}

// NewFake returns a Fake initialized to t.
func NewFake(t time.Time) *Fake {
	return &Fake{t: t}
}

func (f *Fake) Now() time.Time { return f.t }

// Set updates the fake clock's current time.
func (f *Fake) Set(t time.Time) { f.t = t }

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) { f.t = f.t.Add(d) }

package bitemporal

import "github.com/gwright/bitemporal/temporal"

// Clock supplies commit instants. Implemented by SystemClock in production
// and by testutil.ManualClock in tests, so scenario tests can pin small
// integer instants.
type Clock interface {
	Now() temporal.Instant
}

type systemClock struct{}

func (systemClock) Now() temporal.Instant { return temporal.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

package recheck

import (
	"math/rand/v2"
	"time"
)

// daysBetween returns the number of whole days from a to b, truncated
// toward zero. Negative when b precedes a.
func daysBetween(a, b time.Time) int64 {
	return int64(b.Sub(a) / (24 * time.Hour))
}

// Probability computes the chance that a resource should be rechecked now.
//
// A resource that was stable for N whole days before its last check gets a
// base probability of 3/N, scaled linearly by the number of whole days since
// that check. Degenerate inputs make the resource always due: a check on or
// before the day of the change (stable days <= 0), or a check recorded in
// the future (elapsed days < 0). A check earlier today leaves the base
// probability unscaled.
//
// The result is deliberately not clamped to 1.0. Callers compare a uniform
// draw against it and must not rely on an upper bound.
func Probability(lastChange, lastCheck, now time.Time) float64 {
	stableDays := daysBetween(lastChange, lastCheck)
	if stableDays <= 0 {
		return 1.0
	}
	elapsedDays := daysBetween(lastCheck, now)
	if elapsedDays < 0 {
		return 1.0
	}
	base := 3.0 / float64(stableDays)
	if elapsedDays == 0 {
		return base
	}
	return base * float64(elapsedDays)
}

// ShouldCheckNow draws one uniform value in [0,1) from rng and reports
// whether it falls within the recheck probability for the given timestamps.
// Pure and total: it never fails, it only returns probabilities at the
// extremes.
func ShouldCheckNow(lastChange, lastCheck, now time.Time, rng *rand.Rand) bool {
	return rng.Float64() <= Probability(lastChange, lastCheck, now)
}

// Package age computes display durations for timestamps.
package age

import "time"

// AgeData computes how long ago then was, and whether then is set.
// Timestamps in the future clamp to zero.
func AgeData(then time.Time, now time.Time) (time.Duration, bool) {
	if then.IsZero() {
		return 0, false
	}
	age := now.Sub(then)
	if age < 0 {
		age = 0
	}
	return age, true
}

// Remaining computes the time left until deadline. The result is negative once
// the deadline has passed.
func Remaining(deadline time.Time, now time.Time) (time.Duration, bool) {
	if deadline.IsZero() {
		return 0, false
	}
	return deadline.Sub(now), true
}

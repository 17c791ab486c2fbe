package offers

import "time"

// Overlaps reports whether the day ranges [s1,e1] and [s2,e2] intersect.
// Both ends count as booked days: a commitment ending exactly on another
// range's start date is an overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !s2.After(e1)
}

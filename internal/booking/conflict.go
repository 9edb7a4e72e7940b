package booking

// Interval is a half-open range of hours [Start, End).
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether the two intervals share at least one hour.
// Back-to-back intervals do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// HasConflict reports whether candidate overlaps any interval in existing.
// existing must hold only active bookings; cancelled and completed ones are
// filtered out by the caller.
func HasConflict(candidate Interval, existing []Interval) bool {
	for _, e := range existing {
		if candidate.Overlaps(e) {
			return true
		}
	}
	return false
}

package booking

import (
	"time"
)

// Slot is one hour of a day and whether it can still be booked.
type Slot struct {
	Time      string
	Available bool
}

// CalculateAvailability marks every slot that overlaps an active booking as
// unavailable. When date is today in the operating zone, slots that started
// before the current hour are dropped; the current hour stays listed.
func CalculateAvailability(slots []string, existing []Interval, date string, now time.Time) []Slot {
	currentHour := -1
	if date == today(now) {
		currentHour = now.In(OperatingZone).Hour()
	}

	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		h, ok := ParseHour(s)
		if !ok {
			continue
		}
		if h < currentHour {
			continue
		}
		out = append(out, Slot{
			Time:      s,
			Available: !HasConflict(Interval{Start: h, End: h + 1}, existing),
		})
	}
	return out
}

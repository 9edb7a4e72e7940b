package booking

import (
	"fmt"
	"time"
)

const (
	OpeningHour = 6
	ClosingHour = 22 // exclusive: the last slot starts at 21:00

	MaxDurationHours = 8
	MaxAdvanceDays   = 30

	dateLayout = "2006-01-02"
)

// OperatingZone is the fixed UTC+8 zone every "today" and "current hour"
// decision is made in, whatever the caller's locale.
var OperatingZone = time.FixedZone("UTC+8", 8*60*60)

// GenerateSlots returns the start time of every bookable hour of a day,
// ascending, formatted as HH:00.
func GenerateSlots() []string {
	slots := make([]string, 0, ClosingHour-OpeningHour)
	for h := OpeningHour; h < ClosingHour; h++ {
		slots = append(slots, FormatHour(h))
	}
	return slots
}

// FormatHour renders an hour of the day as HH:00.
func FormatHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// ParseHour parses an on-the-hour HH:00 time. Anything else, including
// minutes other than zero, is rejected.
func ParseHour(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' || s[3:] != "00" {
		return 0, false
	}
	if !isDigit(s[0]) || !isDigit(s[1]) {
		return 0, false
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	if h > 23 {
		return 0, false
	}
	return h, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// today returns the calendar date of now in the operating zone.
func today(now time.Time) string {
	return now.In(OperatingZone).Format(dateLayout)
}

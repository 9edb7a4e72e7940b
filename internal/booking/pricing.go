package booking

import "github.com/nekogravitycat/court-reservation/internal/pkg/apperror"

// DefaultHourlyRate is the court fee per hour in pesos.
const DefaultHourlyRate = 299

var (
	errBadStartTime = apperror.Validation("start_time", "Invalid start time format (HH:00)")
	errBadEndTime   = apperror.Validation("end_time", "Invalid end time format (HH:00)")
)

func hours(startTime, endTime string) (int, error) {
	start, ok := ParseHour(startTime)
	if !ok {
		return 0, errBadStartTime
	}
	end, ok := ParseHour(endTime)
	if !ok {
		return 0, errBadEndTime
	}

	d := end - start
	switch {
	case d <= 0:
		return 0, ErrInvalidRange
	case d > MaxDurationHours:
		return 0, ErrDurationTooLong
	}
	return d, nil
}

// CalculateAmount returns the price of booking [startTime, endTime) at
// hourlyRate. It is the only source of a booking's total.
func CalculateAmount(startTime, endTime string, hourlyRate int) (int, error) {
	d, err := hours(startTime, endTime)
	if err != nil {
		return 0, err
	}
	return d * hourlyRate, nil
}

// CalculateDuration returns the length of [startTime, endTime) in minutes.
func CalculateDuration(startTime, endTime string) (int, error) {
	d, err := hours(startTime, endTime)
	if err != nil {
		return 0, err
	}
	return d * 60, nil
}

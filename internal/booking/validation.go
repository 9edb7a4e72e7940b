package booking

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
)

// CreateInput is the customer-supplied part of a booking request. Price and
// duration are not part of it; they are always recomputed.
type CreateInput struct {
	CustomerName  string `json:"customer_name" validate:"required,min=2,max=100,person_name"`
	CustomerEmail string `json:"customer_email" validate:"required,email,max=255"`
	CustomerPhone string `json:"customer_phone" validate:"required,ph_mobile"`
	CourtID       string `json:"court_id" validate:"required,uuid"`
	Date          string `json:"date" validate:"required,iso_date,not_past,within_advance"`
	StartTime     string `json:"start_time" validate:"required,hour_slot,start_hour"`
	EndTime       string `json:"end_time" validate:"required,hour_slot,end_hour"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=GCASH MAYA"`
	ReferenceCode string `json:"reference_code" validate:"required,max=100,ref_code"`
	Notes         string `json:"notes" validate:"max=500"`
}

var (
	personNameRe = regexp.MustCompile(`^[a-zA-Z\s\-.]+$`)
	phMobileRe   = regexp.MustCompile(`^(09\d{9}|\+639\d{9})$`)
	refCodeRe    = regexp.MustCompile(`^[a-zA-Z0-9\-]+$`)
	isoDateRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// fieldMessages maps a field and failing tag to the message shown to the
// customer. The "" entry is the fallback for tags not listed.
var fieldMessages = map[string]map[string]string{
	"customer_name": {
		"":            "Name must be at least 2 characters",
		"max":         "Name must be less than 100 characters",
		"person_name": "Name can only contain letters, spaces, hyphens, and periods",
	},
	"customer_email": {
		"":    "Invalid email address",
		"max": "Email must be less than 255 characters",
	},
	"customer_phone": {
		"": "Invalid Philippine phone number (09XXXXXXXXX or +639XXXXXXXXX)",
	},
	"court_id": {
		"": "Invalid court ID",
	},
	"date": {
		"":               "Invalid date format (YYYY-MM-DD)",
		"not_past":       "Booking date must be today or in the future",
		"within_advance": "Bookings can only be made up to 30 days in advance",
	},
	"start_time": {
		"":           "Invalid start time format (HH:00)",
		"start_hour": "Start time must be between 06:00 and 21:00",
	},
	"end_time": {
		"":         "Invalid end time format (HH:00)",
		"end_hour": "End time must be between 07:00 and 22:00",
	},
	"payment_method": {
		"": "Payment method must be GCASH or MAYA",
	},
	"reference_code": {
		"":         "Payment reference code is required",
		"max":      "Reference code must be less than 100 characters",
		"ref_code": "Reference code can only contain letters, numbers, and hyphens",
	},
	"notes": {
		"": "Notes must be less than 500 characters",
	},
}

// inputValidator checks CreateInput against the booking rules. Date rules
// are evaluated against an injected clock in the operating zone.
type inputValidator struct {
	v   *validator.Validate
	now func() time.Time
}

func newInputValidator(now func() time.Time) *inputValidator {
	iv := &inputValidator{
		v:   validator.New(validator.WithRequiredStructEnabled()),
		now: now,
	}

	iv.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	must := func(tag string, fn validator.Func) {
		if err := iv.v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("person_name", matches(personNameRe))
	must("ph_mobile", matches(phMobileRe))
	must("ref_code", matches(refCodeRe))
	must("iso_date", func(fl validator.FieldLevel) bool {
		_, ok := parseDate(fl.Field().String())
		return ok
	})
	must("not_past", func(fl validator.FieldLevel) bool {
		d, ok := parseDate(fl.Field().String())
		return ok && !d.Before(iv.today())
	})
	must("within_advance", func(fl validator.FieldLevel) bool {
		d, ok := parseDate(fl.Field().String())
		return ok && !d.After(iv.today().AddDate(0, 0, MaxAdvanceDays))
	})
	must("hour_slot", func(fl validator.FieldLevel) bool {
		_, ok := ParseHour(fl.Field().String())
		return ok
	})
	must("start_hour", hourBetween(OpeningHour, ClosingHour-1))
	must("end_hour", hourBetween(OpeningHour+1, ClosingHour))

	return iv
}

// Validate reports the first violated rule, in field order.
func (iv *inputValidator) Validate(in CreateInput) error {
	err := iv.v.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Internal(err, "BOOKING_VALIDATION_FAILED")
	}

	fe := verrs[0]
	msgs := fieldMessages[fe.Field()]
	msg, ok := msgs[fe.Tag()]
	if !ok {
		msg = msgs[""]
	}
	return apperror.Validation(fe.Field(), msg)
}

func (iv *inputValidator) today() time.Time {
	t, _ := time.ParseInLocation(dateLayout, today(iv.now()), OperatingZone)
	return t
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func hourBetween(lo, hi int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		h, ok := ParseHour(fl.Field().String())
		return ok && h >= lo && h <= hi
	}
}

func parseDate(s string) (time.Time, bool) {
	if !isoDateRe.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateLayout, s, OperatingZone)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

const maxSanitizedLen = 1000

// sanitizeString trims s, strips angle brackets and caps its length.
func sanitizeString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	if utf8.RuneCountInString(s) > maxSanitizedLen {
		s = string([]rune(s)[:maxSanitizedLen])
	}
	return s
}

// Sanitize cleans the free-text fields of in and lowercases the email.
func Sanitize(in CreateInput) CreateInput {
	in.CustomerName = sanitizeString(in.CustomerName)
	in.CustomerEmail = sanitizeString(strings.ToLower(in.CustomerEmail))
	in.CustomerPhone = sanitizeString(in.CustomerPhone)
	in.ReferenceCode = sanitizeString(in.ReferenceCode)
	in.Notes = sanitizeString(in.Notes)
	return in
}

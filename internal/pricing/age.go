package pricing

import (
	"time"

	apperrors "venue-booking/pkg/app_errors"
)

const DateLayout = "2006-01-02"

// Age returns completed years between dob and now, compared by calendar
// year, month and day.
func Age(dob, now time.Time) int {
	dy, dm, dd := dob.Date()
	ny, nm, nd := now.Date()

	age := ny - dy
	if nm < dm || (nm == dm && nd < dd) {
		age--
	}
	return age
}

// CheckAge rejects a missing, future or under-minimum date of birth.
func CheckAge(dob *time.Time, now time.Time, minimum int) error {
	if dob == nil || dob.IsZero() {
		return apperrors.ErrInvalidBirthDate
	}
	if dob.After(now) {
		return apperrors.ErrInvalidBirthDate
	}
	if Age(*dob, now) < minimum {
		return apperrors.ErrUnderage
	}
	return nil
}

// ParseDOB parses a YYYY-MM-DD date in UTC.
func ParseDOB(raw string) (*time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return nil, apperrors.ErrInvalidBirthDate
	}
	return &t, nil
}

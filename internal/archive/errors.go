package archive

import "errors"

var (
	// ErrRecordNotFound is returned when no archive row exists for a date
	ErrRecordNotFound = errors.New("no archive record for date")

	// ErrInvalidDate is returned when a date string is not YYYY-MM-DD
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
)

package fmp

import "errors"

var (
	// ErrMissingAPIKey is returned when the client was built without an API key.
	// Callers degrade to an empty dataset instead of aborting the run.
	ErrMissingAPIKey = errors.New("fmp: missing api key")
	// ErrInvalidDateRange is returned for zero, inverted or over-long ranges.
	ErrInvalidDateRange = errors.New("fmp: invalid date range")
)

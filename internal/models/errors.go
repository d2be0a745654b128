package models

import "errors"

// Custom errors
var (
	ErrSeriesNotSorted = errors.New("series is not chronologically sorted")
	ErrDuplicateIndex  = errors.New("duplicate timestamp in series index")
	ErrNotFound        = errors.New("record not found")
	ErrInvalidID       = errors.New("invalid ID format")
)

package spotify

import (
	"fmt"
	"time"
)

// Release date precisions reported by the Web API.
const (
	PrecisionDay   = "day"
	PrecisionMonth = "month"
	PrecisionYear  = "year"
)

// ParseReleaseDate turns a release date of the given precision into a
// time. Month precision maps to the 28th, year precision to Dec 31. An
// empty precision is inferred from the length of the value.
func ParseReleaseDate(value, precision string) (time.Time, error) {
	if precision == "" {
		switch len(value) {
		case len("2006"):
			precision = PrecisionYear
		case len("2006-01"):
			precision = PrecisionMonth
		default:
			precision = PrecisionDay
		}
	}

	var (
		t   time.Time
		err error
	)
	switch precision {
	case PrecisionDay:
		t, err = time.Parse(time.DateOnly, value)
	case PrecisionMonth:
		t, err = time.Parse("2006-01", value)
		t = t.AddDate(0, 0, 27)
	case PrecisionYear:
		t, err = time.Parse("2006", value)
		t = time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}, fmt.Errorf("%w: unknown precision %q", ErrBadReleaseDate, precision)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrBadReleaseDate, value, err)
	}
	return t, nil
}

package aoty

import (
	"fmt"
	"strings"
	"time"
)

// ListingDate places a listing date in the most recent year it can belong
// to. "Jan 6" is that day this year, "Jan" the first of the month and an
// empty value Jan 1. A date after today rolls back one year.
func ListingDate(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	year := now.Year()

	var full string
	switch {
	case text == "":
		full = fmt.Sprintf("Jan 1 %d", year)
	case len(text) == len("Jan"):
		full = fmt.Sprintf("%s 1 %d", text, year)
	default:
		full = fmt.Sprintf("%s %d", text, year)
	}

	d, err := time.Parse("Jan 2 2006", full)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrBadDate, text, err)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.After(today) {
		d = d.AddDate(-1, 0, 0)
	}
	return d, nil
}

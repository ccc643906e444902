// Package dates parses the date strings accepted in request bodies and query strings.
package dates

import (
	"errors"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

const dayLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// Parse accepts RFC 3339 timestamps and plain YYYY-MM-DD days (midnight UTC).
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

// ParseEnd is Parse for an inclusive upper bound: a plain day covers the whole day.
func ParseEnd(s string) (time.Time, error) {
	t, err := Parse(s)
	if err != nil {
		return t, err
	}
	if IsDayOnly(s) {
		return now.With(t).EndOfDay(), nil
	}
	return t, nil
}

// IsDayOnly reports whether s is a bare YYYY-MM-DD.
func IsDayOnly(s string) bool {
	_, err := time.Parse(dayLayout, strings.TrimSpace(s))
	return err == nil
}

// YearRange returns the first and last instant of year in loc.
func YearRange(year int, loc *time.Location) (time.Time, time.Time) {
	n := now.With(time.Date(year, time.June, 1, 0, 0, 0, 0, loc))
	return n.BeginningOfYear(), n.EndOfYear()
}

// Package timeutil handles the "HH:MM" clock strings courses are scheduled
// with and the half-open interval arithmetic built on them.
package timeutil

import (
	"errors"
	"fmt"
)

// ErrInvalidTimeFormat is returned when a clock string is not a valid
// zero-padded 24-hour "HH:MM" value.
var ErrInvalidTimeFormat = errors.New("invalid time format, want HH:MM")

// ParseClock converts "HH:MM" into minutes since midnight. The format is
// strict: exactly two digits each side of the colon, hours 00–23, minutes
// 00–59. Anything else is rejected so malformed times never reach the
// conflict checker.
func ParseClock(t string) (int, error) {
	if len(t) != 5 || t[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if t[i] < '0' || t[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
		}
	}
	hours := int(t[0]-'0')*10 + int(t[1]-'0')
	minutes := int(t[3]-'0')*10 + int(t[4]-'0')
	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}
	return hours*60 + minutes, nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return max(aStart, bStart) < min(aEnd, bEnd)
}

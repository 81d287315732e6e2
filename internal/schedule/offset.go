// internal/schedule/offset.go

// Package schedule holds the pure time arithmetic behind reference-based
// reminders.
package schedule

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidOffset is returned for any offset spec that is not "{N}d" or "{N}h".
var ErrInvalidOffset = errors.New("invalid offset format, expected {N}d or {N}h")

var (
	daysRe  = regexp.MustCompile(`^(\d+)d$`)
	hoursRe = regexp.MustCompile(`^(\d+)h$`)
)

// ResolveOffset converts a reference instant and a relative offset spec into
// the absolute instant that many days or hours BEFORE the reference. The
// subtraction runs in loc so the resulting wall-clock time never depends on
// the server locale.
func ResolveOffset(ref time.Time, spec string, loc *time.Location) (time.Time, error) {
	if m := daysRe.FindStringSubmatch(spec); m != nil {
		days, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, ErrInvalidOffset
		}
		return ref.In(loc).AddDate(0, 0, -days), nil
	}

	if m := hoursRe.FindStringSubmatch(spec); m != nil {
		hours, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, ErrInvalidOffset
		}
		return ref.In(loc).Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, ErrInvalidOffset
}

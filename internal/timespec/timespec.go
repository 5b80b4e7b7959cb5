package timespec

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFormat is returned when a humanized time spec cannot be parsed.
// Callers can match it with errors.Is to translate into a CLI exit code.
var ErrInvalidFormat = errors.New("invalid time spec")

// Parse converts a humanized time spec into a time.Duration.
// Supported suffixes: "ms", "s", "m", "h" (case-insensitive, no internal
// whitespace). A bare number is interpreted as seconds.
//
//	"500ms" -> 500 * time.Millisecond
//	"2s"    -> 2 * time.Second
//	"3m"    -> 3 * time.Minute
//	"1h"    -> time.Hour
//	"5"     -> 5 * time.Second
func Parse(spec string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	if s == "" {
		return 0, fmt.Errorf("%w: empty spec", ErrInvalidFormat)
	}

	unit := time.Second
	switch {
	case strings.HasSuffix(s, "ms"):
		unit = time.Millisecond
		s = strings.TrimSuffix(s, "ms")
	case strings.HasSuffix(s, "s"):
		s = strings.TrimSuffix(s, "s")
	case strings.HasSuffix(s, "m"):
		unit = time.Minute
		s = strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "h"):
		unit = time.Hour
		s = strings.TrimSuffix(s, "h")
	}

	mag, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(mag, 0) || math.IsNaN(mag) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, spec)
	}
	if mag < 0 {
		return 0, fmt.Errorf("%w: negative magnitude in %q", ErrInvalidFormat, spec)
	}
	return time.Duration(mag * float64(unit)), nil
}

// ParseInterval parses a spec that must resolve to a strictly positive
// duration (the time between two displacements).
func ParseInterval(spec string) (time.Duration, error) {
	d, err := Parse(spec)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: interval must be > 0, got %q", ErrInvalidFormat, spec)
	}
	return d, nil
}

// ParseDeadline parses an optional total-run duration. An empty spec means
// "run until stopped" and is reported as zero; an explicit zero or negative
// value is rejected.
func ParseDeadline(spec string) (time.Duration, error) {
	if strings.TrimSpace(spec) == "" {
		return 0, nil
	}
	d, err := Parse(spec)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: duration must be > 0, got %q (omit it to run until stopped)", ErrInvalidFormat, spec)
	}
	return d, nil
}

// Format renders a duration back into spec form using the largest unit that
// divides it exactly, so Parse(Format(d)) == d for any d representable in
// milliseconds.
func Format(d time.Duration) string {
	switch {
	case d == 0:
		return "0s"
	case d%time.Hour == 0:
		return strconv.FormatInt(int64(d/time.Hour), 10) + "h"
	case d%time.Minute == 0:
		return strconv.FormatInt(int64(d/time.Minute), 10) + "m"
	case d%time.Second == 0:
		return strconv.FormatInt(int64(d/time.Second), 10) + "s"
	default:
		return strconv.FormatInt(int64(d/time.Millisecond), 10) + "ms"
	}
}

// Package racetime parses, compares and formats race-clock values such as
// "7:54", "23:45" or "1:02:03".
package racetime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrMalformedTime is returned when a string is not a valid race time.
var ErrMalformedTime = eris.New("racetime: malformed time")

// Time is a non-negative race duration with whole-second precision.
// Two values are equal iff they denote the same total number of seconds.
type Time struct {
	seconds int
}

// FromSeconds builds a Time from a total number of seconds. Negative input is
// clamped to zero.
func FromSeconds(s int) Time {
	if s < 0 {
		s = 0
	}
	return Time{seconds: s}
}

// Seconds returns the total number of seconds.
func (t Time) Seconds() int { return t.seconds }

// String renders M:SS under an hour and H:MM:SS otherwise.
func (t Time) String() string {
	return formatSeconds(t.seconds)
}

// Before reports whether t is strictly faster than u.
func (t Time) Before(u Time) bool { return t.seconds < u.seconds }

// MarshalText implements encoding.TextMarshaler.
func (t Time) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Time) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Parse accepts M:SS, MM:SS and H:MM:SS. A dot may stand in for the colon
// since the source site prints times like "07.54".
func Parse(text string) (Time, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Time{}, eris.Wrap(ErrMalformedTime, "empty input")
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == '.' })
	if len(parts) != strings.Count(s, ":")+strings.Count(s, ".")+1 {
		// Leading, trailing or doubled separators.
		return Time{}, eris.Wrapf(ErrMalformedTime, "%q", text)
	}

	switch len(parts) {
	case 2:
		m, err := segment(parts[0], 0, -1)
		if err != nil {
			return Time{}, eris.Wrapf(ErrMalformedTime, "%q: minutes", text)
		}
		sec, err := segment(parts[1], 2, 59)
		if err != nil {
			return Time{}, eris.Wrapf(ErrMalformedTime, "%q: seconds", text)
		}
		return Time{seconds: m*60 + sec}, nil
	case 3:
		h, err := segment(parts[0], 0, -1)
		if err != nil {
			return Time{}, eris.Wrapf(ErrMalformedTime, "%q: hours", text)
		}
		m, err := segment(parts[1], 2, 59)
		if err != nil {
			return Time{}, eris.Wrapf(ErrMalformedTime, "%q: minutes", text)
		}
		sec, err := segment(parts[2], 2, 59)
		if err != nil {
			return Time{}, eris.Wrapf(ErrMalformedTime, "%q: seconds", text)
		}
		return Time{seconds: h*3600 + m*60 + sec}, nil
	default:
		return Time{}, eris.Wrapf(ErrMalformedTime, "%q: expected 2 or 3 segments", text)
	}
}

// segment parses a run of ASCII digits. width > 0 demands that exact length;
// max < 0 means unbounded.
func segment(s string, width, max int) (int, error) {
	if s == "" || (width > 0 && len(s) != width) || len(s) > 4 {
		return 0, ErrMalformedTime
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrMalformedTime
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrMalformedTime
	}
	if max >= 0 && n > max {
		return 0, ErrMalformedTime
	}
	return n, nil
}

// timeToken requires a non-digit, non-separator boundary on both sides so a
// date such as "12.05.2016" is not read as 12:05:20.
var timeToken = regexp.MustCompile(`(?:^|[^\d.:])(\d{1,3}[.:]\d{2}(?:[.:]\d{2})?)(?:$|[^\d.:])`)

// Find parses the first time-looking token inside free text, e.g. a table
// cell holding "07.54 (2016)".
func Find(text string) (Time, bool) {
	m := timeToken.FindStringSubmatch(text)
	if m == nil {
		return Time{}, false
	}
	t, err := Parse(m[1])
	if err != nil {
		return Time{}, false
	}
	return t, true
}

// Compare returns -1, 0 or +1 ordering a and b by total seconds.
func Compare(a, b Time) int {
	switch {
	case a.seconds < b.seconds:
		return -1
	case a.seconds > b.seconds:
		return 1
	default:
		return 0
	}
}

// Delta is a signed difference between two times. Negative means faster.
type Delta struct {
	seconds int
}

// Sub returns a - b.
func Sub(a, b Time) Delta {
	return Delta{seconds: a.seconds - b.seconds}
}

// Seconds returns the signed number of seconds.
func (d Delta) Seconds() int { return d.seconds }

// String renders "+M:SS" / "-M:SS" (H:MM:SS past an hour). Zero is "0:00".
func (d Delta) String() string {
	switch {
	case d.seconds < 0:
		return "-" + formatSeconds(-d.seconds)
	case d.seconds > 0:
		return "+" + formatSeconds(d.seconds)
	default:
		return formatSeconds(0)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Delta) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ParseDelta reverses Delta.String.
func ParseDelta(text string) (Delta, error) {
	s := strings.TrimSpace(text)
	sign := 1
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	t, err := Parse(s)
	if err != nil {
		return Delta{}, err
	}
	return Delta{seconds: sign * t.seconds}, nil
}

func formatSeconds(total int) string {
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

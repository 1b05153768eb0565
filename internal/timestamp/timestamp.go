// Package timestamp extracts the capture time encoded in a detection record
// identifier.
//
// Detection files are named after the moment the frame was grabbed, for example
// "photo_object_02G14695547_20230707_12+04+31.016874_000012.json". Only the
// time of day is used: hour, minute and second separated by ':' or '+', then a
// '.' and exactly six digits of microseconds. There is no date component, so
// every identifier in one run must come from the same day.
package timestamp

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrNoTimestamp is returned when an identifier carries no time of day.
var ErrNoTimestamp = errors.New("no timestamp in identifier")

var pattern = regexp.MustCompile(`([0-9]{1,2})[:+]([0-9]{2})[:+]([0-9]{2})\.([0-9]{6})`)

// Parse returns the time of day encoded in id as seconds since midnight,
// h*3600 + m*60 + s + us/1e6. The first match in id wins.
func Parse(id string) (float64, error) {
	h, m, s, us, err := fields(id)
	if err != nil {
		return 0, err
	}
	return float64(h*3600+m*60+s) + float64(us)/1e6, nil
}

// ParseDuration is Parse with an exact integer result.
func ParseDuration(id string) (time.Duration, error) {
	h, m, s, us, err := fields(id)
	if err != nil {
		return 0, err
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(us)*time.Microsecond, nil
}

func fields(id string) (h, m, s, us int, err error) {
	match := pattern.FindStringSubmatch(id)
	if match == nil {
		return 0, 0, 0, 0, fmt.Errorf("%w: %q", ErrNoTimestamp, id)
	}
	// The pattern only admits digits, so Atoi cannot fail.
	h, _ = strconv.Atoi(match[1])
	m, _ = strconv.Atoi(match[2])
	s, _ = strconv.Atoi(match[3])
	us, _ = strconv.Atoi(match[4])
	return h, m, s, us, nil
}

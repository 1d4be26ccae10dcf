package timecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrMalformedTimestamp = errors.New("malformed timestamp")

// formats seconds as zero padded MM:SS. there is no hour component,
// so an hour of media displays as 60:00
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	minutes := math.Floor(seconds / 60)
	secs := math.Floor(math.Mod(seconds, 60))

	return fmt.Sprintf("%02d:%02d", int64(minutes), int64(secs))
}

// converts an ASS H:MM:SS.cc timestamp to seconds. malformed input yields NaN
func ParseTimestamp(raw string) float64 {
	seconds, err := ParseTimestampStrict(raw)
	if err != nil {
		return math.NaN()
	}
	return seconds
}

func ParseTimestampStrict(raw string) (float64, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
	}

	hours, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: hours in %q", ErrMalformedTimestamp, raw)
	}
	minutes, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: minutes in %q", ErrMalformedTimestamp, raw)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: seconds in %q", ErrMalformedTimestamp, raw)
	}

	return hours*3600 + minutes*60 + seconds, nil
}

// seconds to the millisecond value the overlay renderer expects
func Milliseconds(seconds float64) int64 {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}
	return int64(seconds * 1000)
}

func FormatASS(seconds float64) string {
	h, m, s, ms := split(seconds)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, ms/10)
}

func FormatSRT(seconds float64) string {
	h, m, s, ms := split(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func FormatVTT(seconds float64) string {
	h, m, s, ms := split(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func split(seconds float64) (hours, minutes, secs, millis int64) {
	total := int64(math.Round(seconds * 1000))
	if math.IsNaN(seconds) || total < 0 {
		total = 0
	}
	millis = total % 1000
	total /= 1000
	hours = total / 3600
	minutes = (total % 3600) / 60
	secs = total % 60
	return hours, minutes, secs, millis
}

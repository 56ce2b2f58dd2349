package plotcfg

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/co2plot/schema"
)

// maxLengthHours keeps hours*time.Hour from overflowing time.Duration.
const maxLengthHours = math.MaxInt64/int64(time.Hour) - 1

// ParseTimeOfDay parses "HH:MM:SS" into a time of day.
// Each field takes one or two digits; hours run 0-23, minutes and seconds 0-59.
func ParseTimeOfDay(s string) (schema.TimeOfDay, error) {
	fields, ok := splitClock(s, 2, 2, 2)
	if !ok {
		return 0, &InvalidTimeError{Index: documentLevel, Value: s}
	}
	h, m, sec := fields[0], fields[1], fields[2]
	if h > 23 || m > 59 || sec > 59 {
		return 0, &InvalidTimeError{Index: documentLevel, Value: s}
	}
	return schema.NewTimeOfDay(int(h), int(m), int(sec)), nil
}

// ParseLength parses "HH:MM" into a duration. Hours may have any number of digits.
// Signs are rejected, so the result is never negative.
func ParseLength(s string) (time.Duration, error) {
	fields, ok := splitClock(s, 0, 2)
	if !ok || fields[0] > maxLengthHours || fields[1] > 59 {
		return 0, &InvalidDurationError{Index: documentLevel, Value: s}
	}
	return time.Duration(fields[0])*time.Hour + time.Duration(fields[1])*time.Minute, nil
}

// FormatLength renders a duration as zero-padded HH:MM, dropping seconds.
func FormatLength(d time.Duration) string {
	return schema.FormatLength(d)
}

// splitClock splits s on ':' into one unsigned decimal field per entry of widths.
// Each width bounds the digit count of its field; 0 means unbounded.
func splitClock(s string, widths ...int) ([]int64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != len(widths) {
		return nil, false
	}
	out := make([]int64, len(parts))
	for i, p := range parts {
		if p == "" || (widths[i] > 0 && len(p) > widths[i]) || !isDigits(p) {
			return nil, false
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

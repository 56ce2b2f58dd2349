package plotcfg

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrConfigFormat    = errors.New("malformed plot config")
	ErrInvalidTime     = errors.New("invalid time of day")
	ErrInvalidDuration = errors.New("invalid duration")
)

// documentLevel marks an error that is not tied to a single entry.
const documentLevel = -1

// ConfigFormatError reports a structural problem in the plot configuration.
type ConfigFormatError struct {
	Index  int    // Entry index, or -1 for the document itself
	File   string // File name of the entry, when known
	Reason string
}

func (e *ConfigFormatError) Error() string {
	return fmt.Sprintf("%s: %s%s", ErrConfigFormat, entryPrefix(e.Index, e.File), e.Reason)
}

// Is matches ErrConfigFormat.
func (e *ConfigFormatError) Is(target error) bool { return target == ErrConfigFormat }

// InvalidTimeError reports a "from" value that is not a HH:MM:SS time of day.
type InvalidTimeError struct {
	Index int
	File  string
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("%s: %s%q, expected HH:MM:SS between 00:00:00 and 23:59:59", ErrInvalidTime, entryPrefix(e.Index, e.File), e.Value)
}

// Is matches ErrInvalidTime.
func (e *InvalidTimeError) Is(target error) bool { return target == ErrInvalidTime }

// InvalidDurationError reports a "length" value that is not a non-negative HH:MM duration.
type InvalidDurationError struct {
	Index int
	File  string
	Value string
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("%s: %s%q, expected non-negative HH:MM", ErrInvalidDuration, entryPrefix(e.Index, e.File), e.Value)
}

// Is matches ErrInvalidDuration.
func (e *InvalidDurationError) Is(target error) bool { return target == ErrInvalidDuration }

// entryPrefix renders the location part of an error message.
func entryPrefix(index int, file string) string {
	switch {
	case index < 0 && file == "":
		return ""
	case index < 0:
		return fmt.Sprintf("%s: ", file)
	case file == "":
		return fmt.Sprintf("entry %d: ", index)
	default:
		return fmt.Sprintf("entry %d (%s): ", index, file)
	}
}

// locate fills in the entry position on a parse error coming from ParseTimeOfDay or ParseLength.
func locate(err error, index int, file string) error {
	var timeErr *InvalidTimeError
	if errors.As(err, &timeErr) {
		timeErr.Index, timeErr.File = index, file
		return timeErr
	}
	var durErr *InvalidDurationError
	if errors.As(err, &durErr) {
		durErr.Index, durErr.File = index, file
		return durErr
	}
	return err
}

package subtitle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcardoso/vidsage/internal/errors"
)

// ErrMalformedTimestamp is returned when a caption clock string does not
// have the expected HH:MM:SS structure. Callers treat it as "link omitted",
// never as a fatal error.
var ErrMalformedTimestamp = errors.New(errors.CodeInvalidArg, "malformed timestamp")

// FormatClock converts a millisecond offset to a caption clock string in
// HH:MM:SS.mmm form. Negative input is clamped to zero.
func FormatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3600000
	minutes := (ms / 60000) % 60
	seconds := (ms / 1000) % 60
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

// ClockToSeconds parses an HH:MM:SS caption clock string into whole seconds,
// ignoring any sub-second fraction. A string without the two-colon structure
// yields ErrMalformedTimestamp.
func ClockToSeconds(clock string) (int, error) {
	// Drop fractional seconds if present
	if dot := strings.IndexByte(clock, '.'); dot >= 0 {
		clock = clock[:dot]
	}

	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, ErrMalformedTimestamp
	}

	var fields [3]int
	for i, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil || value < 0 {
			return 0, ErrMalformedTimestamp
		}
		fields[i] = value
	}

	return fields[0]*3600 + fields[1]*60 + fields[2], nil
}

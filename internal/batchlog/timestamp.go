package batchlog

import (
	"fmt"
	"regexp"
	"strconv"
)

// Line timestamp pattern: [HH:MM:SS.mmm] at the very start of the line
// Example: [18:11:41.488] [Batch START] idx 0-15 (16 files) | active=1
var lineTimestampRegex = regexp.MustCompile(`^\[(\d{2}):(\d{2}):(\d{2})\.(\d{3})\]`)

// displayTimestampRegex matches the display form produced by ExtractTimestamp
var displayTimestampRegex = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})\.(\d{3})$`)

// Timestamp is a wall-clock time of day taken from a log line
type Timestamp struct {
	Seconds float64 // Seconds since midnight
	Display string  // HH:MM:SS.mmm, digits exactly as written in the line
}

// ExtractTimestamp extracts the leading [HH:MM:SS.mmm] token of a line.
// Returns false if the line does not start with the token; malformed input
// is never an error.
func ExtractTimestamp(line string) (Timestamp, bool) {
	matches := lineTimestampRegex.FindStringSubmatch(line)
	if matches == nil {
		return Timestamp{}, false
	}
	return newTimestamp(matches[1], matches[2], matches[3], matches[4]), true
}

// ParseDisplay converts a display string (HH:MM:SS.mmm) back to a Timestamp
func ParseDisplay(display string) (Timestamp, error) {
	matches := displayTimestampRegex.FindStringSubmatch(display)
	if matches == nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp display string: %q", display)
	}
	return newTimestamp(matches[1], matches[2], matches[3], matches[4]), nil
}

// newTimestamp builds a Timestamp from digit groups already validated by a regex
func newTimestamp(hh, mm, ss, ms string) Timestamp {
	hours, _ := strconv.Atoi(hh)
	minutes, _ := strconv.Atoi(mm)
	seconds, _ := strconv.Atoi(ss)
	millis, _ := strconv.Atoi(ms)

	return Timestamp{
		Seconds: float64(hours*3600+minutes*60+seconds) + float64(millis)/1000.0,
		Display: hh + ":" + mm + ":" + ss + "." + ms,
	}
}

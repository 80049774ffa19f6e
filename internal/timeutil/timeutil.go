package timeutil

import "time"

// TimestampLayout is the persisted game timestamp format (YYYY-MM-DD HH:MM:SS).
const TimestampLayout = "2006-01-02 15:04:05"

// ParseTimestamp parses a persisted timestamp in the local zone, matching how it was written.
func ParseTimestamp(value string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, value, time.Local)
}

// FormatTimestamp formats t as YYYY-MM-DD HH:MM:SS in its current location.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

package models

import "time"

const (
	// WireTimeLayout is the ISO-8601 form both transports emit.
	WireTimeLayout = "2006-01-02T15:04:05.000Z"
	// SQLTimeLayout is how timestamps are kept in text columns.
	SQLTimeLayout = "2006-01-02 15:04:05.000"
)

// FormatWireTime renders t in UTC with millisecond precision.
func FormatWireTime(t time.Time) string {
	return t.UTC().Format(WireTimeLayout)
}

// Now returns the current UTC time truncated to the millisecond, the
// resolution timestamps are stored and emitted at.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NextUpdate returns the timestamp a mutation should record so that it is
// strictly later than prev even when the clock has not advanced.
func NextUpdate(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Millisecond)
}

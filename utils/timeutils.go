package utils

import (
	"time"
)

// Iso8601FromTime formats t in UTC with millisecond precision
func Iso8601FromTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// ValidUntilFrom calculates the valid until timestamp
func ValidUntilFrom(base time.Time, validFor time.Duration) string {
	if base.IsZero() || validFor <= 0 {
		return ""
	}
	return Iso8601FromTime(base.Add(validFor))
}

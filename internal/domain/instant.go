package domain

import (
	"fmt"
	"strings"
	"time"
)

// bareInstantLayout accepts instants that arrive without an offset. They are
// read as UTC by convention, not rejected.
const bareInstantLayout = "2006-01-02T15:04:05"

// ParseInstant decodes an ISO-8601 instant crossing the engine boundary.
// Instants normally carry an explicit offset; a missing offset means UTC.
func ParseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(bareInstantLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant %q: %w", value, err)
	}
	return t.UTC(), nil
}

// FormatInstant encodes a UTC instant for the engine boundary with an
// explicit offset.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

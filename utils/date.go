package utils

import "time"

const ISOLayout = time.RFC3339

// FormatISOTime renders t in UTC as RFC3339, or "" for nil.
func FormatISOTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(ISOLayout)
}

package utils

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseYMD parses a calendar date strictly, rejecting impossible days such as 2025-02-30.
func ParseYMD(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	// strip time to midnight UTC to match DATE semantics
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func FormatYMD(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// FormatTimestamp renders t in UTC as RFC 3339, the form used for processed_timestamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// JoinList stores a string list in a single text column.
func JoinList(items []string) string {
	return strings.Join(items, "\n")
}

// SplitList is the inverse of JoinList; an empty column yields an empty, non-nil list.
func SplitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

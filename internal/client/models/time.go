package models

import "time"

// TimeLayout is how timestamps are stored in SQLite and exchanged with the
// remote store. RFC3339Nano trims trailing zeros from the fraction, so the
// stored text is variable width and does not sort chronologically as TEXT;
// anything needing chronological order must parse the value first. The
// last-write-wins comparison always runs on parsed time.Time values.
const TimeLayout = time.RFC3339Nano

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a TimeLayout timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

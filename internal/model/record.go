package model

import (
	"strconv"
	"time"
)

// Record is a single collector-scraped entry (item, sale or message).
// The extension sends free-form JSON objects whose field set varies by
// marketplace page version, so records stay schemaless and are read
// through the typed accessors below.
type Record map[string]any

// String returns the string value stored under key, or "" if the field
// is absent or not a string.
func (r Record) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the integer value stored under key, defaulting to 0.
// JSON decoding produces float64 for numbers; numeric strings from the
// collector are accepted too.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// Time returns the timestamp stored under key. Collector timestamps are
// RFC 3339 strings; date-only values are accepted as a fallback.
func (r Record) Time(key string) (time.Time, bool) {
	switch v := r[key].(type) {
	case time.Time:
		return v, true
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Clone returns a shallow copy of the record. Field values are shared,
// which is safe because merged records are never mutated in place.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CloneRecords copies a record slice.
func CloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

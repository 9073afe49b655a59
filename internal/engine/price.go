// Package engine implements the sync core: price normalization, record
// fingerprinting, deduplicating merge, statistics aggregation, and sync
// dispatch. Everything here is pure computation over model types; no
// I/O, no retries, no partial failures. Malformed upstream data
// degrades to safe defaults instead of aborting a sync, because the
// collector scrapes live marketplace pages and noise is expected.
package engine

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NormalizePrice turns a free-form currency value into a canonical
// amount rounded to 2 fractional digits (half away from zero).
//
// Everything that is not a digit, comma, period, or minus sign is
// stripped. A comma counts as the decimal separator only when it is the
// sole separator present; otherwise commas are dropped as grouping
// characters. Unparseable input normalizes to 0, never an error —
// callers must treat 0 as "unparseable or genuinely free".
func NormalizePrice(raw any) float64 {
	var s string
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		return round2(v)
	case float32:
		return round2(float64(v))
	case int:
		return round2(float64(v))
	case int64:
		return round2(float64(v))
	case json.Number:
		s = v.String()
	case string:
		s = v
	default:
		return 0
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" {
		return 0
	}

	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return round2(f)
}

// round2 rounds half away from zero to 2 fractional digits.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

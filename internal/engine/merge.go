package engine

import (
	"time"

	"hermes-sync-api/internal/model"
	"hermes-sync-api/pkg/uid"
)

// Merge folds an incoming batch into an existing collection without
// duplicates. First write wins: a record whose fingerprint is already
// present (in the existing collection or earlier in the same batch) is
// silently dropped, which makes replaying a batch a no-op. Accepted
// records are appended in arrival order. If the result exceeds ceiling,
// the oldest entries are evicted from the front.
//
// An incoming batch larger than the ceiling is still fully deduplicated
// before truncation, never rejected.
func Merge(existing, incoming []model.Record, ceiling int, now time.Time) []model.Record {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, rec := range existing {
		seen[Fingerprint(rec)] = struct{}{}
	}

	merged := existing
	for _, rec := range incoming {
		if rec == nil {
			continue
		}
		fp := Fingerprint(rec)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		merged = append(merged, prepare(rec, fp, now))
	}

	if ceiling > 0 && len(merged) > ceiling {
		trimmed := make([]model.Record, ceiling)
		copy(trimmed, merged[len(merged)-ceiling:])
		merged = trimmed
	}
	return merged
}

// prepare canonicalizes an accepted record before storage: assigns an
// id when the collector sent none, pins the fingerprint, normalizes the
// price so raw currency strings are never stored, and annotates the
// merge time.
func prepare(rec model.Record, fp string, now time.Time) model.Record {
	out := rec.Clone()
	if out.String("id") == "" {
		out["id"] = uid.NewCompact()
	}
	out["fingerprint"] = fp
	if _, ok := out["price"]; ok {
		out["price"] = NormalizePrice(out["price"])
	}
	out["processedAt"] = now.UTC().Format(time.RFC3339)
	return out
}

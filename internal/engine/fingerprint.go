package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"hermes-sync-api/internal/model"
)

// Fingerprint returns the dedup identity key for a record.
//
// The collector computes a stable hash for most records; when present
// it is trusted verbatim. Otherwise the key is derived from content
// fields only, so re-submitting an already-merged record always yields
// the same key. Merge-time annotations (processedAt, userEmail) never
// participate.
func Fingerprint(r model.Record) string {
	if h := r.String("hash"); h != "" {
		return h
	}
	if fp := r.String("fingerprint"); fp != "" {
		return fp
	}
	if id := r.String("id"); id != "" {
		return "id:" + id
	}
	return deriveFingerprint(r)
}

// deriveFingerprint hashes the salient content fields of a record that
// arrived without any usable identifier.
func deriveFingerprint(r model.Record) string {
	title := strings.ToLower(strings.TrimSpace(r.String("title")))
	price := NormalizePrice(r["price"])

	ts := r.String("scrapedAt")
	if ts == "" {
		ts = r.String("saleDate")
	}
	if ts == "" {
		ts = r.String("timestamp")
	}

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%.2f|%s", title, price, ts)))
	return hex.EncodeToString(sum[:])
}

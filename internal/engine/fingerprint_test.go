package engine

import (
	"testing"

	"hermes-sync-api/internal/model"
)

func TestFingerprintPrefersCollectorHash(t *testing.T) {
	rec := model.Record{"hash": "abc123", "id": "55", "title": "jacket"}
	if got := Fingerprint(rec); got != "abc123" {
		t.Fatalf("expected collector hash verbatim, got %q", got)
	}
}

func TestFingerprintFallsBackToStoredFingerprintThenID(t *testing.T) {
	rec := model.Record{"fingerprint": "fp-1", "id": "55"}
	if got := Fingerprint(rec); got != "fp-1" {
		t.Fatalf("expected stored fingerprint, got %q", got)
	}
	rec = model.Record{"id": "55", "title": "jacket"}
	if got := Fingerprint(rec); got != "id:55" {
		t.Fatalf("expected id-based key, got %q", got)
	}
}

func TestDerivedFingerprintIsStable(t *testing.T) {
	a := model.Record{"title": "  Wool Jacket ", "price": "12,50 €", "scrapedAt": "2026-08-01T10:00:00Z"}
	b := model.Record{"title": "wool jacket", "price": 12.5, "scrapedAt": "2026-08-01T10:00:00Z"}
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("expected identical derived fingerprints for equivalent content")
	}
}

func TestDerivedFingerprintIgnoresMergeAnnotations(t *testing.T) {
	a := model.Record{"title": "scarf", "price": 5, "timestamp": "2026-08-01T10:00:00Z"}
	b := model.Record{"title": "scarf", "price": 5, "timestamp": "2026-08-01T10:00:00Z",
		"processedAt": "2026-08-02T00:00:00Z", "userEmail": "a@b.co"}
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("merge annotations must not change the fingerprint")
	}
}

func TestDerivedFingerprintDistinguishesContent(t *testing.T) {
	a := model.Record{"title": "scarf", "price": 5, "timestamp": "2026-08-01T10:00:00Z"}
	b := model.Record{"title": "scarf", "price": 6, "timestamp": "2026-08-01T10:00:00Z"}
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("different prices must yield different fingerprints")
	}
}

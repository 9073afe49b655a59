package model

import (
	"testing"
	"time"
)

func TestRecordTypedAccessors(t *testing.T) {
	r := Record{
		"title": "jacket",
		"views": 12.0, // JSON numbers decode as float64
		"likes": "3",
		"count": int64(7),
	}

	if r.String("title") != "jacket" {
		t.Fatalf("String = %q", r.String("title"))
	}
	if r.String("missing") != "" || r.String("views") != "" {
		t.Fatalf("non-string fields must read as empty")
	}
	if r.Int("views") != 12 || r.Int("likes") != 3 || r.Int("count") != 7 {
		t.Fatalf("Int accessor mismatch: %d %d %d", r.Int("views"), r.Int("likes"), r.Int("count"))
	}
	if r.Int("title") != 0 || r.Int("missing") != 0 {
		t.Fatalf("unusable fields must read as 0")
	}
}

func TestRecordTimeParsing(t *testing.T) {
	r := Record{
		"scrapedAt": "2026-08-14T09:30:00Z",
		"saleDate":  "2026-08-14",
		"junk":      "not a date",
	}

	ts, ok := r.Time("scrapedAt")
	if !ok || !ts.Equal(time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected RFC 3339 parse, got %v (ok=%v)", ts, ok)
	}
	if _, ok := r.Time("saleDate"); !ok {
		t.Fatalf("expected date-only fallback parse")
	}
	if _, ok := r.Time("junk"); ok {
		t.Fatalf("garbage must not parse")
	}
	if _, ok := r.Time("missing"); ok {
		t.Fatalf("absent field must not parse")
	}
}

func TestUserRecordCloneIsolation(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	u := NewUserRecord("a@b.co", now)
	u.Profile["username"] = "seller42"
	u.Items = []Record{{"hash": "i1"}}

	clone := u.Clone()
	clone.Profile["username"] = "tampered"
	clone.Items[0]["hash"] = "tampered"

	if u.Profile["username"] != "seller42" {
		t.Fatalf("clone must not share the profile map")
	}
	if u.Items[0].String("hash") != "i1" {
		t.Fatalf("clone must not share record maps")
	}
}

func TestProfileComplete(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	u := NewUserRecord("a@b.co", now)
	if u.ProfileComplete() {
		t.Fatalf("empty profile must be incomplete")
	}
	u.Profile["username"] = ""
	if u.ProfileComplete() {
		t.Fatalf("empty username must be incomplete")
	}
	u.Profile["username"] = "seller42"
	if !u.ProfileComplete() {
		t.Fatalf("expected complete profile")
	}
}

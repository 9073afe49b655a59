package engine

import (
	"fmt"
	"testing"
	"time"

	"hermes-sync-api/internal/model"
)

var mergeNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func TestMergeIsIdempotent(t *testing.T) {
	batch := []model.Record{
		{"hash": "h1", "title": "jacket", "price": "10,00 €"},
		{"hash": "h2", "title": "scarf", "price": "5,00 €"},
	}

	once := Merge(nil, batch, 1000, mergeNow)
	if len(once) != 2 {
		t.Fatalf("expected 2 records, got %d", len(once))
	}
	twice := Merge(once, batch, 1000, mergeNow)
	if len(twice) != 2 {
		t.Fatalf("replaying a batch must be a no-op, got %d records", len(twice))
	}
}

func TestMergeFirstWriteWins(t *testing.T) {
	existing := Merge(nil, []model.Record{{"hash": "h1", "title": "jacket", "views": 3}}, 1000, mergeNow)
	merged := Merge(existing, []model.Record{{"hash": "h1", "title": "jacket UPDATED", "views": 9}}, 1000, mergeNow)

	if len(merged) != 1 {
		t.Fatalf("expected 1 record, got %d", len(merged))
	}
	if merged[0].String("title") != "jacket" {
		t.Fatalf("existing record must win, got title %q", merged[0].String("title"))
	}
}

func TestMergeDedupesWithinBatch(t *testing.T) {
	batch := []model.Record{
		{"hash": "h1", "title": "jacket"},
		{"hash": "h1", "title": "jacket again"},
	}
	merged := Merge(nil, batch, 1000, mergeNow)
	if len(merged) != 1 {
		t.Fatalf("expected intra-batch dedup to 1 record, got %d", len(merged))
	}
}

func TestMergeEvictsOldestBeyondCeiling(t *testing.T) {
	var existing []model.Record
	for i := 0; i < 10; i++ {
		existing = Merge(existing, []model.Record{{"hash": fmt.Sprintf("h%d", i)}}, 10, mergeNow)
	}

	merged := Merge(existing, []model.Record{{"hash": "h-new"}}, 10, mergeNow)
	if len(merged) != 10 {
		t.Fatalf("expected ceiling of 10, got %d", len(merged))
	}
	if merged[0].String("hash") != "h1" {
		t.Fatalf("expected oldest record evicted, front is %q", merged[0].String("hash"))
	}
	if merged[9].String("hash") != "h-new" {
		t.Fatalf("expected newest record at tail, got %q", merged[9].String("hash"))
	}
}

func TestMergeRetainsMostRecentThousand(t *testing.T) {
	batch := make([]model.Record, 1500)
	for i := range batch {
		batch[i] = model.Record{"hash": fmt.Sprintf("h%04d", i)}
	}

	merged := Merge(nil, batch, 1000, mergeNow)
	if len(merged) != 1000 {
		t.Fatalf("expected exactly 1000 items, got %d", len(merged))
	}
	for i, rec := range merged {
		want := fmt.Sprintf("h%04d", i+500)
		if rec.String("hash") != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, rec.String("hash"))
		}
	}
}

func TestMergeDedupesBeforeTruncating(t *testing.T) {
	existing := Merge(nil, []model.Record{{"hash": "keep"}}, 3, mergeNow)

	// Oversize batch containing a duplicate of an existing record: the
	// duplicate is dropped first, then the ceiling applies.
	batch := []model.Record{
		{"hash": "keep"},
		{"hash": "a"},
		{"hash": "b"},
		{"hash": "c"},
	}
	merged := Merge(existing, batch, 3, mergeNow)
	if len(merged) != 3 {
		t.Fatalf("expected 3 records, got %d", len(merged))
	}
	want := []string{"a", "b", "c"}
	for i, h := range want {
		if merged[i].String("hash") != h {
			t.Fatalf("position %d: expected %q, got %q", i, h, merged[i].String("hash"))
		}
	}
}

func TestMergeAnnotatesAcceptedRecords(t *testing.T) {
	merged := Merge(nil, []model.Record{{"title": "jacket", "price": "12,50 €", "scrapedAt": "2026-08-14T09:00:00Z"}}, 1000, mergeNow)
	if len(merged) != 1 {
		t.Fatalf("expected 1 record, got %d", len(merged))
	}
	rec := merged[0]

	if rec.String("id") == "" {
		t.Fatalf("expected a generated id")
	}
	if rec.String("fingerprint") == "" {
		t.Fatalf("expected the fingerprint to be pinned on the record")
	}
	if p, ok := rec["price"].(float64); !ok || p != 12.5 {
		t.Fatalf("expected normalized price 12.5, got %v", rec["price"])
	}
	if rec.String("processedAt") != mergeNow.Format(time.RFC3339) {
		t.Fatalf("expected processedAt %s, got %q", mergeNow.Format(time.RFC3339), rec.String("processedAt"))
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	in := model.Record{"title": "jacket", "price": "12,50 €"}
	Merge(nil, []model.Record{in}, 1000, mergeNow)
	if _, ok := in["processedAt"]; ok {
		t.Fatalf("merge must operate on a copy, input record was mutated")
	}
}

package engine

import (
	"testing"
	"time"

	"hermes-sync-api/internal/model"
)

func TestAggregateRevenueAndAverage(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	u := model.NewUserRecord("seller@example.com", now)
	u.Sales = []model.Record{
		{"price": 10.0, "scrapedAt": now.Format(time.RFC3339)},
		{"price": "abc", "saleDate": now.Add(-10 * 24 * time.Hour).Format(time.RFC3339)},
	}

	stats := Aggregate(u, now)

	if stats.TotalSales != 2 {
		t.Fatalf("expected 2 sales, got %d", stats.TotalSales)
	}
	if stats.TotalRevenue != 10 {
		t.Fatalf("unparseable price must contribute 0, revenue = %v", stats.TotalRevenue)
	}
	// The average divides by all sales, parseable or not.
	if stats.AverageSalePrice != 5 {
		t.Fatalf("expected average 5, got %v", stats.AverageSalePrice)
	}
	if stats.SalesLast7Days != 1 {
		t.Fatalf("expected 1 sale in window, got %d", stats.SalesLast7Days)
	}
}

func TestAggregateNegativePricesExcludedFromRevenue(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	u := model.NewUserRecord("seller@example.com", now)
	u.Sales = []model.Record{
		{"price": 20.0},
		{"price": "-5,00 €"},
	}

	stats := Aggregate(u, now)
	if stats.TotalRevenue != 20 {
		t.Fatalf("refund lines must not reduce revenue, got %v", stats.TotalRevenue)
	}
	if stats.AverageSalePrice != 10 {
		t.Fatalf("expected average 10 over 2 sales, got %v", stats.AverageSalePrice)
	}
}

func TestAggregateViewsAndLikes(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	u := model.NewUserRecord("seller@example.com", now)
	u.Items = []model.Record{
		{"views": 10, "likes": 2},
		{"views": "7", "likes": 1.0},
		{"title": "no counters"},
	}

	stats := Aggregate(u, now)
	if stats.TotalViews != 17 {
		t.Fatalf("expected 17 views, got %d", stats.TotalViews)
	}
	if stats.TotalLikes != 3 {
		t.Fatalf("expected 3 likes, got %d", stats.TotalLikes)
	}
}

func TestAggregateRollingWindow(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	u := model.NewUserRecord("seller@example.com", now)
	u.Items = []model.Record{
		{"scrapedAt": now.Add(-time.Hour).Format(time.RFC3339)},
		{"scrapedAt": now.Add(-8 * 24 * time.Hour).Format(time.RFC3339)},
		{"scrapedAt": now.Add(time.Hour).Format(time.RFC3339)}, // future-dated
		{"title": "no timestamp"},
	}

	stats := Aggregate(u, now)
	if stats.ItemsLast7Days != 1 {
		t.Fatalf("expected 1 item in window, got %d", stats.ItemsLast7Days)
	}
	if stats.TotalItems != 4 {
		t.Fatalf("expected 4 total items, got %d", stats.TotalItems)
	}
}

func TestAggregateEmptyRecord(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	u := model.NewUserRecord("seller@example.com", now)

	stats := Aggregate(u, now)
	if stats.TotalRevenue != 0 || stats.AverageSalePrice != 0 {
		t.Fatalf("empty record must aggregate to zeros, got %+v", stats)
	}
	if !stats.LastCalculated.Equal(now) {
		t.Fatalf("expected LastCalculated %v, got %v", now, stats.LastCalculated)
	}
}

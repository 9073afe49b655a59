package engine

import (
	"time"

	"hermes-sync-api/internal/model"
)

const rollingWindow = 7 * 24 * time.Hour

// Aggregate recomputes the full statistics snapshot for a user record.
// The computation is total: unparseable prices contribute 0 to revenue
// and records without a usable timestamp simply fall outside the
// rolling window. The caller supplies now so window math is testable.
func Aggregate(u *model.UserRecord, now time.Time) model.Statistics {
	stats := model.Statistics{
		TotalItems:     len(u.Items),
		TotalSales:     len(u.Sales),
		TotalMessages:  len(u.Messages),
		LastCalculated: now.UTC(),
	}

	var revenue float64
	for _, sale := range u.Sales {
		if p := NormalizePrice(sale["price"]); p > 0 {
			revenue += p
		}
	}
	stats.TotalRevenue = round2(revenue)
	if stats.TotalSales > 0 {
		stats.AverageSalePrice = round2(revenue / float64(stats.TotalSales))
	}

	for _, item := range u.Items {
		stats.TotalViews += item.Int("views")
		stats.TotalLikes += item.Int("likes")
	}

	windowStart := now.Add(-rollingWindow)
	for _, item := range u.Items {
		if inWindow(item, windowStart, now, "scrapedAt") {
			stats.ItemsLast7Days++
		}
	}
	for _, sale := range u.Sales {
		if inWindow(sale, windowStart, now, "scrapedAt", "saleDate") {
			stats.SalesLast7Days++
		}
	}

	return stats
}

// inWindow checks the first usable timestamp among keys against
// [from, to]. Future-dated records are outside the window.
func inWindow(rec model.Record, from, to time.Time, keys ...string) bool {
	for _, key := range keys {
		if ts, ok := rec.Time(key); ok {
			return !ts.Before(from) && !ts.After(to)
		}
	}
	return false
}

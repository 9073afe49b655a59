package model

import "time"

// UserRecord is the per-user state accumulated across sync batches.
// Collections keep insertion order (sync-arrival order) and never hold
// two records with the same fingerprint.
type UserRecord struct {
	Email        string         `json:"email"`
	Profile      map[string]any `json:"profile"`
	Items        []Record       `json:"items"`
	Sales        []Record       `json:"sales"`
	Messages     []Record       `json:"messages"`
	Statistics   Statistics     `json:"statistics"`
	LastSyncAt   time.Time      `json:"lastSync"`
	LastSyncKind string         `json:"lastSyncType"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// NewUserRecord creates an empty record for a previously-unseen user.
func NewUserRecord(email string, now time.Time) *UserRecord {
	return &UserRecord{
		Email:     email,
		Profile:   make(map[string]any),
		Items:     []Record{},
		Sales:     []Record{},
		Messages:  []Record{},
		CreatedAt: now,
	}
}

// Clone returns a copy safe to hand out to readers while the original
// keeps being mutated under the store's per-user lock.
func (u *UserRecord) Clone() *UserRecord {
	out := *u
	out.Profile = make(map[string]any, len(u.Profile))
	for k, v := range u.Profile {
		out.Profile[k] = v
	}
	out.Items = CloneRecords(u.Items)
	out.Sales = CloneRecords(u.Sales)
	out.Messages = CloneRecords(u.Messages)
	return &out
}

// ProfileComplete reports whether the profile carries a username, the
// marker the collector sets once the profile page has been scraped.
func (u *UserRecord) ProfileComplete() bool {
	username, _ := u.Profile["username"].(string)
	return username != ""
}

// Statistics is the derived summary for one user. It is always computed
// from scratch by the aggregator and replaced wholesale, never patched.
type Statistics struct {
	TotalItems       int       `json:"totalItems"`
	TotalSales       int       `json:"totalSales"`
	TotalMessages    int       `json:"totalMessages"`
	TotalRevenue     float64   `json:"totalRevenue"`
	AverageSalePrice float64   `json:"averageSalePrice"`
	TotalViews       int       `json:"totalViews"`
	TotalLikes       int       `json:"totalLikes"`
	ItemsLast7Days   int       `json:"itemsLast7Days"`
	SalesLast7Days   int       `json:"salesLast7Days"`
	LastCalculated   time.Time `json:"lastCalculated"`
}

// SyncBatch is the "data" portion of a sync request. Statistics sent by
// the collector are accepted for wire compatibility but never stored;
// the server recomputes them.
type SyncBatch struct {
	Profile    map[string]any `json:"profile,omitempty"`
	Items      []Record       `json:"items,omitempty"`
	Sales      []Record       `json:"sales,omitempty"`
	Messages   []Record       `json:"messages,omitempty"`
	Statistics map[string]any `json:"statistics,omitempty"`
}

// SyncResult summarizes the state after one applied sync.
type SyncResult struct {
	ItemsCount      int
	SalesCount      int
	MessagesCount   int
	ProfileComplete bool
	Statistics      Statistics
	SyncedAt        time.Time
}

// CollectionLimits caps retained collection lengths. Oldest entries are
// evicted first once the cap is exceeded.
type CollectionLimits struct {
	Items    int
	Sales    int
	Messages int
}

// DefaultCollectionLimits returns the retention ceilings.
func DefaultCollectionLimits() CollectionLimits {
	return CollectionLimits{Items: 1000, Sales: 500, Messages: 200}
}

// ViewLimits bounds how much of each collection the read endpoint
// returns (most recent entries win).
type ViewLimits struct {
	Items    int
	Sales    int
	Messages int
}

// DefaultViewLimits returns the read-endpoint bounds.
func DefaultViewLimits() ViewLimits {
	return ViewLimits{Items: 100, Sales: 50, Messages: 30}
}

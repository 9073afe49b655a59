package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"hermes-sync-api/internal/cache"
	"hermes-sync-api/internal/model"
	"hermes-sync-api/internal/repository"
	"hermes-sync-api/internal/store"
	"hermes-sync-api/pkg/apierror"
)

// SyncService drives the sync pipeline: identity confirmation, the
// store merge, write-behind snapshot persistence, and view-cache
// invalidation. The in-memory store is authoritative; snapshot writes
// are best-effort and never fail a sync.
type SyncService struct {
	store     *store.Store
	accounts  repository.AccountRepository  // optional: nil skips identity checks
	snapshots repository.SnapshotRepository // optional
	buffer    *cache.RedisSnapshotBuffer    // optional: preferred over direct writes
	viewCache cache.Cache                   // optional
	viewTTL   time.Duration
}

// NewSyncService creates a new sync service. Returns nil if the store
// is nil (required dependency).
func NewSyncService(st *store.Store, accounts repository.AccountRepository, snapshots repository.SnapshotRepository) *SyncService {
	if st == nil {
		return nil
	}
	return &SyncService{
		store:     st,
		accounts:  accounts,
		snapshots: snapshots,
	}
}

// SetBuffer sets the Redis buffer for write-behind snapshot persistence.
func (s *SyncService) SetBuffer(buffer *cache.RedisSnapshotBuffer) {
	s.buffer = buffer
}

// SetViewCache enables caching of serialized user-data views.
func (s *SyncService) SetViewCache(c cache.Cache, ttl time.Duration) {
	s.viewCache = c
	s.viewTTL = ttl
}

// ApplySync merges one sync batch into the user's record and returns
// the post-merge summary.
func (s *SyncService) ApplySync(ctx context.Context, userEmail, syncType string, batch model.SyncBatch) (model.SyncResult, error) {
	if userEmail == "" {
		return model.SyncResult{}, apierror.ValidationError("userEmail is required")
	}
	email := strings.ToLower(userEmail)

	if s.accounts != nil {
		acc, err := s.accounts.GetAccountByEmail(ctx, email)
		if err != nil || !acc.IsActive {
			return model.SyncResult{}, apierror.NotFound("user not found")
		}
	}

	result := s.store.Apply(email, syncType, batch, time.Now().UTC())

	s.persistSnapshot(ctx, email)

	if s.viewCache != nil {
		_ = s.viewCache.Delete(ctx, viewCacheKey(email))
	}

	return result, nil
}

// GetUserData returns the serialized bounded view of a user's record.
func (s *SyncService) GetUserData(ctx context.Context, userEmail string) ([]byte, error) {
	if userEmail == "" {
		return nil, apierror.ValidationError("userEmail is required")
	}
	email := strings.ToLower(userEmail)

	fetch := func() ([]byte, error) {
		rec, ok := s.store.View(email)
		if !ok {
			return nil, apierror.NotFound("user not found")
		}
		return json.Marshal(newUserDataView(rec))
	}

	if s.viewCache != nil {
		return s.viewCache.GetOrSet(ctx, viewCacheKey(email), s.viewTTL, fetch)
	}
	return fetch()
}

// RestoreSnapshots loads persisted snapshots into the store. Opt-in:
// only called at startup when SNAPSHOT_RESTORE is set, so cold-start
// behavior stays empty-by-default.
func (s *SyncService) RestoreSnapshots(ctx context.Context) (int, error) {
	if s.snapshots == nil {
		return 0, nil
	}

	snaps, err := s.snapshots.ListSnapshots(ctx)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, snap := range snaps {
		var rec model.UserRecord
		if err := json.Unmarshal(snap.Data, &rec); err != nil {
			log.Printf("[SyncService] Skipping corrupt snapshot for %s: %v", snap.UserEmail, err)
			continue
		}
		if rec.Email == "" {
			rec.Email = snap.UserEmail
		}
		s.store.Put(&rec)
		restored++
	}
	return restored, nil
}

// persistSnapshot writes the user's current record behind the store.
// Errors are logged, never surfaced: persistence is write-behind and
// the in-memory state already holds the truth.
func (s *SyncService) persistSnapshot(ctx context.Context, email string) {
	if s.buffer == nil && s.snapshots == nil {
		return
	}

	rec, ok := s.store.Get(email)
	if !ok {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		log.Printf("[SyncService] Failed to serialize snapshot for %s: %v", email, err)
		return
	}

	if s.buffer != nil {
		if err := s.buffer.Add(ctx, email, data); err != nil {
			log.Printf("[SyncService] Failed to buffer snapshot for %s: %v", email, err)
		}
		return
	}

	if err := s.snapshots.UpsertSnapshot(ctx, email, data); err != nil {
		log.Printf("[SyncService] Failed to persist snapshot for %s: %v", email, err)
	}
}

func viewCacheKey(email string) string {
	return "hermes:view:" + email
}

// userDataView is the read endpoint's response shape, kept compatible
// with what the extension dashboard expects.
type userDataView struct {
	Email           string           `json:"email"`
	Profile         map[string]any   `json:"profile"`
	Items           []model.Record   `json:"items"`
	Sales           []model.Record   `json:"sales"`
	Messages        []model.Record   `json:"messages"`
	Statistics      model.Statistics `json:"statistics"`
	LastSync        time.Time        `json:"lastSync"`
	IsActive        bool             `json:"isActive"`
	VintedConnected bool             `json:"vintedConnected"`
}

func newUserDataView(rec *model.UserRecord) userDataView {
	return userDataView{
		Email:           rec.Email,
		Profile:         rec.Profile,
		Items:           rec.Items,
		Sales:           rec.Sales,
		Messages:        rec.Messages,
		Statistics:      rec.Statistics,
		LastSync:        rec.LastSyncAt,
		IsActive:        true,
		VintedConnected: true,
	}
}

// CreateFlushFunc creates a flush function for the Redis buffer.
func CreateFlushFunc(repo repository.SnapshotRepository) cache.FlushFunc {
	return func(ctx context.Context, items []model.Snapshot) error {
		return repo.BatchUpsertSnapshots(ctx, items)
	}
}

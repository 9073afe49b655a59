// Package store holds the authoritative in-memory per-user state for
// the lifetime of the hosting process. Snapshots may be persisted
// behind it, but within one process this map is the source of truth.
// Two process instances each have their own store and the last one read
// from wins; that multi-instance limitation is documented, not solved,
// here.
package store

import (
	"sync"
	"time"

	"hermes-sync-api/internal/engine"
	"hermes-sync-api/internal/model"
)

// Store maps user emails to their accumulated sync state. Mutations to
// one user's record are serialized through a per-user mutex so a single
// Apply is atomic: no reader observes a partially merged record.
type Store struct {
	mu     sync.RWMutex
	users  map[string]*entry
	limits model.CollectionLimits
	views  model.ViewLimits
}

type entry struct {
	mu  sync.Mutex
	rec *model.UserRecord
}

// New creates an empty store with the given retention and view bounds.
func New(limits model.CollectionLimits, views model.ViewLimits) *Store {
	return &Store{
		users:  make(map[string]*entry),
		limits: limits,
		views:  views,
	}
}

// entryFor returns the entry for email, lazily creating an empty record
// the first time a user is seen.
func (s *Store) entryFor(email string, now time.Time) *entry {
	s.mu.RLock()
	e := s.users[email]
	s.mu.RUnlock()
	if e != nil {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e = s.users[email]; e == nil {
		e = &entry{rec: model.NewUserRecord(email, now)}
		s.users[email] = e
	}
	return e
}

// Apply merges one sync batch into the user's record and returns the
// post-merge summary. The record is created lazily for unseen users.
func (s *Store) Apply(email, syncType string, batch model.SyncBatch, now time.Time) model.SyncResult {
	e := s.entryFor(email, now)
	e.mu.Lock()
	defer e.mu.Unlock()

	engine.Dispatch(e.rec, syncType, batch, s.limits, now)

	return model.SyncResult{
		ItemsCount:      len(e.rec.Items),
		SalesCount:      len(e.rec.Sales),
		MessagesCount:   len(e.rec.Messages),
		ProfileComplete: e.rec.ProfileComplete(),
		Statistics:      e.rec.Statistics,
		SyncedAt:        e.rec.LastSyncAt,
	}
}

// Get returns a full copy of the user's record, or false if the user
// has never synced.
func (s *Store) Get(email string) (*model.UserRecord, bool) {
	s.mu.RLock()
	e := s.users[email]
	s.mu.RUnlock()
	if e == nil {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.Clone(), true
}

// View returns a copy of the user's record bounded to the most recent
// entries per collection, sized for the read endpoint.
func (s *Store) View(email string) (*model.UserRecord, bool) {
	rec, ok := s.Get(email)
	if !ok {
		return nil, false
	}
	rec.Items = tail(rec.Items, s.views.Items)
	rec.Sales = tail(rec.Sales, s.views.Sales)
	rec.Messages = tail(rec.Messages, s.views.Messages)
	return rec, true
}

// Put installs a record wholesale, replacing any existing state for
// that user. Used when restoring persisted snapshots at startup.
func (s *Store) Put(rec *model.UserRecord) {
	e := s.entryFor(rec.Email, rec.CreatedAt)
	e.mu.Lock()
	e.rec = rec
	e.mu.Unlock()
}

// Count returns the number of users currently held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func tail(records []model.Record, n int) []model.Record {
	if n <= 0 || len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

package repository

import (
	"context"
	"time"

	"hermes-sync-api/internal/model"
)

// SnapshotRepository persists serialized user records behind the
// in-memory store. Writes are best-effort and write-behind; the store
// stays authoritative within the process.
type SnapshotRepository interface {
	// UpsertSnapshot inserts or updates a user's serialized record.
	UpsertSnapshot(ctx context.Context, userEmail string, data []byte) error

	// GetSnapshot retrieves a serialized record by user email.
	// Returns (nil, nil, nil) when no snapshot exists.
	GetSnapshot(ctx context.Context, userEmail string) ([]byte, *time.Time, error)

	// BatchUpsertSnapshots inserts or updates multiple snapshots efficiently.
	BatchUpsertSnapshots(ctx context.Context, items []model.Snapshot) error

	// ListSnapshots returns every stored snapshot, used for opt-in
	// restore at startup.
	ListSnapshots(ctx context.Context) ([]model.Snapshot, error)

	// GetStats returns statistics about the snapshot database.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// DeleteInactiveUsers deletes snapshots not synced within the threshold.
	DeleteInactiveUsers(ctx context.Context, threshold time.Duration) (int64, error)

	// Close closes the repository connection.
	Close() error
}

// AccountRepository defines accounts database access. Identities and
// plans always come from here; the service never embeds credential
// tables.
type AccountRepository interface {
	// GetAccountByEmail finds an account by email (case-insensitive).
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)

	// ValidateCredentials checks an email+password pair for token
	// generation and returns the matching account.
	ValidateCredentials(ctx context.Context, email, password string) (*model.Account, error)
}

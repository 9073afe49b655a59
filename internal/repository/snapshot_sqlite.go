package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"hermes-sync-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteSnapshotRepository implements SnapshotRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteSnapshotRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteSnapshotRepository creates a new SQLite snapshot repository.
// dbPath is the path to the SQLite database file (e.g., "./data/snapshots.db")
func NewSQLiteSnapshotRepository(dbPath string) (*SQLiteSnapshotRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSnapshotTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteSnapshotRepository] Initialized with database: %s", dbPath)
	return &SQLiteSnapshotRepository{db: db}, nil
}

func createSnapshotTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS user_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_email TEXT NOT NULL UNIQUE,
		snapshot_json TEXT NOT NULL,
		synced_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshot_email ON user_snapshots(user_email);
	CREATE INDEX IF NOT EXISTS idx_snapshot_synced_at ON user_snapshots(synced_at);
	`
	_, err := db.Exec(query)
	return err
}

// UpsertSnapshot inserts or updates a serialized user record.
func (r *SQLiteSnapshotRepository) UpsertSnapshot(ctx context.Context, userEmail string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO user_snapshots (user_email, snapshot_json, synced_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(user_email) DO UPDATE SET
			snapshot_json = excluded.snapshot_json,
			synced_at = datetime('now')`

	_, err := r.db.ExecContext(ctx, query, userEmail, string(data))
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// BatchUpsertSnapshots inserts or updates multiple snapshots efficiently.
func (r *SQLiteSnapshotRepository) BatchUpsertSnapshots(ctx context.Context, items []model.Snapshot) error {
	if len(items) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO user_snapshots (user_email, snapshot_json, synced_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_email) DO UPDATE SET
			snapshot_json = excluded.snapshot_json,
			synced_at = excluded.synced_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.ExecContext(ctx, item.UserEmail, string(item.Data), item.SyncedAt)
		if err != nil {
			return fmt.Errorf("failed to batch upsert snapshot %s: %w", item.UserEmail, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSnapshot retrieves a serialized record by user email.
func (r *SQLiteSnapshotRepository) GetSnapshot(ctx context.Context, userEmail string) ([]byte, *time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT snapshot_json, synced_at FROM user_snapshots WHERE user_email = ?`

	var data string
	var syncedAt time.Time

	err := r.db.QueryRowContext(ctx, query, userEmail).Scan(&data, &syncedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return []byte(data), &syncedAt, nil
}

// ListSnapshots returns every stored snapshot.
func (r *SQLiteSnapshotRepository) ListSnapshots(ctx context.Context) ([]model.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `SELECT user_email, snapshot_json, synced_at FROM user_snapshots`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []model.Snapshot
	for rows.Next() {
		var snap model.Snapshot
		var data string
		if err := rows.Scan(&snap.UserEmail, &data, &snap.SyncedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snap.Data = []byte(data)
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// GetStats returns statistics about the snapshot database.
func (r *SQLiteSnapshotRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]interface{})

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_snapshots").Scan(&count); err != nil {
		return nil, err
	}
	stats["total_snapshots"] = count

	var lastSync sql.NullTime
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(synced_at) FROM user_snapshots").Scan(&lastSync); err == nil && lastSync.Valid {
		stats["last_sync"] = lastSync.Time
	}

	// Database file size (approximate from page count)
	var pageCount, pageSize int64
	r.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	r.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize

	return stats, nil
}

// DeleteInactiveUsers deletes snapshots that haven't been synced within the threshold.
func (r *SQLiteSnapshotRepository) DeleteInactiveUsers(ctx context.Context, threshold time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoffTime := time.Now().Add(-threshold)

	result, err := r.db.ExecContext(ctx, `DELETE FROM user_snapshots WHERE synced_at < ?`, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to delete inactive users: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		log.Printf("[SQLite] Cleaned up %d inactive snapshots (threshold: %v)", deleted, threshold)
	}

	return deleted, nil
}

// Close closes the database connection.
func (r *SQLiteSnapshotRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteSnapshotRepository implements SnapshotRepository
var _ SnapshotRepository = (*SQLiteSnapshotRepository)(nil)

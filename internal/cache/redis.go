package cache

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"hermes-sync-api/internal/model"

	"github.com/redis/go-redis/v9"
)

// Buffer configuration
const (
	MaxBatchSize       = 20
	FlushTimeout       = 120 * time.Second
	StaleDataThreshold = 1 * time.Hour
	CleanupInterval    = 5 * time.Minute
)

// FlushFunc is called to persist buffered snapshots to the database.
type FlushFunc func(ctx context.Context, items []model.Snapshot) error

var deleteIfUnchangedScript = redis.NewScript(`
	if redis.call("HGET", KEYS[1], ARGV[1]) == ARGV[2] then
		redis.call("HDEL", KEYS[1], ARGV[1])
		redis.call("SREM", KEYS[2], ARGV[1])
		return 1
	else
		return 0
	end
`)

// RedisSnapshotBuffer is a write-behind buffer between the in-memory
// store and the snapshot repository. Each sync writes the user's
// serialized record into Redis (fast); a background loop flushes
// batches to the database. Only the newest snapshot per user is kept —
// snapshots are full-state, so intermediate versions carry no value.
type RedisSnapshotBuffer struct {
	client        *redis.Client
	flushFunc     FlushFunc
	flushTicker   *time.Ticker
	cleanupTicker *time.Ticker
	stopFlush     chan struct{}
	stopOnce      sync.Once
	keyPrefix     string
}

// RedisBufferConfig holds configuration for the Redis buffer.
type RedisBufferConfig struct {
	Addr          string
	Password      string
	DB            int
	FlushInterval time.Duration
	KeyPrefix     string
}

// NewRedisSnapshotBuffer creates a Redis-backed snapshot buffer.
func NewRedisSnapshotBuffer(cfg RedisBufferConfig, flushFunc FlushFunc) (*RedisSnapshotBuffer, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "hermes:snapshots"
	}

	b := &RedisSnapshotBuffer{
		client:        client,
		flushFunc:     flushFunc,
		flushTicker:   time.NewTicker(cfg.FlushInterval),
		cleanupTicker: time.NewTicker(CleanupInterval),
		stopFlush:     make(chan struct{}),
		keyPrefix:     keyPrefix,
	}

	go b.backgroundFlush()
	go b.backgroundCleanup()

	log.Printf("[RedisSnapshotBuffer] Started - DB:%d, prefix:%s, flush:%v, batch:%d",
		cfg.DB, keyPrefix, cfg.FlushInterval, MaxBatchSize)
	return b, nil
}

func (b *RedisSnapshotBuffer) bufferKey() string {
	return b.keyPrefix + ":buffer"
}

func (b *RedisSnapshotBuffer) pendingKey() string {
	return b.keyPrefix + ":pending"
}

// Add buffers a snapshot in Redis, replacing any pending one for the
// same user.
func (b *RedisSnapshotBuffer) Add(ctx context.Context, userEmail string, data []byte) error {
	snap := model.Snapshot{
		UserEmail: userEmail,
		Data:      data,
		SyncedAt:  time.Now(),
	}

	jsonData, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	pipe := b.client.Pipeline()
	pipe.HSet(ctx, b.bufferKey(), userEmail, jsonData)
	pipe.SAdd(ctx, b.pendingKey(), userEmail)
	_, err = pipe.Exec(ctx)
	return err
}

// Get retrieves a pending snapshot from Redis, or nil if none is buffered.
func (b *RedisSnapshotBuffer) Get(ctx context.Context, userEmail string) (*model.Snapshot, error) {
	data, err := b.client.HGet(ctx, b.bufferKey(), userEmail).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

// Count returns the number of pending snapshots.
func (b *RedisSnapshotBuffer) Count(ctx context.Context) (int64, error) {
	return b.client.SCard(ctx, b.pendingKey()).Result()
}

// FlushBatch writes up to MaxBatchSize snapshots to the database.
func (b *RedisSnapshotBuffer) FlushBatch(ctx context.Context) (int, error) {
	emails, err := b.client.SRandMemberN(ctx, b.pendingKey(), MaxBatchSize).Result()
	if err != nil {
		return 0, err
	}

	if len(emails) == 0 {
		return 0, nil
	}

	totalPending, _ := b.Count(ctx)
	log.Printf("[RedisSnapshotBuffer] Flushing %d/%d snapshots", len(emails), totalPending)

	items := make([]model.Snapshot, 0, len(emails))
	originalData := make(map[string]string)

	for _, email := range emails {
		data, err := b.client.HGet(ctx, b.bufferKey(), email).Bytes()
		if err == redis.Nil {
			b.client.SRem(ctx, b.pendingKey(), email)
			continue
		}
		if err != nil {
			log.Printf("[RedisSnapshotBuffer] Error getting %s: %v", email, err)
			continue
		}

		originalData[email] = string(data)

		var snap model.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			log.Printf("[RedisSnapshotBuffer] Error unmarshaling %s: %v", email, err)
			b.client.HDel(ctx, b.bufferKey(), email)
			b.client.SRem(ctx, b.pendingKey(), email)
			continue
		}
		items = append(items, snap)
	}

	if len(items) == 0 {
		return 0, nil
	}

	if err := b.flushFunc(ctx, items); err != nil {
		log.Printf("[RedisSnapshotBuffer] Flush error: %v", err)
		return 0, err
	}

	// Clear flushed entries unless a newer snapshot arrived meanwhile.
	pipe := b.client.Pipeline()
	for email, raw := range originalData {
		deleteIfUnchangedScript.Run(ctx, pipe, []string{b.bufferKey(), b.pendingKey()}, email, raw)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		log.Printf("[RedisSnapshotBuffer] Error clearing Redis: %v", err)
	}

	log.Printf("[RedisSnapshotBuffer] Successfully flushed %d snapshots", len(items))
	return len(items), nil
}

// Flush writes one batch of buffered snapshots to the database.
func (b *RedisSnapshotBuffer) Flush(ctx context.Context) error {
	_, err := b.FlushBatch(ctx)
	return err
}

// CleanupStale removes buffered snapshots older than StaleDataThreshold.
func (b *RedisSnapshotBuffer) CleanupStale(ctx context.Context) (int, error) {
	emails, err := b.client.SMembers(ctx, b.pendingKey()).Result()
	if err != nil {
		return 0, err
	}

	if len(emails) == 0 {
		return 0, nil
	}

	staleThreshold := time.Now().Add(-StaleDataThreshold)
	staleCount := 0
	pipe := b.client.Pipeline()

	for _, email := range emails {
		data, err := b.client.HGet(ctx, b.bufferKey(), email).Bytes()
		if err == redis.Nil {
			pipe.SRem(ctx, b.pendingKey(), email)
			continue
		}
		if err != nil {
			continue
		}

		var snap model.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			pipe.HDel(ctx, b.bufferKey(), email)
			pipe.SRem(ctx, b.pendingKey(), email)
			staleCount++
			continue
		}

		if snap.SyncedAt.Before(staleThreshold) {
			pipe.HDel(ctx, b.bufferKey(), email)
			pipe.SRem(ctx, b.pendingKey(), email)
			staleCount++
		}
	}

	if staleCount > 0 {
		if _, err = pipe.Exec(ctx); err != nil {
			log.Printf("[RedisSnapshotBuffer] Cleanup exec error: %v", err)
			return 0, err
		}
		log.Printf("[RedisSnapshotBuffer] Cleaned up %d stale snapshots", staleCount)
	}

	return staleCount, nil
}

func (b *RedisSnapshotBuffer) backgroundFlush() {
	for {
		select {
		case <-b.flushTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), FlushTimeout)
			if _, err := b.FlushBatch(ctx); err != nil {
				log.Printf("[RedisSnapshotBuffer] Background flush error: %v", err)
			}
			cancel()
		case <-b.stopFlush:
			log.Printf("[RedisSnapshotBuffer] Shutdown: flushing remaining snapshots...")
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			for {
				flushed, err := b.FlushBatch(ctx)
				if err != nil {
					log.Printf("[RedisSnapshotBuffer] Shutdown flush error: %v", err)
					break
				}
				if flushed == 0 {
					break
				}
			}
			cancel()
			log.Printf("[RedisSnapshotBuffer] Shutdown flush complete")
			return
		}
	}
}

func (b *RedisSnapshotBuffer) backgroundCleanup() {
	for {
		select {
		case <-b.cleanupTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			b.CleanupStale(ctx)
			cancel()
		case <-b.stopFlush:
			return
		}
	}
}

// Close stops the buffer and performs a final flush.
func (b *RedisSnapshotBuffer) Close() error {
	b.stopOnce.Do(func() {
		b.flushTicker.Stop()
		b.cleanupTicker.Stop()
		close(b.stopFlush)
	})
	return b.client.Close()
}

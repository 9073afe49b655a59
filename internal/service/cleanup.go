package service

import (
	"context"
	"log"
	"sync"
	"time"

	"hermes-sync-api/internal/repository"
)

// CleanupConfig holds configuration for the snapshot cleanup scheduler.
type CleanupConfig struct {
	// InactiveThreshold is the duration after which a user's persisted
	// snapshot is considered abandoned and deleted.
	InactiveThreshold time.Duration

	// CleanupInterval is how often the cleanup runs.
	CleanupInterval time.Duration
}

// DefaultCleanupConfig returns default cleanup configuration.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		InactiveThreshold: 30 * 24 * time.Hour,
		CleanupInterval:   24 * time.Hour,
	}
}

// CleanupScheduler runs periodic cleanup of abandoned snapshots. It
// only touches the persistence layer; in-memory records live for the
// process lifetime regardless.
type CleanupScheduler struct {
	repo      repository.SnapshotRepository
	config    CleanupConfig
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewCleanupScheduler creates a new cleanup scheduler.
func NewCleanupScheduler(repo repository.SnapshotRepository, config CleanupConfig) *CleanupScheduler {
	if config.InactiveThreshold == 0 {
		config.InactiveThreshold = 30 * 24 * time.Hour
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = 24 * time.Hour
	}

	return &CleanupScheduler{
		repo:   repo,
		config: config,
		stopCh: make(chan struct{}),
	}
}

// Start begins the cleanup scheduler.
func (s *CleanupScheduler) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.config.CleanupInterval)
	s.mu.Unlock()

	log.Printf("[CleanupScheduler] Started - Interval: %v, Threshold: %v",
		s.config.CleanupInterval, s.config.InactiveThreshold)

	// Run initial cleanup after a short delay
	go func() {
		time.Sleep(1 * time.Minute)
		s.runCleanup()
	}()

	go s.run()
}

func (s *CleanupScheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.runCleanup()
		case <-s.stopCh:
			log.Printf("[CleanupScheduler] Stopped")
			return
		}
	}
}

func (s *CleanupScheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Printf("[CleanupScheduler] Running cleanup for abandoned snapshots (threshold: %v)", s.config.InactiveThreshold)

	deleted, err := s.repo.DeleteInactiveUsers(ctx, s.config.InactiveThreshold)
	if err != nil {
		log.Printf("[CleanupScheduler] Error during cleanup: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("[CleanupScheduler] Cleaned up %d abandoned snapshots", deleted)
	} else {
		log.Printf("[CleanupScheduler] No abandoned snapshots to clean up")
	}
}

// Stop stops the cleanup scheduler.
func (s *CleanupScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
	})
}

// RunNow triggers an immediate cleanup run.
func (s *CleanupScheduler) RunNow() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	return s.repo.DeleteInactiveUsers(ctx, s.config.InactiveThreshold)
}

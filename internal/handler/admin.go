package handler

import (
	"net/http"
	"runtime"
	"time"

	"hermes-sync-api/internal/cache"
	"hermes-sync-api/internal/repository"
	"hermes-sync-api/internal/store"
	"hermes-sync-api/pkg/response"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	redisBuffer  *cache.RedisSnapshotBuffer
	snapshotRepo repository.SnapshotRepository // Interface instead of concrete type
	userStore    *store.Store
	dbType       string // Database type: sqlite, postgres, mongodb
	startTime    time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	redisBuffer *cache.RedisSnapshotBuffer,
	snapshotRepo repository.SnapshotRepository,
	userStore *store.Store,
	dbType string,
) *AdminHandler {
	return &AdminHandler{
		redisBuffer:  redisBuffer,
		snapshotRepo: snapshotRepo,
		userStore:    userStore,
		dbType:       dbType,
		startTime:    time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	// System info
	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["db_type"] = h.dbType // sqlite, postgres, or mongodb

	// In-memory store
	if h.userStore != nil {
		stats["store"] = map[string]interface{}{
			"users": h.userStore.Count(),
		}
	}

	// Memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
		"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
		"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
		"heap_alloc_mb":  float64(memStats.HeapAlloc) / 1024 / 1024,
		"heap_inuse_mb":  float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":         memStats.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}

	// Redis buffer stats
	if h.redisBuffer != nil {
		count, err := h.redisBuffer.Count(ctx)
		if err == nil {
			stats["redis_buffer"] = map[string]interface{}{
				"pending_snapshots": count,
				"status":            "connected",
			}
		} else {
			stats["redis_buffer"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["redis_buffer"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// Snapshot database stats
	if h.snapshotRepo != nil {
		dbStats, err := h.snapshotRepo.GetStats(ctx)
		if err == nil {
			stats["database"] = dbStats
			stats["database"].(map[string]interface{})["status"] = "connected"
		} else {
			stats["database"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["database"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// Runtime info
	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// GetHealth handles GET /api/v1/admin/health
func (h *AdminHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

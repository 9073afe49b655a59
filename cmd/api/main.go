package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hermes-sync-api/internal/cache"
	"hermes-sync-api/internal/config"
	"hermes-sync-api/internal/handler"
	"hermes-sync-api/internal/middleware"
	"hermes-sync-api/internal/model"
	"hermes-sync-api/internal/repository"
	"hermes-sync-api/internal/router"
	"hermes-sync-api/internal/service"
	"hermes-sync-api/internal/store"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Hermes Sync API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize snapshot repository based on config
	var snapshotRepo repository.SnapshotRepository
	switch cfg.SnapshotDB.Type {
	case "none":
		log.Println("Snapshot persistence disabled")
	case "mongodb", "mongo":
		mongoRepo, err := repository.NewMongoDBSnapshotRepository(
			cfg.SnapshotDB.MongoURI,
			cfg.SnapshotDB.MongoDatabase,
			cfg.SnapshotDB.MongoCollection,
		)
		if err != nil {
			log.Fatalf("Failed to initialize MongoDB: %v", err)
		}
		defer mongoRepo.Close()
		snapshotRepo = mongoRepo
		log.Println("MongoDB snapshot repository initialized")
	case "postgres", "postgresql":
		pgRepo, err := repository.NewPostgresSnapshotRepository(cfg.SnapshotDB.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		defer pgRepo.Close()
		snapshotRepo = pgRepo
		log.Println("PostgreSQL snapshot repository initialized")
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteSnapshotRepository(cfg.SnapshotDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		defer sqliteRepo.Close()
		snapshotRepo = sqliteRepo
		log.Println("SQLite snapshot repository initialized")
	}

	// Initialize MySQL connection for accounts (optional)
	var err error
	var mysqlDB *sql.DB
	var accountRepo *repository.MySQLAccountRepository

	if cfg.Database.Enabled {
		mysqlDSN := cfg.Database.DSN()
		mysqlDB, err = sql.Open("mysql", mysqlDSN)
		if err != nil {
			log.Printf("Warning: MySQL connection failed: %v", err)
		} else {
			mysqlDB.SetMaxOpenConns(10)
			mysqlDB.SetMaxIdleConns(5)
			mysqlDB.SetConnMaxLifetime(5 * time.Minute)

			if err := mysqlDB.Ping(); err != nil {
				log.Printf("Warning: MySQL ping failed: %v", err)
				mysqlDB.Close()
				mysqlDB = nil
			} else {
				accountRepo = repository.NewMySQLAccountRepository(mysqlDB)
				log.Println("MySQL account repository initialized")
			}
		}
		if mysqlDB != nil {
			defer mysqlDB.Close()
		}
	} else {
		log.Println("Accounts database disabled; identity checks skipped")
	}

	// Initialize Redis client
	redisAddr := cfg.Cache.RedisAddress()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		redisClient = nil
	} else {
		log.Println("Redis client initialized")
	}
	cancel()

	// Initialize Redis snapshot buffer (write-behind persistence)
	var redisBuffer *cache.RedisSnapshotBuffer
	if redisClient != nil && snapshotRepo != nil {
		bufferCfg := cache.RedisBufferConfig{
			Addr:          redisAddr,
			Password:      cfg.Cache.RedisPassword,
			DB:            cfg.Cache.RedisDB,
			FlushInterval: 30 * time.Second,
		}
		flushFunc := service.CreateFlushFunc(snapshotRepo)
		redisBuffer, err = cache.NewRedisSnapshotBuffer(bufferCfg, flushFunc)
		if err != nil {
			log.Printf("Warning: Redis buffer initialization failed: %v", err)
		} else {
			log.Println("Redis snapshot buffer initialized")
		}
	}

	// Initialize the in-memory store
	limits := model.CollectionLimits{
		Items:    cfg.Sync.MaxItems,
		Sales:    cfg.Sync.MaxSales,
		Messages: cfg.Sync.MaxMessages,
	}
	views := model.ViewLimits{
		Items:    cfg.Sync.ViewItems,
		Sales:    cfg.Sync.ViewSales,
		Messages: cfg.Sync.ViewMessages,
	}
	userStore := store.New(limits, views)

	// Initialize services
	var accountsForSync repository.AccountRepository
	if accountRepo != nil {
		accountsForSync = accountRepo
	}

	syncService := service.NewSyncService(userStore, accountsForSync, snapshotRepo)
	if redisBuffer != nil {
		syncService.SetBuffer(redisBuffer)
	}
	viewCache := cache.NewMemoryCache()
	defer viewCache.Close()
	syncService.SetViewCache(viewCache, cfg.Cache.TTL)

	accountService := service.NewAccountService(accountsForSync)

	var tokenService *service.TokenService
	if redisClient != nil {
		tokenService = service.NewTokenService(redisClient)
	}

	// Restore persisted snapshots into memory (opt-in)
	if cfg.SnapshotDB.Restore && snapshotRepo != nil {
		restoreCtx, restoreCancel := context.WithTimeout(context.Background(), 60*time.Second)
		restored, err := syncService.RestoreSnapshots(restoreCtx)
		restoreCancel()
		if err != nil {
			log.Printf("Warning: snapshot restore failed: %v", err)
		} else {
			log.Printf("Restored %d user snapshots into memory", restored)
		}
	}

	// Start abandoned-snapshot cleanup
	var cleanupScheduler *service.CleanupScheduler
	if cfg.Cleanup.Enabled && snapshotRepo != nil {
		cleanupScheduler = service.NewCleanupScheduler(snapshotRepo, service.CleanupConfig{
			InactiveThreshold: cfg.Cleanup.InactiveThreshold,
			CleanupInterval:   cfg.Cleanup.Interval,
		})
		cleanupScheduler.Start()
	}

	// Initialize handlers
	healthHandler := handler.New()
	syncHandler := handler.NewSyncHandler(syncService)
	adminHandler := handler.NewAdminHandler(redisBuffer, snapshotRepo, userStore, cfg.SnapshotDB.Type)

	var userHandler *handler.UserHandler
	if accountService != nil {
		userHandler = handler.NewUserHandler(accountService)
	}

	var authHandler *handler.AuthHandler
	if tokenService != nil && accountService != nil {
		authHandler = handler.NewAuthHandler(tokenService, accountService)
	}

	// Create auth middleware with injected dependencies (NO GLOBALS!)
	authMiddleware := middleware.NewAuthMiddleware(middleware.AuthConfig{
		TokenService: tokenService,
	})

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		SyncHandler:    syncHandler,
		UserHandler:    userHandler,
		AdminHandler:   adminHandler,
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if cleanupScheduler != nil {
		cleanupScheduler.Stop()
	}

	// Close Redis buffer first (flushes pending snapshots)
	if redisBuffer != nil {
		log.Println("Closing Redis buffer...")
		redisBuffer.Close()
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}

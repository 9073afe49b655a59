package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server     ServerConfig
	App        AppConfig
	Cache      CacheConfig
	Database   DatabaseConfig
	SnapshotDB SnapshotDBConfig
	Sync       SyncConfig
	Cleanup    CleanupConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"hermes-sync-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"2.0.0"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"`
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// DatabaseConfig holds MySQL connection settings (for accounts).
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	Name     string `envconfig:"DB_NAME" default:"hermes"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASS" default:""`
	Enabled  bool   `envconfig:"DB_ENABLED" default:"false"`
}

// SnapshotDBConfig holds snapshot database settings.
type SnapshotDBConfig struct {
	Type string `envconfig:"SNAPSHOT_DB_TYPE" default:"sqlite"` // sqlite, postgres, mongodb, or none
	Path string `envconfig:"SNAPSHOT_DB_PATH" default:"./data/snapshots.db"`
	// PostgreSQL settings
	Host     string `envconfig:"SNAPSHOT_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"SNAPSHOT_DB_PORT" default:"5432"`
	Name     string `envconfig:"SNAPSHOT_DB_NAME" default:"hermes"`
	User     string `envconfig:"SNAPSHOT_DB_USER" default:"postgres"`
	Password string `envconfig:"SNAPSHOT_DB_PASS" default:""`
	SSLMode  string `envconfig:"SNAPSHOT_DB_SSLMODE" default:"disable"`
	// MongoDB settings
	MongoURI        string `envconfig:"MONGODB_URI" default:""`
	MongoDatabase   string `envconfig:"MONGODB_DATABASE" default:"hermes"`
	MongoCollection string `envconfig:"MONGODB_COLLECTION" default:"user_snapshots"`
	// Restore persisted snapshots into memory at startup
	Restore bool `envconfig:"SNAPSHOT_RESTORE" default:"false"`
}

// SyncConfig holds retention ceilings and read-view bounds.
type SyncConfig struct {
	MaxItems     int `envconfig:"SYNC_MAX_ITEMS" default:"1000"`
	MaxSales     int `envconfig:"SYNC_MAX_SALES" default:"500"`
	MaxMessages  int `envconfig:"SYNC_MAX_MESSAGES" default:"200"`
	ViewItems    int `envconfig:"SYNC_VIEW_ITEMS" default:"100"`
	ViewSales    int `envconfig:"SYNC_VIEW_SALES" default:"50"`
	ViewMessages int `envconfig:"SYNC_VIEW_MESSAGES" default:"30"`
}

// CleanupConfig holds abandoned-snapshot cleanup settings.
type CleanupConfig struct {
	Enabled           bool          `envconfig:"CLEANUP_ENABLED" default:"true"`
	InactiveThreshold time.Duration `envconfig:"CLEANUP_INACTIVE_THRESHOLD" default:"720h"`
	Interval          time.Duration `envconfig:"CLEANUP_INTERVAL" default:"24h"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *SnapshotDBConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.User, s.Password, s.Host, s.Port, s.Name, s.SSLMode)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// DSN returns the MySQL data source name.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

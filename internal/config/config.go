package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends for the artwork registry and rating ledger.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// File store kinds.
const (
	FileStoreLocal = "local"
	FileStoreS3    = "s3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port              string
	LogLevel          string
	UploadDir         string
	StaticDir         string
	StorageBackend    string
	FileStore         string
	MultipartMemoryMB int
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	RateLimitRPS      float64
	RateLimitBurst    int

	DBURL             string
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Prefix          string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", "3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("static_dir", "public")
	v.SetDefault("storage_backend", BackendMemory)
	v.SetDefault("file_store", FileStoreLocal)
	v.SetDefault("multipart_memory_mb", 32)
	v.SetDefault("server_read_timeout", 15)
	v.SetDefault("server_write_timeout", 60)
	v.SetDefault("server_idle_timeout", 60)
	v.SetDefault("rate_limit_rps", 0)
	v.SetDefault("rate_limit_burst", 20)

	v.SetDefault("db_max_conns", 20)
	v.SetDefault("db_min_conns", 2)
	v.SetDefault("db_max_conn_idle_secs", 300)
	v.SetDefault("db_max_conn_lifetime_secs", 3600)
	v.SetDefault("db_conn_timeout_secs", 10)
	v.SetDefault("db_statement_cache_capacity", 256)

	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_prefix", "uploads/")
	return v
}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	v := newViper()

	cfg := Config{
		Port:              v.GetString("port"),
		LogLevel:          strings.ToLower(v.GetString("log_level")),
		UploadDir:         v.GetString("upload_dir"),
		StaticDir:         v.GetString("static_dir"),
		StorageBackend:    strings.ToLower(v.GetString("storage_backend")),
		FileStore:         strings.ToLower(v.GetString("file_store")),
		MultipartMemoryMB: v.GetInt("multipart_memory_mb"),
		ReadTimeoutSecs:   v.GetInt("server_read_timeout"),
		WriteTimeoutSecs:  v.GetInt("server_write_timeout"),
		IdleTimeoutSecs:   v.GetInt("server_idle_timeout"),
		RateLimitRPS:      v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:    v.GetInt("rate_limit_burst"),

		DBURL:             v.GetString("db_url"),
		DBMaxConns:        v.GetInt("db_max_conns"),
		DBMinConns:        v.GetInt("db_min_conns"),
		DBMaxIdleSecs:     v.GetInt("db_max_conn_idle_secs"),
		DBMaxLifeSecs:     v.GetInt("db_max_conn_lifetime_secs"),
		DBConnTimeoutSecs: v.GetInt("db_conn_timeout_secs"),
		DBStatementCache:  v.GetInt("db_statement_cache_capacity"),

		S3Bucket:          v.GetString("s3_bucket"),
		S3Region:          v.GetString("s3_region"),
		S3Endpoint:        v.GetString("s3_endpoint"),
		S3AccessKeyID:     v.GetString("s3_access_key_id"),
		S3SecretAccessKey: v.GetString("s3_secret_access_key"),
		S3Prefix:          v.GetString("s3_prefix"),
	}

	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT must not be empty")
	}
	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		return Config{}, fmt.Errorf("LOG_LEVEL must be one of %s", strings.Join(validLogLevels, ", "))
	}
	if cfg.MultipartMemoryMB <= 0 {
		return Config{}, fmt.Errorf("MULTIPART_MEMORY_MB must be positive")
	}
	if cfg.RateLimitRPS < 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPS must be non-negative")
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	switch cfg.StorageBackend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.DBURL == "" {
			return Config{}, fmt.Errorf("DB_URL is required for the postgres backend")
		}
		if cfg.DBMaxConns <= 0 {
			return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
		}
		if cfg.DBMinConns < 0 {
			return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
		}
		if cfg.DBMinConns > cfg.DBMaxConns {
			return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
		}
		if cfg.DBStatementCache < 0 {
			return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
		}
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND must be %q or %q", BackendMemory, BackendPostgres)
	}

	switch cfg.FileStore {
	case FileStoreLocal:
		if cfg.UploadDir == "" {
			return Config{}, fmt.Errorf("UPLOAD_DIR must not be empty")
		}
	case FileStoreS3:
		if cfg.S3Bucket == "" {
			return Config{}, fmt.Errorf("S3_BUCKET is required for the s3 file store")
		}
		if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey == "" {
			return Config{}, fmt.Errorf("S3_SECRET_ACCESS_KEY is required when S3_ACCESS_KEY_ID is set")
		}
	default:
		return Config{}, fmt.Errorf("FILE_STORE must be %q or %q", FileStoreLocal, FileStoreS3)
	}

	return cfg, nil
}

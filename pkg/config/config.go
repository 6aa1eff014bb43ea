package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverKV       = "kv"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	Store    StoreConfig
	Remote   RemoteConfig
	Sync     SyncConfig
	Exports  ExportsConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	// CacheEnabled turns on the Redis-backed remote catalog cache.
	CacheEnabled bool
}

// StoreConfig selects the Entity Store backend.
type StoreConfig struct {
	Driver     string
	KVKey      string
	BatchChunk int
}

// RemoteConfig configures the Bilibili read API client.
type RemoteConfig struct {
	Cookie      string
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	UserAgent   string
	CatalogTTL  time.Duration
}

// SyncConfig holds sync defaults and the background scheduler.
type SyncConfig struct {
	DefaultMaxFolders int
	Interval          time.Duration
	WorkerRetries     int
}

// ExportsConfig controls snapshot files served through signed URLs.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// AuthConfig guards the local API with bearer tokens when a secret is set.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),

		CacheEnabled: v.GetBool("REDIS_CACHE_ENABLED"),
	}

	cfg.Store = StoreConfig{
		Driver:     strings.ToLower(v.GetString("STORE_DRIVER")),
		KVKey:      v.GetString("STORE_KV_KEY"),
		BatchChunk: v.GetInt("STORE_BATCH_CHUNK"),
	}

	cfg.Remote = RemoteConfig{
		Cookie:      v.GetString("BILIBILI_COOKIE"),
		BaseURL:     v.GetString("BILIBILI_BASE_URL"),
		Timeout:     parseDuration(v.GetString("BILIBILI_TIMEOUT"), 15*time.Second),
		MaxAttempts: v.GetInt("BILIBILI_MAX_ATTEMPTS"),
		UserAgent:   v.GetString("BILIBILI_USER_AGENT"),
		CatalogTTL:  parseDuration(v.GetString("BILIBILI_CATALOG_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Sync = SyncConfig{
		DefaultMaxFolders: v.GetInt("SYNC_DEFAULT_MAX_FOLDERS"),
		Interval:          parseDuration(v.GetString("SYNC_INTERVAL"), 0),
		WorkerRetries:     v.GetInt("SYNC_WORKER_RETRIES"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 30*time.Minute),
	}

	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("API_JWT_SECRET"),
		Issuer:    v.GetString("API_JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "bilishelf")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_CACHE_ENABLED", false)

	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("STORE_KV_KEY", "state")
	v.SetDefault("STORE_BATCH_CHUNK", 100)

	v.SetDefault("BILIBILI_COOKIE", "")
	v.SetDefault("BILIBILI_BASE_URL", "https://api.bilibili.com")
	v.SetDefault("BILIBILI_TIMEOUT", "15s")
	v.SetDefault("BILIBILI_MAX_ATTEMPTS", 4)
	v.SetDefault("BILIBILI_USER_AGENT", "")
	v.SetDefault("BILIBILI_CATALOG_CACHE_TTL", "2m")

	v.SetDefault("SYNC_DEFAULT_MAX_FOLDERS", 10)
	v.SetDefault("SYNC_INTERVAL", "")
	v.SetDefault("SYNC_WORKER_RETRIES", 1)

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "30m")

	v.SetDefault("API_JWT_SECRET", "")
	v.SetDefault("API_JWT_ISSUER", "bilishelf")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

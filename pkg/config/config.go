// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates every setting of the service.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Cache   CacheConfig
	Log     LogConfig
	Tracing TracingConfig
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr            string
	AllowedOrigins  []string
	TLSCertFile     string
	TLSKeyFile      string
	ShutdownTimeout time.Duration
}

// TLS reports whether both certificate and key are configured.
func (c ServerConfig) TLS() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// Store backends.
const (
	BackendJSON     = "json"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// StoreConfig selects and configures the course repository.
type StoreConfig struct {
	Backend     string
	Path        string
	SQLitePath  string
	DatabaseURL string
}

// Cache backends.
const (
	CacheNone  = "none"
	CacheLRU   = "lru"
	CacheRedis = "redis"
)

// CacheConfig configures the optional read cache.
type CacheConfig struct {
	Backend   string
	Size      int
	TTL       time.Duration
	RedisAddr string
}

// LogConfig configures logging.
type LogConfig struct {
	Level string
}

// TracingConfig configures OpenTelemetry.
type TracingConfig struct {
	Host        string
	Probability float64
}

// Load reads an optional .env file from the working directory and then the
// process environment. Variables already set win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}
	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}
	cache, err := loadCacheConfig()
	if err != nil {
		return nil, err
	}
	tracing, err := loadTracingConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Store:   store,
		Cache:   cache,
		Log:     LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "info")},
		Tracing: tracing,
	}, nil
}

func loadServerConfig() (ServerConfig, error) {
	addr, err := parseAddr(getEnvOrDefault("PORT", "4000"))
	if err != nil {
		return ServerConfig{}, err
	}
	timeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return ServerConfig{}, err
	}

	var origins []string
	for _, o := range strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return ServerConfig{
		Addr:            addr,
		AllowedOrigins:  origins,
		TLSCertFile:     strings.TrimSpace(os.Getenv("TLS_CERT_FILE")),
		TLSKeyFile:      strings.TrimSpace(os.Getenv("TLS_KEY_FILE")),
		ShutdownTimeout: timeout,
	}, nil
}

// parseAddr accepts a bare port ("4000") or a listen address (":4000",
// "127.0.0.1:4000").
func parseAddr(port string) (string, error) {
	if strings.Contains(port, ":") {
		return port, nil
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}
	return ":" + port, nil
}

func loadStoreConfig() (StoreConfig, error) {
	cfg := StoreConfig{
		Backend:     strings.ToLower(getEnvOrDefault("STORE_BACKEND", BackendJSON)),
		Path:        getEnvOrDefault("DB_PATH", "db.json"),
		SQLitePath:  getEnvOrDefault("SQLITE_PATH", "courses.db"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
	}
	switch cfg.Backend {
	case BackendJSON, BackendMemory, BackendSQLite:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return StoreConfig{}, errors.New("DATABASE_URL is required for the postgres backend")
		}
	default:
		return StoreConfig{}, fmt.Errorf("invalid STORE_BACKEND value %q (supported: json, memory, sqlite, postgres)", cfg.Backend)
	}
	return cfg, nil
}

func loadCacheConfig() (CacheConfig, error) {
	size, err := parseIntEnv("CACHE_SIZE", 1024)
	if err != nil {
		return CacheConfig{}, err
	}
	if size < 1 {
		return CacheConfig{}, fmt.Errorf("invalid CACHE_SIZE value %d: must be positive", size)
	}
	ttl, err := parseDurationEnv("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return CacheConfig{}, err
	}

	cfg := CacheConfig{
		Backend:   strings.ToLower(getEnvOrDefault("CACHE_BACKEND", CacheNone)),
		Size:      size,
		TTL:       ttl,
		RedisAddr: getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
	}
	switch cfg.Backend {
	case CacheNone, CacheLRU, CacheRedis:
	default:
		return CacheConfig{}, fmt.Errorf("invalid CACHE_BACKEND value %q (supported: none, lru, redis)", cfg.Backend)
	}
	return cfg, nil
}

func loadTracingConfig() (TracingConfig, error) {
	p := 1.0
	if raw := strings.TrimSpace(os.Getenv("OTEL_SAMPLE_RATIO")); raw != "" {
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil || val < 0 || val > 1 {
			return TracingConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATIO value %q", raw)
		}
		p = val
	}
	return TracingConfig{Host: strings.TrimSpace(os.Getenv("OTEL_HOST")), Probability: p}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

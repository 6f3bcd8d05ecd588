package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// History backends.
const (
	HistoryMemory   = "memory"
	HistoryRedis    = "redis"
	HistorySQLite   = "sqlite"
	HistoryPostgres = "postgres"
)

type Config struct {
	// Server
	Port       string
	Env        string
	LogLevel   string
	TrustProxy bool

	// Storage
	UploadsDir string
	StatsFile  string
	StaticDir  string

	// Extractor
	YtDlpPath                string
	ExtractorInfoTimeout     time.Duration
	ExtractorDownloadTimeout time.Duration
	ExtractorMaxConcurrent   int

	// Retention
	RetentionTTL      time.Duration
	RetentionInterval time.Duration

	// Rate limiting
	APIRateLimit       int
	APIRateWindow      time.Duration
	DownloadRateLimit  int
	DownloadRateWindow time.Duration

	// History
	HistoryBackend string
	DatabaseURL    string
	RedisURL       string
	SQLitePath     string

	// Admin
	AdminPassword     string
	AdminPasswordHash string
	JWTSecret         string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "5000"),
		Env:      getEnvOrDefault("ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		// Only trust X-Forwarded-For and friends behind a known reverse proxy.
		TrustProxy: getEnvAsBoolOrDefault("TRUST_PROXY", false),

		UploadsDir: getEnvOrDefault("UPLOADS_DIR", "./uploads"),
		StatsFile:  getEnvOrDefault("STATS_FILE", "./stats.json"),
		StaticDir:  getEnvOrDefault("STATIC_DIR", ""),

		YtDlpPath:                getEnvOrDefault("YTDLP_PATH", "yt-dlp"),
		ExtractorInfoTimeout:     getEnvAsDurationOrDefault("EXTRACTOR_INFO_TIMEOUT", 60*time.Second),
		ExtractorDownloadTimeout: getEnvAsDurationOrDefault("EXTRACTOR_DOWNLOAD_TIMEOUT", 15*time.Minute),
		ExtractorMaxConcurrent:   getEnvAsIntOrDefault("EXTRACTOR_MAX_CONCURRENT", 4),

		RetentionTTL:      getEnvAsDurationOrDefault("RETENTION_TTL", 24*time.Hour),
		RetentionInterval: getEnvAsDurationOrDefault("RETENTION_INTERVAL", time.Hour),

		APIRateLimit:       getEnvAsIntOrDefault("RATE_LIMIT_API_MAX", 100),
		APIRateWindow:      getEnvAsDurationOrDefault("RATE_LIMIT_API_WINDOW", 15*time.Minute),
		DownloadRateLimit:  getEnvAsIntOrDefault("RATE_LIMIT_DOWNLOAD_MAX", 10),
		DownloadRateWindow: getEnvAsDurationOrDefault("RATE_LIMIT_DOWNLOAD_WINDOW", time.Hour),

		HistoryBackend: strings.ToLower(getEnvOrDefault("HISTORY_BACKEND", HistoryMemory)),
		SQLitePath:     getEnvOrDefault("SQLITE_PATH", "./history.db"),

		AdminPassword:     getEnvOrDefault("ADMIN_PASSWORD", ""),
		AdminPasswordHash: getEnvOrDefault("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnvOrDefault("JWT_SECRET", ""),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	switch cfg.HistoryBackend {
	case HistoryPostgres:
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	case HistoryRedis:
		cfg.RedisURL = mustGetEnv("REDIS_URL")
	}

	if cfg.AdminEnabled() && cfg.JWTSecret == "" {
		cfg.JWTSecret = mustGetEnv("JWT_SECRET")
	}

	return cfg
}

// AdminEnabled reports whether the admin endpoints require a login.
func (c *Config) AdminEnabled() bool {
	return c.AdminPassword != "" || c.AdminPasswordHash != ""
}

// AllowedOrigins returns the CORS origins listed in FRONTEND_URL
// (comma separated).
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.HistoryBackend {
	case HistoryMemory, HistoryRedis, HistorySQLite, HistoryPostgres:
	default:
		return fmt.Errorf("unknown HISTORY_BACKEND %q", c.HistoryBackend)
	}
	if c.UploadsDir == "" {
		return fmt.Errorf("UPLOADS_DIR must not be empty")
	}
	if c.ExtractorMaxConcurrent < 1 {
		return fmt.Errorf("EXTRACTOR_MAX_CONCURRENT must be at least 1, got %d", c.ExtractorMaxConcurrent)
	}
	if c.RetentionTTL <= 0 || c.RetentionInterval <= 0 {
		return fmt.Errorf("RETENTION_TTL and RETENTION_INTERVAL must be positive")
	}
	if c.APIRateLimit < 1 || c.DownloadRateLimit < 1 {
		return fmt.Errorf("rate limits must be at least 1")
	}
	if c.APIRateWindow <= 0 || c.DownloadRateWindow <= 0 {
		return fmt.Errorf("rate limit windows must be positive")
	}
	return nil
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

// getEnvAsDurationOrDefault accepts Go duration strings ("15m") or plain seconds.
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env          string
	Server       ServerConfig
	Storage      StorageConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Positioning  PositioningConfig
	Reports      ReportsConfig
	Verification VerificationConfig
	OTEL         OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// StorageConfig selects the repository backend
type StorageConfig struct {
	// Driver is "postgres" or "memory".
	Driver   string
	SeedFile string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PositioningConfig holds the device positioning source configuration
type PositioningConfig struct {
	// Provider is "google", "mock" or "none".
	Provider           string
	APIKey             string
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaxCachedAge       time.Duration
	WatchInterval      time.Duration
	// Mock fix, used when Provider is "mock".
	MockLatitude  float64
	MockLongitude float64
}

// ReportsConfig holds crowd report settings
type ReportsConfig struct {
	// FlagMinNegative is the minimum number of missing/moved reports before an item is flagged.
	FlagMinNegative int
	StatsCacheTTL   time.Duration
	RateLimit       int
	RateWindow      time.Duration
	DedupWindow     time.Duration
}

// VerificationConfig holds item verification settings
type VerificationConfig struct {
	// ReviewThreshold is the report count at which a verified item needs review.
	ReviewThreshold  int
	MaxAge           time.Duration
	BatchConcurrency int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Env: getEnv("ENV", "production"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Storage: StorageConfig{
			Driver:   getEnv("STORAGE_DRIVER", "postgres"),
			SeedFile: getEnv("SEED_FILE", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "finditfast"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Positioning: PositioningConfig{
			Provider:           getEnv("POSITIONING_PROVIDER", "mock"),
			APIKey:             getEnv("POSITIONING_API_KEY", ""),
			EnableHighAccuracy: getEnvAsBool("POSITIONING_HIGH_ACCURACY", true),
			Timeout:            getEnvAsDuration("POSITIONING_TIMEOUT", 10*time.Second),
			MaxCachedAge:       getEnvAsDuration("POSITIONING_MAX_CACHED_AGE", 5*time.Minute),
			WatchInterval:      getEnvAsDuration("POSITIONING_WATCH_INTERVAL", 30*time.Second),
			MockLatitude:       getEnvAsFloat("POSITIONING_MOCK_LAT", 51.5074),
			MockLongitude:      getEnvAsFloat("POSITIONING_MOCK_LON", -0.1278),
		},
		Reports: ReportsConfig{
			FlagMinNegative: getEnvAsInt("REPORT_FLAG_MIN_NEGATIVE", 3),
			StatsCacheTTL:   getEnvAsDuration("REPORT_STATS_CACHE_TTL", time.Minute),
			RateLimit:       getEnvAsInt("REPORT_RATE_LIMIT", 10),
			RateWindow:      getEnvAsDuration("REPORT_RATE_WINDOW", time.Hour),
			DedupWindow:     getEnvAsDuration("REPORT_DEDUP_WINDOW", 10*time.Minute),
		},
		Verification: VerificationConfig{
			ReviewThreshold:  getEnvAsInt("VERIFICATION_REVIEW_THRESHOLD", 3),
			MaxAge:           time.Duration(getEnvAsInt("VERIFICATION_MAX_AGE_DAYS", 30)) * 24 * time.Hour,
			BatchConcurrency: getEnvAsInt("VERIFICATION_BATCH_CONCURRENCY", 8),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "finditfast"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	if c.Reports.FlagMinNegative < 1 {
		return fmt.Errorf("REPORT_FLAG_MIN_NEGATIVE must be at least 1, got %d", c.Reports.FlagMinNegative)
	}
	if c.Verification.ReviewThreshold < 1 {
		return fmt.Errorf("VERIFICATION_REVIEW_THRESHOLD must be at least 1, got %d", c.Verification.ReviewThreshold)
	}
	if c.Verification.MaxAge <= 0 {
		return fmt.Errorf("VERIFICATION_MAX_AGE_DAYS must be positive")
	}
	if c.Storage.Driver != "postgres" && c.Storage.Driver != "memory" {
		return fmt.Errorf("STORAGE_DRIVER must be postgres or memory, got %q", c.Storage.Driver)
	}
	if c.Positioning.Timeout <= 0 {
		return fmt.Errorf("POSITIONING_TIMEOUT must be positive")
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional; the calendar-file registry is skipped when unset)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Market data provider
	MarketData MarketDataConfig

	// Symbol universe feeds
	Universe UniverseConfig

	// Training pipeline
	Pipeline PipelineConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL was configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// MarketDataConfig holds the historical price provider configuration.
type MarketDataConfig struct {
	BaseURL         string
	HistoricalStart string // YYYY-MM-DD floor for history fetches
	RequestTimeout  time.Duration
	RequestsPerSec  float64
	CacheTTL        time.Duration
}

// UniverseConfig holds the exchange listing feed configuration.
type UniverseConfig struct {
	NasdaqListedURL string
	OtherListedURL  string
	CacheDir        string
}

// PipelineConfig holds training pipeline configuration.
type PipelineConfig struct {
	DataDir         string // calendar artifact + model files live here
	Workers         int    // concurrent history fetches
	Estimators      int    // random forest size
	Seed            int64  // train/holdout split seed
	SymbolLimit     int    // equity universe cap for scheduled runs
	BootstrapLimit  int    // reduced cap for the startup run
	Deadline        time.Duration
	RetrainSchedule string // cron expression (with seconds)
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		MarketData: MarketDataConfig{
			BaseURL:         getEnv("MARKET_DATA_BASE_URL", "https://query1.finance.yahoo.com"),
			HistoricalStart: getEnv("HISTORICAL_START", "2010-01-01"),
			RequestTimeout:  getEnvAsDuration("MARKET_DATA_TIMEOUT", "30s"),
			RequestsPerSec:  getEnvAsFloat("MARKET_DATA_RPS", 5),
			CacheTTL:        getEnvAsDuration("MARKET_DATA_CACHE_TTL", "12h"),
		},

		Universe: UniverseConfig{
			NasdaqListedURL: getEnv("NASDAQ_LISTED_URL", "https://www.nasdaqtrader.com/dynamic/SymDir/nasdaqlisted.txt"),
			OtherListedURL:  getEnv("OTHER_LISTED_URL", "https://www.nasdaqtrader.com/dynamic/SymDir/otherlisted.txt"),
			CacheDir:        getEnv("UNIVERSE_CACHE_DIR", "./data_cache"),
		},

		Pipeline: PipelineConfig{
			DataDir:         getEnv("PIPELINE_DATA_DIR", "./data_cache"),
			Workers:         getEnvAsInt("PIPELINE_WORKERS", 8),
			Estimators:      getEnvAsInt("PIPELINE_ESTIMATORS", 200),
			Seed:            int64(getEnvAsInt("PIPELINE_SEED", 42)),
			SymbolLimit:     getEnvAsInt("PIPELINE_SYMBOL_LIMIT", 200),
			BootstrapLimit:  getEnvAsInt("PIPELINE_BOOTSTRAP_LIMIT", 20),
			Deadline:        getEnvAsDuration("PIPELINE_DEADLINE", "2h"),
			RetrainSchedule: getEnv("PIPELINE_SCHEDULE", "0 0 2 * * *"), // daily at 02:00 UTC
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be at least 1")
	}

	if c.Pipeline.Estimators < 1 {
		return fmt.Errorf("PIPELINE_ESTIMATORS must be at least 1")
	}

	if _, err := time.Parse("2006-01-02", c.MarketData.HistoricalStart); err != nil {
		return fmt.Errorf("HISTORICAL_START must be YYYY-MM-DD: %w", err)
	}

	return nil
}

// HistoricalStartDate returns the parsed history floor.
func (c *Config) HistoricalStartDate() time.Time {
	t, _ := time.Parse("2006-01-02", c.MarketData.HistoricalStart)
	return t
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Strategy definitions (YAML)
	StrategyConfigPath string

	// Price input
	Prices PriceConfig

	// State / report layout
	StateRoot    string
	OutputRoot   string
	LedgerStrict bool // 손상된 ledger 발견 시 빈 ledger로 복구하지 않고 중단

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled  bool
	MetricsTextfile string

	// Scheduler
	Scheduler SchedulerConfig
}

// PriceConfig selects where the daily bar table is read from
type PriceConfig struct {
	Source  string // csv, postgres
	CSVPath string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	LockTTL  time.Duration
}

// SchedulerConfig holds retry settings for scheduled jobs
type SchedulerConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		StrategyConfigPath: getEnv("STRATEGY_CONFIG", "configs/strategies.yaml"),

		Prices: PriceConfig{
			Source:  getEnv("PRICE_SOURCE", "csv"),
			CSVPath: getEnv("PRICE_CSV_PATH", "data/combined.csv"),
		},

		StateRoot:    getEnv("STATE_ROOT", "state"),
		OutputRoot:   getEnv("OUTPUT_ROOT", "outputs"),
		LedgerStrict: getEnvAsBool("LEDGER_STRICT", false),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			LockTTL:  getEnvAsDuration("REDIS_LOCK_TTL", "10m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		MetricsEnabled:  getEnvAsBool("METRICS_ENABLED", false),
		MetricsTextfile: getEnv("METRICS_TEXTFILE", "outputs/swing.prom"),

		Scheduler: SchedulerConfig{
			MaxRetries: getEnvAsInt("SCHEDULER_MAX_RETRIES", 0),
			RetryDelay: getEnvAsDuration("SCHEDULER_RETRY_DELAY", "1m"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LedgerPath returns the default ledger location for a strategy
func (c *Config) LedgerPath(strategy string) string {
	return filepath.Join(c.StateRoot, strategy+"_state.csv")
}

// OutputDir returns the default report directory for a strategy
func (c *Config) OutputDir(strategy string) string {
	return filepath.Join(c.OutputRoot, strategy)
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Prices.Source {
	case "csv":
		if c.Prices.CSVPath == "" {
			return fmt.Errorf("PRICE_CSV_PATH is required when PRICE_SOURCE=csv")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when PRICE_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("PRICE_SOURCE must be one of: csv, postgres")
	}

	if c.Scheduler.MaxRetries < 0 {
		return fmt.Errorf("SCHEDULER_MAX_RETRIES must be >= 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

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
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Market data provider
	Provider ProviderConfig

	// Chain snapshot cache
	Cache CacheConfig

	// Scan engine
	Scan ScanConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// ProviderConfig holds market data provider configuration
type ProviderConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	RequestsPerSec float64 // global ceiling across all workers
	Burst          int
	MaxRetries     int
	RetryDelay     time.Duration
}

// CacheConfig holds chain cache configuration
// Caching is off by default so production scans run strictly against
// live data with no disk side effects.
type CacheConfig struct {
	Root    string
	Enabled bool
}

// ScanConfig holds scan pipeline configuration
type ScanConfig struct {
	Workers      int
	ParamsPath   string // YAML scan parameter file
	WorklistPath string
	OutputDir    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8099"),
		Env:  getEnv("ENV", "development"),

		Provider: ProviderConfig{
			BaseURL:        getEnv("PROVIDER_BASE_URL", "https://api.massive.com"),
			APIKey:         getEnv("PROVIDER_API_KEY", ""),
			Timeout:        getEnvAsDuration("PROVIDER_TIMEOUT", "30s"),
			RequestsPerSec: getEnvAsFloat("PROVIDER_RATE_LIMIT", 5),
			Burst:          getEnvAsInt("PROVIDER_RATE_BURST", 5),
			MaxRetries:     getEnvAsInt("PROVIDER_MAX_RETRIES", 3),
			RetryDelay:     getEnvAsDuration("PROVIDER_RETRY_DELAY", "1s"),
		},

		Cache: CacheConfig{
			Root:    getEnv("CHAIN_CACHE_ROOT", filepath.Join(os.TempDir(), "optionscan-cache")),
			Enabled: getEnvAsBool("CHAIN_CACHE_ENABLED", false),
		},

		Scan: ScanConfig{
			Workers:      getEnvAsInt("SCAN_WORKERS", 4),
			ParamsPath:   getEnv("SCAN_PARAMS_PATH", "scan.yaml"),
			WorklistPath: getEnv("SCAN_WORKLIST_PATH", "worklist.yaml"),
			OutputDir:    getEnv("SCAN_OUTPUT_DIR", "out"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Cache.Enabled && c.Cache.Root == "" {
		return fmt.Errorf("CHAIN_CACHE_ROOT is required when CHAIN_CACHE_ENABLED=true")
	}

	if c.Provider.RequestsPerSec <= 0 {
		return fmt.Errorf("PROVIDER_RATE_LIMIT must be positive")
	}

	if c.Scan.Workers < 1 {
		return fmt.Errorf("SCAN_WORKERS must be at least 1")
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

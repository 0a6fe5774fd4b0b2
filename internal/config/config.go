// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, storage paths, timeouts, and the HR dashboard credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir        string // Data directory for the SQLite record store
	EmployeeCSV    string // Optional CSV file used to seed the employees table
	HealthPlansCSV string // Optional CSV file used to seed the health plans table

	// Chat Configuration
	ChatTimeout      time.Duration // Per-request budget for classify/resolve/answer
	MaxQuestionChars int           // Maximum accepted utterance length
	W2TaxYear        int           // Tax year used in W-2 directives

	// HR Dashboard Authentication
	HRUsername string
	HRPassword string

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Mail Configuration
	HRMailAddress string // Recipient address used on escalation drafts

	// Better Stack log shipping (optional)
	BetterStackToken    string
	BetterStackEndpoint string

	// Sentry error tracking (optional)
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv(EnvPort, "8080"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),

		DataDir:        getEnv(EnvDataDir, "data"),
		EmployeeCSV:    getEnv(EnvEmployeeCSV, ""),
		HealthPlansCSV: getEnv(EnvHealthPlansCSV, ""),

		ChatTimeout:      getDurationEnv(EnvChatTimeout, 10*time.Second),
		MaxQuestionChars: getIntEnv(EnvMaxQuestionChars, 2000),
		W2TaxYear:        getIntEnv(EnvW2TaxYear, time.Now().Year()-1),

		HRUsername: getEnv(EnvHRUsername, "hr"),
		HRPassword: getEnv(EnvHRPassword, ""),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		HRMailAddress: getEnv(EnvHRMailAddress, "hr@company.com"),

		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New(EnvDataDir+" is required"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout))
	}
	if c.ChatTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvChatTimeout, c.ChatTimeout))
	}
	if c.MaxQuestionChars <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvMaxQuestionChars, c.MaxQuestionChars))
	}
	if c.W2TaxYear < 2000 {
		errs = append(errs, fmt.Errorf("%s looks invalid, got %d", EnvW2TaxYear, c.W2TaxYear))
	}
	if c.BetterStackToken != "" && c.BetterStackEndpoint == "" {
		errs = append(errs, errors.New(EnvBetterStackEndpoint+" is required when a Better Stack token is set"))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be in [0,1], got %v", EnvSentrySampleRate, c.SentrySampleRate))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SQLitePath returns the full path to the SQLite database file.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "hr.db")
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

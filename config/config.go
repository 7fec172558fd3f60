package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	DBDriver           string
	Port               string
	GoEnv              string
	Auth0Domain        string
	Auth0Audience      string
	JWTSecret          string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	LogLevel           string
	RedisURL           string
	ShippingFee        float64
	TaxRate            float64
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

var (
	current   *Config
	currentMu sync.RWMutex
)

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			// so it's okay if .env files don't exist
			zap.L().Debug("no .env file found, using system environment variables")
		}
	} else {
		zap.L().Debug("loaded configuration", zap.String("file", envFile))
	}

	config := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBDriver:           getEnv("DB_DRIVER", "postgres"),
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RedisURL:           getEnv("REDIS_URL", ""),
		ShippingFee:        getEnvFloat("SHIPPING_FEE", 5.99),
		TaxRate:            getEnvFloat("TAX_RATE", 0.08),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 10),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case "sqlite":
		// DATABASE_URL is a file path; empty means in-memory
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}

	if c.ShippingFee < 0 {
		return fmt.Errorf("SHIPPING_FEE must not be negative")
	}
	if c.TaxRate < 0 || c.TaxRate > 1 {
		return fmt.Errorf("TAX_RATE must be between 0 and 1")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.Auth0Domain == "" && c.JWTSecret == "" && c.IsProduction() {
		return fmt.Errorf("AUTH0_DOMAIN or JWT_SECRET is required in production")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetDatabaseURL returns the database URL
func (c *Config) GetDatabaseURL() string {
	return c.DatabaseURL
}

// UsesS3 reports whether lab reports go to S3 rather than local disk
func (c *Config) UsesS3() bool {
	return c.AWSS3Bucket != ""
}

// Default returns the configuration used when nothing has been loaded,
// mostly by tests.
func Default() *Config {
	return &Config{
		DBDriver:           "sqlite",
		Port:               "8080",
		GoEnv:              "test",
		AWSRegion:          "us-east-1",
		LogLevel:           "info",
		ShippingFee:        5.99,
		TaxRate:            0.08,
		RateLimitRPS:       5,
		RateLimitBurst:     10,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
}

// GetConfig returns the process-wide configuration, falling back to Default
func GetConfig() *Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	if current == nil {
		return Default()
	}
	return current
}

// SetConfig replaces the process-wide configuration
func SetConfig(c *Config) {
	currentMu.Lock()
	current = c
	currentMu.Unlock()
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		zap.L().Warn("ignoring malformed number", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return v
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		zap.L().Warn("ignoring malformed integer", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

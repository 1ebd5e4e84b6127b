package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Environment string
	ServerPort  int
	LogLevel    string

	// DatabaseURL takes precedence over the discrete DB fields when set.
	DatabaseURL string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	RedisURL string

	JWTSecret     string
	TokenTTLHours int

	AnalyticsCacheTTLSeconds int
	ProjectsCacheTTLSeconds  int
	CacheWarmIntervalMinutes int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	FrontendURL  string

	RateLimitPerMinute int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	tokenTTL, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS: %w", err)
	}

	analyticsTTL, err := strconv.Atoi(getEnv("ANALYTICS_CACHE_TTL_SECONDS", "900"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_CACHE_TTL_SECONDS: %w", err)
	}

	projectsTTL, err := strconv.Atoi(getEnv("PROJECTS_CACHE_TTL_SECONDS", "3600"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROJECTS_CACHE_TTL_SECONDS: %w", err)
	}

	warmInterval, err := strconv.Atoi(getEnv("CACHE_WARM_INTERVAL_MINUTES", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_WARM_INTERVAL_MINUTES: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "300"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      dbPort,
		DBUser:      getEnv("DB_USER", "testtrack"),
		DBPassword:  getEnv("DB_PASSWORD", "dev"),
		DBName:      getEnv("DB_NAME", "testtrack"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenTTLHours: tokenTTL,

		AnalyticsCacheTTLSeconds: analyticsTTL,
		ProjectsCacheTTLSeconds:  projectsTTL,
		CacheWarmIntervalMinutes: warmInterval,

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASS"),
		SMTPFrom:     getEnv("SMTP_FROM", "Test Case Manager <no-reply@testtrack.local>"),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:5173"),

		RateLimitPerMinute: rateLimit,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
